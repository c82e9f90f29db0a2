// Package logger holds the process-wide zap logger and the HTTP
// request-logging middleware.
package logger

import (
	"errors"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// Log is the global SugaredLogger. It must be initialized via Init()
// before use; until then it is a no-op logger so that packages may log
// unconditionally.
var Log = zap.NewNop().Sugar()

// Init builds the global logger with the given level ("debug", "info",
// "warning", "error", "fatal").
func Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl.Sugar()

	return nil
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() error {
	if err := Log.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}

	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	size, err := r.ResponseWriter.Write(b)
	r.size += size

	return size, err
}

// WithLoggingHTTPMiddleware logs method, URI, response status, duration
// and body size for every request passing through it.
func WithLoggingHTTPMiddleware(h http.Handler) http.Handler {
	logFn := func(response http.ResponseWriter, request *http.Request) {
		start := time.Now()

		recorder := &statusRecorder{ResponseWriter: response}
		h.ServeHTTP(recorder, request)

		Log.Infoln(
			"method", request.Method,
			"uri", request.RequestURI,
			"status", recorder.status,
			"duration", time.Since(start),
			"size", recorder.size,
		)
	}

	return http.HandlerFunc(logFn)
}
