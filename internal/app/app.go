// Package app initializes and runs the application: configuration,
// logging, storage selection, authentication, routing, and graceful
// shutdown.
package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avmusatov/tunebase/internal/auth"
	"github.com/avmusatov/tunebase/internal/config"
	"github.com/avmusatov/tunebase/internal/db/jsondb"
	"github.com/avmusatov/tunebase/internal/db/memorystorage"
	"github.com/avmusatov/tunebase/internal/db/storage"
	"github.com/avmusatov/tunebase/internal/hasher"
	"github.com/avmusatov/tunebase/internal/ipchecker"
	"github.com/avmusatov/tunebase/internal/logger"
	"github.com/avmusatov/tunebase/internal/router"
	"github.com/avmusatov/tunebase/internal/service"
)

// App encapsulates the configuration, HTTP handler and storage backend
// needed to run the service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	httpHandler http.Handler
}

// New builds the application: it loads configuration, initializes the
// logger, selects storage, and wires the auth layer and router.
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorage(app.cfg)
	if err != nil {
		return nil, err
	}

	signingSecretKey, err := base64.URLEncoding.DecodeString(app.cfg.TokenSigningSecretKey)
	if err != nil {
		return nil, fmt.Errorf("decode token signing secret: %w", err)
	}

	theAuth := auth.New(signingSecretKey, app.cfg.TokenTTL)
	theHasher := hasher.New(app.cfg.BcryptCost)
	theService := service.New(app.db, theHasher, theAuth)

	theIPChecker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(theService, app.db, theAuth, theIPChecker)

	return app, nil
}

// Run starts the HTTP server and blocks until a termination signal,
// then shuts down gracefully and flushes the storage.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("received shutdown signal, saving database and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("logger sync error:", err)
	}
}

func getStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.DBFileName != "" {
		db, err := jsondb.New(cfg.DBFileName)
		if err != nil {
			return nil, err
		}

		return db, nil
	}

	db, err := memorystorage.New()
	if err != nil {
		return nil, err
	}

	return db, nil
}
