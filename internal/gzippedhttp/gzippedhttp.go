// Package gzippedhttp transparently decompresses gzip request bodies
// and compresses JSON responses for clients that accept gzip.
package gzippedhttp

import (
	"compress/gzip"
	"net/http"
	"strings"
	"sync"
)

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return w
	},
}

type gzipResponseWriter struct {
	http.ResponseWriter
	zw *gzip.Writer
}

func (w *gzipResponseWriter) Write(p []byte) (int, error) {
	return w.zw.Write(p)
}

func (w *gzipResponseWriter) close() error {
	err := w.zw.Close()
	gzipWriterPool.Put(w.zw)

	return err
}

// GzipResponse compresses the response body when the client sends
// "Accept-Encoding: gzip".
func GzipResponse(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if !strings.Contains(request.Header.Get("Accept-Encoding"), "gzip") {
			h.ServeHTTP(response, request)
			return
		}

		// Every write goes through the gzip writer, error bodies
		// included, so the header must be set before the first write
		// regardless of the status code.
		response.Header().Set("Content-Encoding", "gzip")

		zw := gzipWriterPool.Get().(*gzip.Writer)
		zw.Reset(response)
		gzipped := &gzipResponseWriter{ResponseWriter: response, zw: zw}
		defer gzipped.close()

		h.ServeHTTP(gzipped, request)
	}

	return http.HandlerFunc(middleware)
}

type gzipReadCloser struct {
	*gzip.Reader
	underlying interface{ Close() error }
}

func (r *gzipReadCloser) Close() error {
	if err := r.underlying.Close(); err != nil {
		return err
	}

	return r.Reader.Close()
}

// UngzipRequest replaces the request body with a decompressing reader
// when the client sends "Content-Encoding: gzip".
func UngzipRequest(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if strings.Contains(request.Header.Get("Content-Encoding"), "gzip") {
			zr, err := gzip.NewReader(request.Body)
			if err != nil {
				response.WriteHeader(http.StatusBadRequest)
				return
			}
			body := &gzipReadCloser{Reader: zr, underlying: request.Body}
			request.Body = body
			defer body.Close()
		}

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}
