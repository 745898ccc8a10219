package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/playersvc/internal/api/apierr"
	"github.com/mcoot/playersvc/internal/middleware"
)

// Recovery turns a panicking player handler into an INTERNAL_ERROR response.
// A handler that already started its response keeps it; the panic is only logged.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	recoverer := middleware.Recovery(logger, writeInternalError)
	return func(next http.Handler) http.Handler {
		guarded := recoverer(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guarded.ServeHTTP(&startedWriter{ResponseWriter: w}, r)
		})
	}
}

type startedWriter struct {
	http.ResponseWriter
	started bool
}

func (w *startedWriter) WriteHeader(code int) {
	w.started = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *startedWriter) Write(b []byte) (int, error) {
	w.started = true
	return w.ResponseWriter.Write(b)
}

func (w *startedWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func writeInternalError(w http.ResponseWriter, _ *http.Request, _ any) {
	if sw, ok := w.(*startedWriter); ok && sw.started {
		return
	}
	apierr.WriteError(w, apierr.NewInternalError())
}
