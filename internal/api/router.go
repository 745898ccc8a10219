package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/playersvc/internal/api/apierr"
	"github.com/mcoot/playersvc/internal/api/handler"
	"github.com/mcoot/playersvc/internal/api/middleware"
	"github.com/mcoot/playersvc/internal/services/player"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	PlayerService *player.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.PlayerService)

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	players := r.PathPrefix("/players").Subrouter()
	players.HandleFunc("", playerHandler.List).Methods(http.MethodGet)
	players.HandleFunc("", playerHandler.Head).Methods(http.MethodHead)
	players.HandleFunc("", playerHandler.Create).Methods(http.MethodPost)
	players.HandleFunc("/{id}", playerHandler.Get).Methods(http.MethodGet)
	players.HandleFunc("/{id}", playerHandler.Replace).Methods(http.MethodPut)
	players.HandleFunc("/{id}", playerHandler.Patch).Methods(http.MethodPatch)

	r.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	r.NotFoundHandler = notFound()
	r.MethodNotAllowedHandler = methodNotAllowed()

	return r
}

func notFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewRouteError(http.StatusNotFound, "Route not found"))
	})
}

func methodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewRouteError(http.StatusMethodNotAllowed, "Method not allowed"))
	})
}
