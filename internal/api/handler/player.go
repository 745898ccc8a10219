package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/playersvc/internal/api/request"
	"github.com/mcoot/playersvc/internal/api/response"
	"github.com/mcoot/playersvc/internal/model"
)

// PlayerService is the resource service behind the player endpoints
type PlayerService interface {
	List(ctx context.Context, filter model.PlayerFilter) ([]*model.Player, int, error)
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, id string) (*model.Player, error)
	Create(ctx context.Context, raw []byte) (*model.Player, error)
	Update(ctx context.Context, original *model.Player, raw []byte) (*model.Player, error)
	Patch(ctx context.Context, original *model.Player, patch []byte) (*model.Player, error)
}

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	players PlayerService
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(players PlayerService) *PlayerHandler {
	return &PlayerHandler{
		players: players,
	}
}

// List handles GET /players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.FilterFromQuery(r.URL.Query())

	players, total, err := h.players.List(r.Context(), filter)
	if err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set(response.TotalRecordsHeader, strconv.Itoa(total))
	response.JSON(w, http.StatusOK, response.PlayersFromModel(players))
}

// Head handles HEAD /players
func (h *PlayerHandler) Head(w http.ResponseWriter, r *http.Request) {
	total, err := h.players.Count(r.Context())
	if err != nil {
		w.WriteHeader(errorStatus(err))
		return
	}

	w.Header().Set(response.TotalRecordsHeader, strconv.Itoa(total))
	w.WriteHeader(http.StatusOK)
}

// Get handles GET /players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	player, err := h.players.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Create handles POST /players
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := request.ReadBody(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.players.Create(r.Context(), body)
	if err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Location", "/players/"+url.PathEscape(player.ID))
	response.JSON(w, http.StatusCreated, response.PlayerFromModel(player))
}

// Replace handles PUT /players/{id}
func (h *PlayerHandler) Replace(w http.ResponseWriter, r *http.Request) {
	original, err := h.players.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}

	body, err := request.ReadBody(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if _, err := h.players.Update(r.Context(), original, body); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Patch handles PATCH /players/{id}
func (h *PlayerHandler) Patch(w http.ResponseWriter, r *http.Request) {
	original, err := h.players.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}

	body, err := request.ReadBody(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if _, err := h.players.Patch(r.Context(), original, body); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
