package response

import (
	"time"

	"github.com/mcoot/playersvc/internal/model"
)

// TotalRecordsHeader carries the unfiltered player count on list responses
const TotalRecordsHeader = "X-Total-Records"

// Player represents a player in API responses
type Player struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Position    string     `json:"position"`
	Nationality string     `json:"nationality"`
	Age         int        `json:"age"`
	Rating      int        `json:"rating"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	resp := Player{
		ID:          p.ID,
		Name:        p.Name,
		Position:    string(p.Position),
		Nationality: p.Nationality,
		Age:         p.Age,
		Rating:      p.Rating,
	}
	if !p.CreatedAt.IsZero() {
		t := p.CreatedAt.UTC()
		resp.CreatedAt = &t
	}
	return resp
}

// PlayersFromModel converts a slice of players. The result is never nil.
func PlayersFromModel(players []*model.Player) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = PlayerFromModel(p)
	}
	return out
}

// Health is the response body of the health endpoint
type Health struct {
	Status string `json:"status"`
}
