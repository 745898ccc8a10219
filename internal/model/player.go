package model

import "time"

// Position is the on-field role of a player
type Position string

const (
	PositionGoalkeeper Position = "goalkeeper"
	PositionDefender   Position = "defender"
	PositionMidfielder Position = "midfielder"
	PositionForward    Position = "forward"
)

// Positions lists every recognised position
var Positions = []Position{
	PositionGoalkeeper,
	PositionDefender,
	PositionMidfielder,
	PositionForward,
}

// Valid reports whether p is one of the recognised positions
func (p Position) Valid() bool {
	for _, known := range Positions {
		if p == known {
			return true
		}
	}
	return false
}

// Player is the single resource exposed by the service
type Player struct {
	ID          string // immutable once created
	Name        string
	Position    Position  // optional
	Nationality string    // ISO-3166 alpha-2, optional
	Age         int       // 0 means unset
	Rating      int       // 0-100
	CreatedAt   time.Time // server-assigned
}

// Clone returns a copy of the player that shares no state with p
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (*Player) validatable() {}
