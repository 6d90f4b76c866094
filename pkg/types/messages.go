package types

import (
	"github.com/fakeartist/backend/internal/engine"
)

// ClientMessage is one websocket frame from a player. Type selects the
// transition; the other fields are its arguments.
type ClientMessage struct {
	Type      string         `json:"type"`
	Points    []engine.Point `json:"points,omitempty"`
	AccusedID string         `json:"accusedId,omitempty"`
	PlayerID  string         `json:"playerId,omitempty"`
	Ready     bool           `json:"ready,omitempty"`
	Count     int            `json:"count,omitempty"`
	Seconds   int            `json:"seconds,omitempty"`
	Subject   string         `json:"subject,omitempty"`
}

// ServerMessage is one websocket frame to a client.
type ServerMessage struct {
	Type    string          `json:"type"` // "StateSnapshot" | "Error"
	Version int             `json:"version,omitempty"`
	State   *engine.State   `json:"state,omitempty"`
	Players []engine.Player `json:"players,omitempty"`
	Error   string          `json:"error,omitempty"`
}
