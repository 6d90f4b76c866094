package engine

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNoFreeColor = errors.New("no free color")

// Player is one roster entry. Created on join, mutated only through
// explicit profile updates, destroyed on leave.
type Player struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Color      string    `json:"color,omitempty"`
	Slug       string    `json:"slug"`
	LeftHanded bool      `json:"leftHanded"`
	IsObserver bool      `json:"isObserver"`
	JoinedAt   time.Time `json:"joinedAt"`
}

// NewPlayer builds a roster entry for a join. Non-observers get a free
// palette color; joining as a drawer fails once the palette is exhausted.
func NewPlayer(name string, observer bool, roster []Player, now time.Time) (Player, error) {
	p := Player{
		ID:         uuid.NewString(),
		Name:       name,
		Slug:       newSlug(name),
		IsObserver: observer,
		JoinedAt:   now,
	}
	if !observer {
		color, ok := FreeColor(roster)
		if !ok {
			return Player{}, ErrNoFreeColor
		}
		p.Color = color
	}
	return p, nil
}

// newSlug derives a stable rejoin key: lowercased name plus a short random
// suffix so two "sam"s don't collide.
func newSlug(name string) string {
	base := strings.ToLower(strings.TrimSpace(name))
	base = strings.Join(strings.Fields(base), "-")
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 3)
	for i := range suffix {
		suffix[i] = charset[rand.Intn(len(charset))]
	}
	return base + "-" + string(suffix)
}

// HostID picks who holds finalize permission in the UI: the game master if
// set, otherwise the earliest-joined player.
func HostID(s State, players []Player) string {
	if s.GameMaster != nil {
		return s.GameMaster.ID
	}
	hostID := ""
	var earliest time.Time
	for _, p := range players {
		if hostID == "" || p.JoinedAt.Before(earliest) {
			hostID = p.ID
			earliest = p.JoinedAt
		}
	}
	return hostID
}

func findPlayer(players []Player, id string) (Player, bool) {
	for _, p := range players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}
