package engine

import (
	"time"
)

// Status is the room's lifecycle phase. Transitions only move forward
// (lobby -> in-progress -> voting -> results) except results -> lobby,
// which starts the next round.
type Status string

const (
	StatusLobby      Status = "lobby"
	StatusInProgress Status = "in-progress"
	StatusVoting     Status = "voting"
	StatusResults    Status = "results"
)

// Allowed settings values. Anything outside these sets is rejected.
var (
	AllowedStrokeCounts = []int{1, 2, 3, 4}
	AllowedVotingTimes  = []int{5, 10, 15}
)

const (
	DefaultStrokesPerPlayer = 2
	DefaultVotingTime       = 15
)

// MinActivePlayers is the smallest active-participant count a round can
// start with.
const MinActivePlayers = 3

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one player's single contiguous contribution to the drawing.
type Stroke struct {
	PlayerID string  `json:"playerId"`
	Points   []Point `json:"points"`
	Color    string  `json:"color"`
}

// PreviousArt is one finished round's drawing, kept for the gallery.
type PreviousArt struct {
	Subject string   `json:"subject"`
	Strokes []Stroke `json:"strokes"`
}

// Results is the tally snapshot of the last completed round. Present only
// while Status == results.
type Results struct {
	VoteCounts map[string]int `json:"voteCounts"`
	Ranked     []string       `json:"ranked"`
	FakeWins   bool           `json:"fakeWins"`
	Winners    []string       `json:"winners"`
}

// State is the authoritative snapshot of one room. Pure data; every
// mutation goes through a transition in engine.go, which returns a new
// value and never touches maps or slices shared with its input.
type State struct {
	Name             string            `json:"name,omitempty"`
	Status           Status            `json:"status"`
	Readiness        map[string]bool   `json:"readiness"`
	GameMaster       *Player           `json:"gameMaster,omitempty"`
	CurrentSubject   string            `json:"currentSubject,omitempty"`
	FakeArtist       *Player           `json:"fakeArtist,omitempty"`
	CurrentPlayer    *Player           `json:"currentPlayer,omitempty"`
	Strokes          []Stroke          `json:"strokes"`
	StrokesPerPlayer int               `json:"strokesPerPlayer"`
	Votes            map[string]string `json:"votes"`
	VotingDeadline   time.Time         `json:"votingDeadline,omitzero"`
	VotingTime       int               `json:"votingTime"`
	Scores           map[string]int    `json:"scores"`
	PreviousArt      []PreviousArt     `json:"previousArt"`
	Results          *Results          `json:"results,omitempty"`
}

// NewState returns a fresh lobby state with default settings.
func NewState(name string) State {
	return State{
		Name:             name,
		Status:           StatusLobby,
		Readiness:        map[string]bool{},
		Strokes:          []Stroke{},
		StrokesPerPlayer: DefaultStrokesPerPlayer,
		Votes:            map[string]string{},
		VotingTime:       DefaultVotingTime,
		Scores:           map[string]int{},
		PreviousArt:      []PreviousArt{},
	}
}

// ActivePlayers returns the participants eligible for turn rotation,
// voting and scoring: everyone except observers and the game master, in
// roster order. It is recomputed from the live roster on every stroke, so
// a player leaving mid-round shrinks the rotation.
func ActivePlayers(s State, players []Player) []Player {
	active := make([]Player, 0, len(players))
	for _, p := range players {
		if p.IsObserver {
			continue
		}
		if s.GameMaster != nil && p.ID == s.GameMaster.ID {
			continue
		}
		active = append(active, p)
	}
	return active
}

// AllVotesIn reports whether every active participant has voted.
func AllVotesIn(s State, players []Player) bool {
	active := ActivePlayers(s, players)
	if len(active) == 0 {
		return false
	}
	for _, p := range active {
		if _, ok := s.Votes[p.ID]; !ok {
			return false
		}
	}
	return true
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
