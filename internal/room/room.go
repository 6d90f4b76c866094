package room

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fakeartist/backend/internal/engine"
)

type Msg interface{ isRoomMsg() }

// Join subscribes a client connection to snapshot broadcasts.
type Join struct {
	ClientID string
	Outbox   chan Snapshot
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

// FromClient carries one proposed transition from a connected player.
type FromClient struct {
	PlayerID string
	Cmd      engine.Command
}

func (FromClient) isRoomMsg() {}

// AddPlayer creates a roster entry for a join request.
type AddPlayer struct {
	Name     string
	Observer bool
	Reply    chan AddPlayerResult
}

func (AddPlayer) isRoomMsg() {}

type AddPlayerResult struct {
	Player engine.Player
	Err    error
}

// RemovePlayer drops a player from the roster and scrubs them out of the
// round state.
type RemovePlayer struct{ PlayerID string }

func (RemovePlayer) isRoomMsg() {}

// UpdatePlayer applies a profile change. Nil pointer fields are left
// untouched. An observer flip to drawer that finds no free color is
// dropped whole.
type UpdatePlayer struct {
	PlayerID   string
	Color      string
	Observer   *bool
	LeftHanded *bool
}

func (UpdatePlayer) isRoomMsg() {}

// GetPlayerBySlug resolves a rejoin key to its roster entry.
type GetPlayerBySlug struct {
	Slug  string
	Reply chan *engine.Player
}

func (GetPlayerBySlug) isRoomMsg() {}

// GetView reflects internal state without data races; used by tests and
// the point-read endpoint.
type GetView struct{ Reply chan View }

func (GetView) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// Snapshot is one versioned replica update pushed to every client.
type Snapshot struct {
	Version int             `json:"version"`
	State   engine.State    `json:"state"`
	Players []engine.Player `json:"players"`
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
	Players    []engine.Player
}

// Archiver persists a finished round. Best effort; failures are logged
// and never block the round.
type Archiver interface {
	SaveRound(roomCode string, art engine.PreviousArt, fakeArtistID string, results engine.Results) error
}

// Room owns one game's authoritative state. All mutation flows through
// the actor loop, so every transition sees the latest state and the
// engine's phase guards become a compare-phase-and-swap: when two clients
// race to finalize, the second application is a no-op.
type Room struct {
	code    string
	inbox   chan Msg
	state   engine.State
	players []engine.Player
	version int
	clients map[string]chan Snapshot

	voteTimer *time.Timer

	log     *zap.Logger
	archive Archiver
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewRoom(parent context.Context, code, name string, log *zap.Logger, archive Archiver) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		code:    code,
		inbox:   make(chan Msg, 64),
		state:   engine.NewState(name),
		clients: make(map[string]chan Snapshot),
		log:     log.With(zap.String("room", code)),
		archive: archive,
		ctx:     ctx,
		cancel:  cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case <-r.timerC():
			r.voteTimer = nil
			// Deadline expiry races client-driven finalize attempts; the
			// voting-phase guard lets exactly one through.
			if next, ok := engine.FinalizeVoting(r.state, r.players); ok {
				r.commit(next)
			}

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				if old, ok := r.clients[msg.ClientID]; ok && old != msg.Outbox {
					close(old)
				}
				r.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- r.snapshot()

			case Leave:
				delete(r.clients, msg.ClientID)

			case FromClient:
				r.apply(msg.PlayerID, msg.Cmd)

			case AddPlayer:
				msg.Reply <- r.addPlayer(msg)

			case RemovePlayer:
				r.removePlayer(msg.PlayerID)

			case UpdatePlayer:
				r.updatePlayer(msg)

			case GetPlayerBySlug:
				msg.Reply <- r.playerBySlug(msg.Slug)

			case GetView:
				msg.Reply <- View{
					Version:    r.version,
					NumClients: len(r.clients),
					State:      r.state,
					Players:    append([]engine.Player(nil), r.players...),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) timerC() <-chan time.Time {
	if r.voteTimer == nil {
		return nil
	}
	return r.voteTimer.C
}

func (r *Room) apply(actorID string, cmd engine.Command) {
	next, changed := engine.Apply(r.state, r.players, actorID, cmd, time.Now())
	if !changed {
		return
	}
	r.commit(next)
	r.finalizeIfAllVotesIn()
}

// finalizeIfAllVotesIn short-circuits the deadline once every active
// participant has voted.
func (r *Room) finalizeIfAllVotesIn() {
	if r.state.Status != engine.StatusVoting || !engine.AllVotesIn(r.state, r.players) {
		return
	}
	if next, ok := engine.FinalizeVoting(r.state, r.players); ok {
		r.commit(next)
	}
}

// commit installs the next state, bumps the version, keeps the vote timer
// in sync with the phase, archives a just-finished round, and broadcasts.
func (r *Room) commit(next engine.State) {
	entered := func(st engine.Status) bool {
		return next.Status == st && r.state.Status != st
	}

	if entered(engine.StatusResults) && r.archive != nil && len(next.PreviousArt) > 0 && next.Results != nil {
		art := next.PreviousArt[0]
		results := *next.Results
		fakeID := ""
		if next.FakeArtist != nil {
			fakeID = next.FakeArtist.ID
		}
		go func() {
			if err := r.archive.SaveRound(r.code, art, fakeID, results); err != nil {
				r.log.Warn("archive round failed", zap.Error(err))
			}
		}()
	}

	r.state = next
	r.version++
	r.syncVoteTimer()
	r.broadcast(r.snapshot())
}

func (r *Room) syncVoteTimer() {
	if r.state.Status == engine.StatusVoting {
		if r.voteTimer == nil {
			r.voteTimer = time.NewTimer(time.Until(r.state.VotingDeadline))
		}
		return
	}
	if r.voteTimer != nil {
		r.voteTimer.Stop()
		r.voteTimer = nil
	}
}

func (r *Room) addPlayer(msg AddPlayer) AddPlayerResult {
	p, err := engine.NewPlayer(msg.Name, msg.Observer, r.players, time.Now())
	if err != nil {
		return AddPlayerResult{Err: err}
	}
	r.players = append(r.players, p)
	r.version++
	r.broadcast(r.snapshot())
	return AddPlayerResult{Player: p}
}

func (r *Room) removePlayer(playerID string) {
	idx := -1
	for i, p := range r.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	// Scrub the round state while the roster still contains the leaver,
	// so the turn handoff can locate their old slot.
	next, _ := engine.RemovePlayer(r.state, r.players, playerID)
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	r.commit(next)
	// The leaver may have been the last missing vote.
	r.finalizeIfAllVotesIn()
}

func (r *Room) updatePlayer(msg UpdatePlayer) {
	idx := -1
	for i, p := range r.players {
		if p.ID == msg.PlayerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	p := r.players[idx]
	before := append([]engine.Player(nil), r.players...)

	flippedToObserver := false
	if msg.Observer != nil && *msg.Observer != p.IsObserver {
		if *msg.Observer {
			p.IsObserver = true
			p.Color = ""
			flippedToObserver = true
		} else {
			others := append(append([]engine.Player(nil), r.players[:idx]...), r.players[idx+1:]...)
			color, ok := engine.FreeColor(others)
			if !ok {
				r.log.Info("observer flip dropped, palette exhausted", zap.String("player", p.ID))
				return
			}
			p.IsObserver = false
			p.Color = color
		}
	}
	if msg.Color != "" && !p.IsObserver {
		if engine.ColorAvailable(msg.Color, r.players, p.ID) {
			p.Color = msg.Color
		}
	}
	if msg.LeftHanded != nil {
		p.LeftHanded = *msg.LeftHanded
	}

	r.players[idx] = p

	next, _ := engine.RefreshPlayer(r.state, p)
	if flippedToObserver {
		// An observer owes the round nothing: their vote goes away and a
		// held turn passes on, same as if they had left. The old roster
		// still has them active, which the turn handoff needs.
		next, _ = engine.DeactivatePlayer(next, before, p.ID)
	}
	r.commit(next)
	if flippedToObserver {
		// The flipped player may have been the last missing vote.
		r.finalizeIfAllVotesIn()
	}
}

func (r *Room) playerBySlug(slug string) *engine.Player {
	for _, p := range r.players {
		if p.Slug == slug {
			cp := p
			return &cp
		}
	}
	return nil
}

func (r *Room) snapshot() Snapshot {
	return Snapshot{
		Version: r.version,
		State:   r.state,
		Players: append([]engine.Player(nil), r.players...),
	}
}

func (r *Room) broadcast(snap Snapshot) {
	for id, ch := range r.clients {
		select {
		case ch <- snap:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(r.clients, id)
		}
	}
}

func (r *Room) shutdown() {
	if r.voteTimer != nil {
		r.voteTimer.Stop()
		r.voteTimer = nil
	}
	for id, ch := range r.clients {
		close(ch)
		delete(r.clients, id)
	}
	r.cancel()
}
