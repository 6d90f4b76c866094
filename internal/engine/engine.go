package engine

import (
	"math/rand"
	"slices"
	"sort"
	"strings"
	"time"
)

// randIndex returns a uniform index in [0, n). Package var so tests can
// pin random choices.
var randIndex = func(n int) int { return rand.Intn(n) }

// Every transition takes the current state plus the roster and returns the
// next state and whether anything changed. Precondition violations (wrong
// phase, wrong actor, illegal value) are silent no-ops: a stale client can
// always race a phase change that was already broadcast, so they are
// expected traffic, not errors. A transition that reports false is the
// losing side of the compare-phase-and-swap discipline; the caller keeps
// the state it already has.

// StartGame begins a round: picks the fake artist uniformly from the
// active participants, the subject (game-master-submitted, or random from
// the catalog preferring unused ones), and the first drawer from the
// non-faker actives.
func StartGame(s State, players []Player, now time.Time) (State, bool) {
	if s.Status != StatusLobby {
		return s, false
	}
	active := ActivePlayers(s, players)
	if len(active) < MinActivePlayers {
		return s, false
	}
	for _, p := range active {
		if !s.Readiness[p.ID] {
			return s, false
		}
	}

	subject := RandomSubject(s.PreviousArt)
	if s.GameMaster != nil {
		subject = strings.TrimSpace(s.CurrentSubject)
		if subject == "" {
			return s, false
		}
	}

	faker := active[randIndex(len(active))]

	others := make([]Player, 0, len(active)-1)
	for _, p := range active {
		if p.ID != faker.ID {
			others = append(others, p)
		}
	}
	first := others[randIndex(len(others))]

	s.Status = StatusInProgress
	s.FakeArtist = &faker
	s.CurrentSubject = subject
	s.CurrentPlayer = &first
	s.Strokes = []Stroke{}
	return s, true
}

// SubmitStroke appends the current player's stroke and rotates the turn.
// The rotation is recomputed from the live roster each time (see
// ActivePlayers). When the last required stroke lands, the finished art is
// pushed onto the gallery and the room moves to voting.
func SubmitStroke(s State, players []Player, authorID string, points []Point, now time.Time) (State, bool) {
	if s.Status != StatusInProgress || s.CurrentPlayer == nil {
		return s, false
	}
	if authorID != s.CurrentPlayer.ID {
		return s, false
	}
	author, ok := findPlayer(players, authorID)
	if !ok || author.IsObserver {
		return s, false
	}

	active := ActivePlayers(s, players)
	idx := slices.IndexFunc(active, func(p Player) bool { return p.ID == authorID })
	if idx < 0 {
		return s, false
	}

	strokes := slices.Clone(s.Strokes)
	strokes = append(strokes, Stroke{
		PlayerID: authorID,
		Points:   slices.Clone(points),
		Color:    author.Color,
	})
	s.Strokes = strokes

	next := active[(idx+1)%len(active)]
	s.CurrentPlayer = &next

	if len(strokes) >= len(active)*s.StrokesPerPlayer {
		art := PreviousArt{Subject: s.CurrentSubject, Strokes: strokes}
		s.PreviousArt = append([]PreviousArt{art}, s.PreviousArt...)
		s.Status = StatusVoting
		s.Votes = map[string]string{}
		s.VotingDeadline = now.Add(time.Duration(s.VotingTime) * time.Second)
		s.CurrentPlayer = nil
	}
	return s, true
}

// SubmitVote records one vote. One vote per participant per round: a
// second vote from the same voter is ignored, never overwritten.
func SubmitVote(s State, players []Player, voterID, accusedID string) (State, bool) {
	if s.Status != StatusVoting {
		return s, false
	}
	active := ActivePlayers(s, players)
	if !slices.ContainsFunc(active, func(p Player) bool { return p.ID == voterID }) {
		return s, false
	}
	if _, voted := s.Votes[voterID]; voted {
		return s, false
	}
	votes := cloneStringMap(s.Votes)
	votes[voterID] = accusedID
	s.Votes = votes
	return s, true
}

// FinalizeVoting tallies votes, decides the winner and updates scores.
// The fake artist wins on a tie for most-accused, and whenever the unique
// top accusation points at anyone else; the artists win only by uniquely
// and correctly naming the faker. Runs at most once per round because the
// voting-phase guard fails for every caller after the first.
func FinalizeVoting(s State, players []Player) (State, bool) {
	if s.Status != StatusVoting || s.FakeArtist == nil {
		return s, false
	}

	voteCounts := map[string]int{}
	for _, accusedID := range s.Votes {
		voteCounts[accusedID]++
	}

	ranked := make([]string, 0, len(voteCounts))
	for id := range voteCounts {
		ranked = append(ranked, id)
	}
	// Descending count, ties in roster join order so the results list is
	// stable across replicas.
	rosterIdx := func(id string) int {
		if i := slices.IndexFunc(players, func(p Player) bool { return p.ID == id }); i >= 0 {
			return i
		}
		return len(players)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if voteCounts[ranked[i]] != voteCounts[ranked[j]] {
			return voteCounts[ranked[i]] > voteCounts[ranked[j]]
		}
		return rosterIdx(ranked[i]) < rosterIdx(ranked[j])
	})

	fakeID := s.FakeArtist.ID

	topCount := 0
	if len(ranked) > 0 {
		topCount = voteCounts[ranked[0]]
	}
	topPlayers := make([]string, 0, len(ranked))
	for _, id := range ranked {
		if voteCounts[id] == topCount {
			topPlayers = append(topPlayers, id)
		}
	}

	var fakeWins bool
	switch {
	case len(topPlayers) > 1:
		// A tie for most-accused lets the faker slip away, even when the
		// faker is among the tied.
		fakeWins = true
	case len(topPlayers) == 1:
		fakeWins = topPlayers[0] != fakeID
	default:
		// Nobody voted; nobody named the faker.
		fakeWins = true
	}

	var winners []string
	if fakeWins {
		winners = []string{fakeID}
		if s.GameMaster != nil {
			winners = append(winners, s.GameMaster.ID)
		}
	} else {
		for _, p := range ActivePlayers(s, players) {
			if p.ID != fakeID {
				winners = append(winners, p.ID)
			}
		}
	}

	scores := cloneIntMap(s.Scores)
	for _, id := range winners {
		scores[id]++
	}

	s.Status = StatusResults
	s.Scores = scores
	s.VotingDeadline = time.Time{}
	s.Results = &Results{
		VoteCounts: voteCounts,
		Ranked:     ranked,
		FakeWins:   fakeWins,
		Winners:    winners,
	}
	return s, true
}

// NextRound resets a finished room to a fresh lobby, carrying over the
// name, game master, scores, gallery and settings.
func NextRound(s State) (State, bool) {
	if s.Status != StatusResults {
		return s, false
	}
	fresh := NewState(s.Name)
	fresh.GameMaster = s.GameMaster
	fresh.Scores = cloneIntMap(s.Scores)
	fresh.PreviousArt = s.PreviousArt
	fresh.StrokesPerPlayer = s.StrokesPerPlayer
	fresh.VotingTime = s.VotingTime
	return fresh, true
}

// SetGameMaster assigns or clears the role. Deliberately legal in any
// phase; the role only matters at round start and scoring.
func SetGameMaster(s State, players []Player, playerID string) (State, bool) {
	if playerID == "" {
		if s.GameMaster == nil {
			return s, false
		}
		s.GameMaster = nil
		return s, true
	}
	p, ok := findPlayer(players, playerID)
	if !ok {
		return s, false
	}
	if s.GameMaster != nil && s.GameMaster.ID == p.ID {
		return s, false
	}
	s.GameMaster = &p
	return s, true
}

// SetReady flags a player's lobby readiness. Harmless outside the lobby.
func SetReady(s State, players []Player, playerID string, ready bool) (State, bool) {
	if _, ok := findPlayer(players, playerID); !ok {
		return s, false
	}
	if s.Readiness[playerID] == ready {
		return s, false
	}
	readiness := cloneBoolMap(s.Readiness)
	readiness[playerID] = ready
	s.Readiness = readiness
	return s, true
}

// SetStrokeCount updates strokes-per-player. Values outside the allowed
// set are rejected.
func SetStrokeCount(s State, n int) (State, bool) {
	if !slices.Contains(AllowedStrokeCounts, n) || s.StrokesPerPlayer == n {
		return s, false
	}
	s.StrokesPerPlayer = n
	return s, true
}

// SetVotingTime updates the vote window in seconds. Values outside the
// allowed set are rejected.
func SetVotingTime(s State, seconds int) (State, bool) {
	if !slices.Contains(AllowedVotingTimes, seconds) || s.VotingTime == seconds {
		return s, false
	}
	s.VotingTime = seconds
	return s, true
}

// SubmitSubject stores the game master's subject ahead of round start.
// Stored trimmed; rejecting emptiness is StartGame's job.
func SubmitSubject(s State, text string) (State, bool) {
	if s.Status != StatusLobby {
		return s, false
	}
	trimmed := strings.TrimSpace(text)
	if s.CurrentSubject == trimmed {
		return s, false
	}
	s.CurrentSubject = trimmed
	return s, true
}

// RemovePlayer scrubs a departing player out of the round state: the
// game-master role is cleared (no automatic promotion) and everything an
// active participant owed the round goes with them.
func RemovePlayer(s State, players []Player, playerID string) (State, bool) {
	changed := false
	if s.GameMaster != nil && s.GameMaster.ID == playerID {
		s.GameMaster = nil
		changed = true
	}
	s, deactivated := DeactivatePlayer(s, players, playerID)
	return s, changed || deactivated
}

// DeactivatePlayer scrubs round state when a player stops being an
// active participant, whether they left the room or dropped to observer:
// their readiness and vote entries go away (votes only ever belong to
// active participants) and a held turn passes to whoever follows their
// old slot so the round can finish. players is the roster as it was
// while they were still active.
func DeactivatePlayer(s State, players []Player, playerID string) (State, bool) {
	changed := false
	if _, ok := s.Readiness[playerID]; ok {
		readiness := cloneBoolMap(s.Readiness)
		delete(readiness, playerID)
		s.Readiness = readiness
		changed = true
	}
	if _, ok := s.Votes[playerID]; ok {
		votes := cloneStringMap(s.Votes)
		delete(votes, playerID)
		s.Votes = votes
		changed = true
	}
	if s.Status == StatusInProgress && s.CurrentPlayer != nil && s.CurrentPlayer.ID == playerID {
		idx := 0
		for i, p := range ActivePlayers(s, players) {
			if p.ID == playerID {
				idx = i
				break
			}
		}
		remaining := make([]Player, 0, len(players))
		for _, p := range players {
			if p.ID != playerID {
				remaining = append(remaining, p)
			}
		}
		active := ActivePlayers(s, remaining)
		if len(active) > 0 {
			next := active[idx%len(active)]
			s.CurrentPlayer = &next
		} else {
			s.CurrentPlayer = nil
		}
		changed = true
	}
	return s, changed
}

// RefreshPlayer re-points the embedded role copies at a player's updated
// profile, so a mid-round color change shows up in the roles replicas
// render from, not just in the roster.
func RefreshPlayer(s State, p Player) (State, bool) {
	changed := false
	cp := p
	if s.GameMaster != nil && s.GameMaster.ID == p.ID && *s.GameMaster != p {
		s.GameMaster = &cp
		changed = true
	}
	if s.FakeArtist != nil && s.FakeArtist.ID == p.ID && *s.FakeArtist != p {
		s.FakeArtist = &cp
		changed = true
	}
	if s.CurrentPlayer != nil && s.CurrentPlayer.ID == p.ID && *s.CurrentPlayer != p {
		s.CurrentPlayer = &cp
		changed = true
	}
	return s, changed
}

// CommandType names a client-initiated transition.
type CommandType string

const (
	CmdStartGame      CommandType = "StartGame"
	CmdSubmitStroke   CommandType = "SubmitStroke"
	CmdSubmitVote     CommandType = "SubmitVote"
	CmdFinalizeVoting CommandType = "FinalizeVoting"
	CmdNextRound      CommandType = "NextRound"
	CmdSetReady       CommandType = "SetReady"
	CmdSetGameMaster  CommandType = "SetGameMaster"
	CmdSetStrokeCount CommandType = "SetStrokeCount"
	CmdSetVotingTime  CommandType = "SetVotingTime"
	CmdSubmitSubject  CommandType = "SubmitSubject"
)

// Command is one proposed mutation, routed through Apply by the room.
type Command struct {
	Type      CommandType
	Points    []Point
	AccusedID string
	PlayerID  string // SetGameMaster target; empty clears the role
	Ready     bool
	Count     int
	Seconds   int
	Subject   string
}

// Apply dispatches a command from actorID against the current state.
func Apply(s State, players []Player, actorID string, cmd Command, now time.Time) (State, bool) {
	switch cmd.Type {
	case CmdStartGame:
		return StartGame(s, players, now)
	case CmdSubmitStroke:
		return SubmitStroke(s, players, actorID, cmd.Points, now)
	case CmdSubmitVote:
		return SubmitVote(s, players, actorID, cmd.AccusedID)
	case CmdFinalizeVoting:
		return FinalizeVoting(s, players)
	case CmdNextRound:
		return NextRound(s)
	case CmdSetReady:
		return SetReady(s, players, actorID, cmd.Ready)
	case CmdSetGameMaster:
		return SetGameMaster(s, players, cmd.PlayerID)
	case CmdSetStrokeCount:
		return SetStrokeCount(s, cmd.Count)
	case CmdSetVotingTime:
		return SetVotingTime(s, cmd.Seconds)
	case CmdSubmitSubject:
		return SubmitSubject(s, cmd.Subject)
	default:
		return s, false
	}
}
