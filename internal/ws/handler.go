package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/fakeartist/backend/internal/engine"
	"github.com/fakeartist/backend/internal/hub"
	"github.com/fakeartist/backend/internal/room"
	"github.com/fakeartist/backend/pkg/types"
)

// Handler upgrades /ws?code=&slug= to a room session. The slug resolves a
// roster entry for rejoin; without one the connection is a read-only
// replica (its commands carry no player id and no-op in the engine).
func Handler(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		rm := <-reply
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		playerID := ""
		if slug := r.URL.Query().Get("slug"); slug != "" {
			pReply := make(chan *engine.Player, 1)
			rm.Inbox() <- room.GetPlayerBySlug{Slug: slug, Reply: pReply}
			if p := <-pReply; p != nil {
				playerID = p.ID
			}
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		// The subscription key is per connection, never the player id:
		// the same slug can hold two live sockets during a rejoin, and
		// closing one must not tear down the other's replication.
		out := make(chan room.Snapshot, 8)
		clientID := randID(8)

		rm.Inbox() <- room.Join{ClientID: clientID, Outbox: out}
		defer func() { rm.Inbox() <- room.Leave{ClientID: clientID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				msg := types.ServerMessage{
					Type:    "StateSnapshot",
					Version: snap.Version,
					State:   &snap.State,
					Players: snap.Players,
				}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"bad json"}`))
				continue
			}

			cmd, ok := toEngineCommand(cm)
			if !ok {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"unknown type"}`))
				continue
			}

			rm.Inbox() <- room.FromClient{PlayerID: playerID, Cmd: cmd}
		}
	}
}

func toEngineCommand(m types.ClientMessage) (engine.Command, bool) {
	switch m.Type {
	case "StartGame":
		return engine.Command{Type: engine.CmdStartGame}, true
	case "SubmitStroke":
		return engine.Command{Type: engine.CmdSubmitStroke, Points: m.Points}, true
	case "SubmitVote":
		return engine.Command{Type: engine.CmdSubmitVote, AccusedID: m.AccusedID}, true
	case "FinalizeVoting":
		return engine.Command{Type: engine.CmdFinalizeVoting}, true
	case "NextRound":
		return engine.Command{Type: engine.CmdNextRound}, true
	case "SetReady":
		return engine.Command{Type: engine.CmdSetReady, Ready: m.Ready}, true
	case "SetGameMaster":
		return engine.Command{Type: engine.CmdSetGameMaster, PlayerID: m.PlayerID}, true
	case "SetStrokeCount":
		return engine.Command{Type: engine.CmdSetStrokeCount, Count: m.Count}, true
	case "SetVotingTime":
		return engine.Command{Type: engine.CmdSetVotingTime, Seconds: m.Seconds}, true
	case "SubmitSubject":
		return engine.Command{Type: engine.CmdSubmitSubject, Subject: m.Subject}, true
	default:
		return engine.Command{}, false
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
