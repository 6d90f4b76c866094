package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fakeartist/backend/internal/engine"
	"github.com/fakeartist/backend/internal/gallery"
	"github.com/fakeartist/backend/internal/hub"
	"github.com/fakeartist/backend/internal/room"
)

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 5)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

func CreateRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			reply := make(chan *room.Room, 1)
			h.Inbox() <- hub.GetRoom{Code: c, Reply: reply}
			if <-reply == nil {
				code = c
				break
			}
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.EnsureRoom{Code: code, Name: body.Name, Reply: reply}
		if <-reply == nil {
			http.Error(w, "failed to create room", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			Code string `json:"code"`
		}{Code: code})
	}
}

// GetRoom is the point read: the latest snapshot, no subscription.
func GetRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, ok := resolveRoom(w, r, h)
		if !ok {
			return
		}
		reply := make(chan room.View, 1)
		rm.Inbox() <- room.GetView{Reply: reply}
		view := <-reply

		writeJSON(w, http.StatusOK, struct {
			Version int             `json:"version"`
			State   engine.State    `json:"state"`
			Players []engine.Player `json:"players"`
			HostID  string          `json:"hostId,omitempty"`
		}{
			Version: view.Version,
			State:   view.State,
			Players: view.Players,
			HostID:  engine.HostID(view.State, view.Players),
		})
	}
}

func JoinRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, ok := resolveRoom(w, r, h)
		if !ok {
			return
		}
		var body struct {
			Name     string `json:"name"`
			Observer bool   `json:"observer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}

		reply := make(chan room.AddPlayerResult, 1)
		rm.Inbox() <- room.AddPlayer{Name: body.Name, Observer: body.Observer, Reply: reply}
		res := <-reply
		if res.Err != nil {
			http.Error(w, res.Err.Error(), http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusCreated, res.Player)
	}
}

// GetPlayer resolves a slug for account-free rejoin.
func GetPlayer(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, ok := resolveRoom(w, r, h)
		if !ok {
			return
		}
		reply := make(chan *engine.Player, 1)
		rm.Inbox() <- room.GetPlayerBySlug{Slug: chi.URLParam(r, "slug"), Reply: reply}
		p := <-reply
		if p == nil {
			http.Error(w, "player not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func LeaveRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, ok := resolveRoom(w, r, h)
		if !ok {
			return
		}
		reply := make(chan *engine.Player, 1)
		rm.Inbox() <- room.GetPlayerBySlug{Slug: chi.URLParam(r, "slug"), Reply: reply}
		p := <-reply
		if p == nil {
			http.Error(w, "player not found", http.StatusNotFound)
			return
		}
		rm.Inbox() <- room.RemovePlayer{PlayerID: p.ID}
		w.WriteHeader(http.StatusNoContent)
	}
}

func UpdatePlayer(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, ok := resolveRoom(w, r, h)
		if !ok {
			return
		}
		reply := make(chan *engine.Player, 1)
		rm.Inbox() <- room.GetPlayerBySlug{Slug: chi.URLParam(r, "slug"), Reply: reply}
		p := <-reply
		if p == nil {
			http.Error(w, "player not found", http.StatusNotFound)
			return
		}
		var body struct {
			Color      string `json:"color"`
			Observer   *bool  `json:"observer"`
			LeftHanded *bool  `json:"leftHanded"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		rm.Inbox() <- room.UpdatePlayer{
			PlayerID:   p.ID,
			Color:      body.Color,
			Observer:   body.Observer,
			LeftHanded: body.LeftHanded,
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Gallery serves a room's archived rounds, most recent first. Unlike the
// other room routes this reads the database, not the hub: the archive
// outlives the room actor.
func Gallery(store *gallery.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			http.Error(w, "gallery not enabled", http.StatusNotFound)
			return
		}
		rounds, err := store.Rounds(chi.URLParam(r, "code"), 50)
		if err != nil {
			http.Error(w, "gallery unavailable", http.StatusInternalServerError)
			return
		}
		if rounds == nil {
			rounds = []gallery.Round{}
		}
		writeJSON(w, http.StatusOK, rounds)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func resolveRoom(w http.ResponseWriter, r *http.Request, h *hub.Hub) (*room.Room, bool) {
	code := chi.URLParam(r, "code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return nil, false
	}
	reply := make(chan *room.Room, 1)
	h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
	rm := <-reply
	if rm == nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return nil, false
	}
	return rm, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
