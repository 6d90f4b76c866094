package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fakeartist/backend/internal/gallery"
	"github.com/fakeartist/backend/internal/hub"
	"github.com/fakeartist/backend/internal/ws"
)

// SetupRoutes wires the HTTP surface. store may be nil when no database is
// configured; the gallery endpoint then reports not found.
func SetupRoutes(h *hub.Hub, store *gallery.Store) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(h))
	r.Get("/rooms/{code}", GetRoom(h))
	r.Get("/rooms/{code}/gallery", Gallery(store))
	r.Post("/rooms/{code}/players", JoinRoom(h))
	r.Get("/rooms/{code}/players/{slug}", GetPlayer(h))
	r.Patch("/rooms/{code}/players/{slug}", UpdatePlayer(h))
	r.Delete("/rooms/{code}/players/{slug}", LeaveRoom(h))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h))
	return r
}
