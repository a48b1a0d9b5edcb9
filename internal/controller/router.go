package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c *Controller) Mux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.AllowAll().Handler)
	r.Use(c.requestIDMw)
	r.Use(c.requestLoggingMw)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, envelope{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/player", func(r chi.Router) {
			r.Get("/", c.getPlayerState)
			r.Post("/play-pause", c.playPause)
			r.Post("/next", c.playNext)
			r.Post("/previous", c.playPrevious)
			r.Post("/seek", c.seek)
			r.Post("/volume", c.setVolume)
			r.Post("/mute", c.toggleMute)
			r.Post("/repeat", c.toggleRepeat)
			r.Post("/shuffle", c.toggleShuffle)
			r.Post("/fullscreen", c.setFullscreen)
		})

		r.Route("/queue", func(r chi.Router) {
			r.Get("/", c.getQueue)
			r.Post("/", c.addToQueue)
			r.Delete("/", c.clearQueue)
			r.Delete("/{index}", c.removeFromQueue)
			r.Post("/play-next", c.playNextFromQueue)
		})

		r.Route("/playlist", func(r chi.Router) {
			r.Post("/", c.setPlaylist)
			r.Post("/from-catalog", c.setPlaylistFromCatalog)
		})

		r.Route("/jam", func(r chi.Router) {
			r.Get("/", c.getJamStatus)
			r.Post("/create", c.createJam)
			r.Post("/join", c.joinJam)
			r.Post("/leave", c.leaveJam)
			r.Post("/chat", c.sendJamChat)
			r.Get("/chat", c.getJamChat)
		})

		r.Get("/search", c.search)
		r.Get("/tracks", c.getTracks)
		r.Get("/tracks/{track-id}", c.getTrack)
		r.Get("/tracks/{track-id}/similar", c.getSimilarTracks)
		r.Get("/albums", c.getAlbums)
		r.Get("/albums/{album-id}", c.getAlbum)
		r.Get("/playlists", c.getPlaylists)
		r.Get("/history", c.getHistory)
		r.Get("/history/most-played", c.getMostPlayed)

		r.Post("/auth/login", c.login)
		r.Post("/auth/register", c.register)

		if c.relayService != nil {
			r.Post("/relay/rooms", c.createRelayRoom)
		}
	})

	r.Get("/ws/events", c.streamEvents)
	if c.relayService != nil {
		r.Get("/ws/room/{room-id}", c.serveRoom)
	}

	return r
}
