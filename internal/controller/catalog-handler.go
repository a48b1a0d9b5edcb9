package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jamwave/player/internal/auth"
	"github.com/jamwave/player/internal/catalog"
)

var errMissingQuery = errors.New("query parameter q is required")

func (c *Controller) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, errMissingQuery)
		return
	}

	results, err := c.catalogService.Search(r.Context(), query)
	if err != nil {
		c.logger.WarnContext(r.Context(), "search failed", "query", query, "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"data": results})
}

func (c *Controller) getTracks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	tracks, err := c.catalogService.FetchTracks(r.Context(), catalog.FetchTracksParams{
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
		Genre:  q.Get("genre"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"data": tracks})
}

func (c *Controller) getTrack(w http.ResponseWriter, r *http.Request) {
	track, err := c.catalogService.FetchTrackByID(r.Context(), chi.URLParam(r, "track-id"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"data": track})
}

func (c *Controller) getSimilarTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := c.catalogService.FetchSimilarTracks(r.Context(), chi.URLParam(r, "track-id"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"data": tracks})
}

func (c *Controller) getAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := c.catalogService.FetchAlbums(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"data": albums})
}

func (c *Controller) getAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := c.catalogService.FetchAlbumByID(r.Context(), chi.URLParam(r, "album-id"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"data": album})
}

func (c *Controller) getPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := c.catalogService.FetchPlaylists(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"data": playlists})
}

func (c *Controller) getHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"data": c.playerService.RecentlyPlayed()})
}

func (c *Controller) getMostPlayed(w http.ResponseWriter, r *http.Request) {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if n <= 0 {
		n = 10
	}
	writeJSON(w, http.StatusOK, envelope{"data": c.playerService.MostPlayed(n)})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Controller) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"errors": validationErrors})
		return
	}

	session, err := c.authService.Login(r.Context(), auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		writeError(w, http.StatusBadGateway, err)
		return
	}

	// authenticated catalog requests unlock caching and full search
	c.catalogService.SetToken(session.Token)

	writeJSON(w, http.StatusOK, envelope{"data": session})
}

type registerRequest struct {
	Email    string `json:"email" validate:"required"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8"`
}

func (c *Controller) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"errors": validationErrors})
		return
	}

	session, err := c.authService.Register(r.Context(), auth.RegisterParams{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	c.catalogService.SetToken(session.Token)

	writeJSON(w, http.StatusOK, envelope{"data": session})
}
