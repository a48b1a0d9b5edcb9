package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jamwave/player/internal/catalog"
	"github.com/jamwave/player/internal/domain"
	"github.com/jamwave/player/internal/player"
)

func (c *Controller) getPlayerState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"data": c.playerService.Snapshot()})
}

func (c *Controller) playPause(w http.ResponseWriter, r *http.Request) {
	if err := c.playerService.TogglePlay(); err != nil {
		if errors.Is(err, player.ErrNothingToPlay) {
			writeError(w, http.StatusConflict, err)
			return
		}
		c.logger.WarnContext(r.Context(), "failed to toggle play", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	snap := c.playerService.Snapshot()
	c.jamClient.EmitPlaybackState(snap.IsPlaying, snap.CurrentTime)
	writeJSON(w, http.StatusOK, envelope{"data": snap})
}

func (c *Controller) playNext(w http.ResponseWriter, r *http.Request) {
	if err := c.playerService.PlayNext(); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	snap := c.playerService.Snapshot()
	c.jamClient.EmitPlaybackState(snap.IsPlaying, snap.CurrentTime)
	writeJSON(w, http.StatusOK, envelope{"data": snap})
}

func (c *Controller) playPrevious(w http.ResponseWriter, r *http.Request) {
	c.playerService.PlayPrevious()

	snap := c.playerService.Snapshot()
	c.jamClient.EmitPlaybackState(snap.IsPlaying, snap.CurrentTime)
	writeJSON(w, http.StatusOK, envelope{"data": snap})
}

type seekRequest struct {
	Position float64 `json:"position" validate:"gte=0"`
}

func (c *Controller) seek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"errors": validationErrors})
		return
	}

	c.playerService.Seek(req.Position)

	snap := c.playerService.Snapshot()
	c.jamClient.EmitPlaybackState(snap.IsPlaying, snap.CurrentTime)
	writeJSON(w, http.StatusOK, envelope{"data": snap})
}

type setVolumeRequest struct {
	Volume float64 `json:"volume" validate:"gte=0,lte=1"`
}

func (c *Controller) setVolume(w http.ResponseWriter, r *http.Request) {
	var req setVolumeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"errors": validationErrors})
		return
	}

	c.playerService.SetVolume(req.Volume)
	writeJSON(w, http.StatusOK, envelope{"data": c.playerService.Snapshot()})
}

func (c *Controller) toggleMute(w http.ResponseWriter, r *http.Request) {
	c.playerService.ToggleMute()
	writeJSON(w, http.StatusOK, envelope{"data": c.playerService.Snapshot()})
}

func (c *Controller) toggleRepeat(w http.ResponseWriter, r *http.Request) {
	mode := c.playerService.ToggleRepeatMode()
	writeJSON(w, http.StatusOK, envelope{"data": envelope{"repeat_mode": mode}})
}

func (c *Controller) toggleShuffle(w http.ResponseWriter, r *http.Request) {
	c.playerService.ToggleShuffle()
	writeJSON(w, http.StatusOK, envelope{"data": c.playerService.Snapshot()})
}

type setFullscreenRequest struct {
	Enabled bool `json:"enabled"`
}

func (c *Controller) setFullscreen(w http.ResponseWriter, r *http.Request) {
	var req setFullscreenRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	c.playerService.SetFullscreen(req.Enabled)
	writeJSON(w, http.StatusOK, envelope{"data": c.playerService.Snapshot()})
}

func (c *Controller) getQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"data": c.playerService.Snapshot().Queue})
}

func (c *Controller) addToQueue(w http.ResponseWriter, r *http.Request) {
	var track domain.Track
	if err := readJSON(r, &track); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if track.ID == "" {
		writeJSON(w, http.StatusBadRequest, envelope{"error": "track id is required"})
		return
	}

	c.playerService.AddToQueue(track)
	writeJSON(w, http.StatusOK, envelope{"data": c.playerService.Snapshot().Queue})
}

func (c *Controller) removeFromQueue(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := c.playerService.RemoveFromQueue(index); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"data": c.playerService.Snapshot().Queue})
}

func (c *Controller) clearQueue(w http.ResponseWriter, r *http.Request) {
	c.playerService.ClearQueue()
	writeJSON(w, http.StatusOK, envelope{"data": c.playerService.Snapshot().Queue})
}

func (c *Controller) playNextFromQueue(w http.ResponseWriter, r *http.Request) {
	if err := c.playerService.PlayNextFromQueue(); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	snap := c.playerService.Snapshot()
	c.jamClient.EmitPlaybackState(snap.IsPlaying, snap.CurrentTime)
	writeJSON(w, http.StatusOK, envelope{"data": snap})
}

type setPlaylistRequest struct {
	Tracks     []domain.Track `json:"tracks" validate:"required,min=1"`
	StartIndex int            `json:"start_index" validate:"gte=0"`
}

func (c *Controller) setPlaylist(w http.ResponseWriter, r *http.Request) {
	var req setPlaylistRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"errors": validationErrors})
		return
	}

	if err := c.playerService.SetPlaylistAndPlay(req.Tracks, req.StartIndex); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	snap := c.playerService.Snapshot()
	c.jamClient.EmitPlaybackState(snap.IsPlaying, snap.CurrentTime)
	writeJSON(w, http.StatusOK, envelope{"data": snap})
}

type setPlaylistFromCatalogRequest struct {
	Genre      string `json:"genre"`
	Sort       string `json:"sort"`
	Order      string `json:"order"`
	Limit      int    `json:"limit" validate:"gte=0,lte=100"`
	StartIndex int    `json:"start_index" validate:"gte=0"`
}

func (c *Controller) setPlaylistFromCatalog(w http.ResponseWriter, r *http.Request) {
	var req setPlaylistFromCatalogRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"errors": validationErrors})
		return
	}

	tracks, err := c.catalogService.FetchTracks(r.Context(), catalog.FetchTracksParams{
		Genre: req.Genre,
		Sort:  req.Sort,
		Order: req.Order,
		Limit: req.Limit,
	})
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to fetch tracks", "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}

	if err := c.playerService.SetPlaylistAndPlay(tracks, req.StartIndex); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	snap := c.playerService.Snapshot()
	c.jamClient.EmitPlaybackState(snap.IsPlaying, snap.CurrentTime)
	writeJSON(w, http.StatusOK, envelope{"data": snap})
}
