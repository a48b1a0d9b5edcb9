package controller

import (
	"errors"
	"net/http"

	"github.com/jamwave/player/internal/room"
)

func (c *Controller) getJamStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"data": c.jamClient.Status()})
}

func (c *Controller) createJam(w http.ResponseWriter, r *http.Request) {
	shareURL, err := c.jamClient.CreateRoom(r.Context())
	if err != nil {
		if errors.Is(err, room.ErrAlreadyInRoom) {
			writeError(w, http.StatusConflict, err)
			return
		}
		c.logger.WarnContext(r.Context(), "failed to create jam room", "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}

	status := c.jamClient.Status()
	writeJSON(w, http.StatusCreated, envelope{"data": envelope{
		"room_id":   status.RoomID,
		"share_url": shareURL,
	}})
}

type joinJamRequest struct {
	RoomID string `json:"room_id" validate:"required"`
}

func (c *Controller) joinJam(w http.ResponseWriter, r *http.Request) {
	var req joinJamRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"errors": validationErrors})
		return
	}

	if err := c.jamClient.JoinRoom(r.Context(), req.RoomID); err != nil {
		if errors.Is(err, room.ErrAlreadyInRoom) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{"data": c.jamClient.Status()})
}

func (c *Controller) leaveJam(w http.ResponseWriter, r *http.Request) {
	c.jamClient.LeaveRoom()
	writeJSON(w, http.StatusOK, envelope{"data": c.jamClient.Status()})
}

type sendChatRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

func (c *Controller) sendJamChat(w http.ResponseWriter, r *http.Request) {
	var req sendChatRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"errors": validationErrors})
		return
	}

	if err := c.jamClient.SendChatMessage(req.Content); err != nil {
		if errors.Is(err, room.ErrNotInRoom) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (c *Controller) getJamChat(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"data": c.jamClient.ChatLog()})
}
