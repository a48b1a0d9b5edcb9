package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/jamwave/player/internal/relay"
	"github.com/jamwave/player/pkg/wsrouter"
)

// streamEvents pushes a playback snapshot to the socket on every state
// change. Read side is only used to detect the peer going away.
func (c *Controller) streamEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	snapshots, unsubscribe := c.playerService.Subscribe()
	defer unsubscribe()

	// discard inbound frames, surface close errors
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(c.playerService.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		}
	}
}

type createRelayRoomRequest struct {
	CreatorID string `json:"creator_id" validate:"required"`
}

func (c *Controller) createRelayRoom(w http.ResponseWriter, r *http.Request) {
	var req createRelayRoomRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		writeJSON(w, http.StatusBadRequest, envelope{"errors": validationErrors})
		return
	}

	roomID, err := c.relayService.CreateRoom(r.Context(), req.CreatorID)
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to create relay room", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{"room_id": roomID})
}

// serveRoom is the relay's member endpoint: joins the room, sends the state
// snapshot, then routes inbound messages until the connection dies.
func (c *Controller) serveRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room-id")
	memberID := r.URL.Query().Get("member-id")
	if memberID == "" {
		writeJSON(w, http.StatusBadRequest, envelope{"error": "member-id query parameter is required"})
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	state, err := c.relayService.JoinRoom(r.Context(), roomID, memberID, conn)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to join room", "room_id", roomID, "member_id", memberID, "error", err)
		conn.WriteJSON(relay.Output{Type: "error", Payload: map[string]string{"message": err.Error()}})
		return
	}
	defer func() {
		if err := c.relayService.LeaveRoom(context.Background(), memberID); err != nil {
			c.logger.WarnContext(r.Context(), "failed to leave room", "member_id", memberID, "error", err)
		}
	}()

	if err := conn.WriteJSON(relay.Output{Type: relay.EventRoomState, Payload: state}); err != nil {
		return
	}

	router := c.roomRouter(roomID, memberID)
	if err := router.ServeConn(r.Context(), conn); err != nil {
		c.logger.DebugContext(r.Context(), "room connection closed", "member_id", memberID, "error", err)
	}
}

func (c *Controller) roomRouter(roomID, memberID string) *wsrouter.WSRouter {
	router := wsrouter.New()

	router.Handle("playback_state", func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		var state relay.PlayerState
		if err := json.Unmarshal(payload, &state); err != nil {
			return err
		}
		state.SenderID = memberID

		err := c.relayService.UpdatePlayerState(ctx, roomID, state)
		if errors.Is(err, relay.ErrStalePlaybackState) {
			// late arrival, nothing to tell the sender
			return nil
		}
		return err
	})

	router.Handle("chat_message", func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		var msg struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			return err
		}

		_, err := c.relayService.SendChatMessage(ctx, roomID, memberID, msg.Content)
		return err
	})

	return router
}
