package room

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jamwave/player/internal/player"
	"github.com/jamwave/player/internal/relay"
	"github.com/jamwave/player/pkg/wsrouter"
)

var (
	ErrNotInRoom     = errors.New("not in a room")
	ErrAlreadyInRoom = errors.New("already in a room")
)

const (
	reconnectAttempts = 5
	reconnectDelay    = time.Second
	chatLogLimit      = 200
)

type iPlayer interface {
	Seek(position float64)
	TogglePlay() error
	Snapshot() player.Snapshot
}

// Client synchronizes the local player with a relay room. While jam mode is
// on, local transport actions are emitted to the room and remote playback
// state is applied to the local player.
type Client struct {
	logger     *slog.Logger
	player     iPlayer
	httpc      *http.Client
	relayURL   string
	relayWSURL string
	publicURL  string
	memberID   string

	mu           sync.Mutex
	conn         *websocket.Conn
	roomID       string
	jamMode      bool
	seq          uint64
	lastApplied  map[string]uint64
	participants []string
	chat         []relay.ChatMessage
	cancel       context.CancelFunc
}

type Config struct {
	// RelayURL is the relay's http base, e.g. http://localhost:8080.
	RelayURL string
	// RelayWSURL is the relay's websocket base, e.g. ws://localhost:8080.
	RelayWSURL string
	// PublicURL is the base used to build shareable room links.
	PublicURL string
}

func NewClient(p iPlayer, cfg *Config, logger *slog.Logger) *Client {
	return &Client{
		logger:      logger,
		player:      p,
		httpc:       &http.Client{Timeout: 10 * time.Second},
		relayURL:    cfg.RelayURL,
		relayWSURL:  cfg.RelayWSURL,
		publicURL:   cfg.PublicURL,
		memberID:    uuid.NewString(),
		lastApplied: make(map[string]uint64),
	}
}

func (c *Client) MemberID() string {
	return c.memberID
}

// CreateRoom provisions a room on the relay, joins it, and returns the
// shareable link.
func (c *Client) CreateRoom(ctx context.Context) (string, error) {
	c.mu.Lock()
	inRoom := c.jamMode
	c.mu.Unlock()
	if inRoom {
		return "", ErrAlreadyInRoom
	}

	body, _ := json.Marshal(map[string]string{"creator_id": c.memberID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL+"/api/v1/relay/rooms", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to create room: unexpected status %d", resp.StatusCode)
	}

	var created createRoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode create room response: %w", err)
	}

	if err := c.JoinRoom(ctx, created.RoomID); err != nil {
		return "", err
	}

	return c.ShareURL(), nil
}

// JoinRoom dials the room websocket and starts applying remote state.
func (c *Client) JoinRoom(ctx context.Context, roomID string) error {
	c.mu.Lock()
	if c.jamMode {
		c.mu.Unlock()
		return ErrAlreadyInRoom
	}
	c.mu.Unlock()

	conn, err := c.dial(ctx, roomID)
	if err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.conn = conn
	c.roomID = roomID
	c.jamMode = true
	c.cancel = cancel
	c.lastApplied = make(map[string]uint64)
	c.mu.Unlock()

	go c.readLoop(loopCtx, conn)

	c.logger.InfoContext(ctx, "joined jam room", "room_id", roomID, "member_id", c.memberID)

	return nil
}

// LeaveRoom disconnects from the room. Leaving while not in a room is a
// no-op.
func (c *Client) LeaveRoom() {
	c.mu.Lock()
	conn := c.conn
	cancel := c.cancel
	roomID := c.roomID
	wasIn := c.jamMode
	c.conn = nil
	c.cancel = nil
	c.roomID = ""
	c.jamMode = false
	c.participants = nil
	c.chat = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
	if wasIn {
		c.logger.Info("left jam room", "room_id", roomID)
	}
}

// EmitPlaybackState sends the local playback state to the room. Nothing is
// sent outside jam mode. Sends are fire and forget: a failed write is
// handled by the read loop noticing the dead connection.
func (c *Client) EmitPlaybackState(isPlaying bool, currentTime float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.jamMode || c.conn == nil {
		return
	}

	c.seq++
	state := relay.PlayerState{
		SenderID:    c.memberID,
		Seq:         c.seq,
		IsPlaying:   isPlaying,
		CurrentTime: currentTime,
		UpdatedAt:   time.Now().UnixMilli(),
	}
	if err := c.writeLocked(msgPlaybackState, state); err != nil {
		c.logger.Debug("failed to emit playback state", "error", err)
	}
}

// SendChatMessage sends a chat message to the room.
func (c *Client) SendChatMessage(content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.jamMode || c.conn == nil {
		return ErrNotInRoom
	}

	return c.writeLocked(msgChatMessage, sendChatPayload{Content: content})
}

func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		JamMode:      c.jamMode,
		RoomID:       c.roomID,
		MemberID:     c.memberID,
		Participants: append([]string(nil), c.participants...),
	}
	if c.jamMode {
		st.ShareURL = c.publicURL + "/room/" + c.roomID
	}
	return st
}

func (c *Client) ShareURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.roomID == "" {
		return ""
	}
	return c.publicURL + "/room/" + c.roomID
}

// ChatLog returns the chat messages seen so far, oldest first.
func (c *Client) ChatLog() []relay.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]relay.ChatMessage(nil), c.chat...)
}

func (c *Client) dial(ctx context.Context, roomID string) (*websocket.Conn, error) {
	url := c.relayWSURL + "/ws/room/" + roomID + "?member-id=" + c.memberID
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial room: %w", err)
	}
	return conn, nil
}

func (c *Client) writeLocked(messageType string, payload any) error {
	return c.conn.WriteJSON(map[string]any{
		"type":    messageType,
		"payload": payload,
	})
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	router := wsrouter.New()
	router.Handle(relay.EventRoomState, c.onRoomState)
	router.Handle(relay.EventPlaybackStateChanged, c.onPlaybackStateChanged)
	router.Handle(relay.EventChatMessage, c.onChatMessage)
	router.Handle(relay.EventParticipantJoined, c.onParticipantJoined)
	router.Handle(relay.EventParticipantLeft, c.onParticipantLeft)

	err := router.ServeConn(ctx, conn)
	if ctx.Err() != nil {
		// deliberate leave
		return
	}
	c.logger.Warn("room connection lost", "error", err)
	c.reconnect(ctx)
}

// reconnect retries the room websocket a fixed number of times before
// giving up and dropping out of jam mode.
func (c *Client) reconnect(ctx context.Context) {
	c.mu.Lock()
	roomID := c.roomID
	jamMode := c.jamMode
	c.mu.Unlock()
	if !jamMode {
		return
	}

	for attempt := 1; attempt <= reconnectAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}

		conn, err := c.dial(ctx, roomID)
		if err != nil {
			c.logger.Warn("reconnect attempt failed", "attempt", attempt, "error", err)
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		c.logger.Info("reconnected to jam room", "room_id", roomID, "attempt", attempt)
		c.readLoop(ctx, conn)
		return
	}

	c.logger.Error("giving up on jam room after failed reconnects", "room_id", roomID)
	c.LeaveRoom()
}

func (c *Client) onRoomState(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var state relay.RoomState
	if err := json.Unmarshal(payload, &state); err != nil {
		return fmt.Errorf("failed to unmarshal room state: %w", err)
	}

	c.mu.Lock()
	c.participants = state.Participants
	c.chat = state.Chat
	c.mu.Unlock()

	if state.Player.SenderID != "" && state.Player.SenderID != c.memberID {
		c.applyPlayerState(state.Player)
	}

	return nil
}

func (c *Client) onPlaybackStateChanged(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var state relay.PlayerState
	if err := json.Unmarshal(payload, &state); err != nil {
		return fmt.Errorf("failed to unmarshal player state: %w", err)
	}

	if state.SenderID == c.memberID {
		return nil
	}

	c.mu.Lock()
	if last, ok := c.lastApplied[state.SenderID]; ok && state.Seq <= last {
		c.mu.Unlock()
		c.logger.Debug("discarding stale playback state", "sender_id", state.SenderID, "seq", state.Seq)
		return nil
	}
	c.lastApplied[state.SenderID] = state.Seq
	c.mu.Unlock()

	c.applyPlayerState(state)

	return nil
}

// applyPlayerState steers the local player towards the remote state.
func (c *Client) applyPlayerState(state relay.PlayerState) {
	snap := c.player.Snapshot()

	c.player.Seek(state.CurrentTime)
	if snap.IsPlaying != state.IsPlaying {
		if err := c.player.TogglePlay(); err != nil {
			c.logger.Warn("failed to apply remote playback state", "error", err)
		}
	}
}

func (c *Client) onChatMessage(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var msg relay.ChatMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal chat message: %w", err)
	}

	c.mu.Lock()
	c.chat = append(c.chat, msg)
	if len(c.chat) > chatLogLimit {
		c.chat = c.chat[len(c.chat)-chatLogLimit:]
	}
	c.mu.Unlock()

	return nil
}

func (c *Client) onParticipantJoined(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var p struct {
		MemberID string `json:"member_id"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to unmarshal participant: %w", err)
	}

	c.mu.Lock()
	c.participants = append(c.participants, p.MemberID)
	c.mu.Unlock()

	return nil
}

func (c *Client) onParticipantLeft(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var p struct {
		MemberID string `json:"member_id"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to unmarshal participant: %w", err)
	}

	c.mu.Lock()
	for i, id := range c.participants {
		if id == p.MemberID {
			c.participants = append(c.participants[:i], c.participants[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	return nil
}
