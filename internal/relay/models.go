package relay

// Event types broadcast to room members.
const (
	EventRoomState            = "room_state"
	EventParticipantJoined    = "participant_joined"
	EventParticipantLeft      = "participant_left"
	EventChatMessage          = "chat_message"
	EventPlaybackStateChanged = "playback_state_changed"
)

// Output is the envelope for every message sent to a member connection.
type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// PlayerState is the shared playback state of a room. Seq is a per-sender
// monotonic sequence number: state carrying a seq at or below the last
// applied one from the same sender is stale and discarded.
type PlayerState struct {
	SenderID    string  `json:"sender_id" redis:"sender_id"`
	Seq         uint64  `json:"seq" redis:"seq"`
	IsPlaying   bool    `json:"is_playing" redis:"is_playing"`
	CurrentTime float64 `json:"current_time" redis:"current_time"`
	UpdatedAt   int64   `json:"updated_at" redis:"updated_at"`
}

type ChatMessage struct {
	ID       string `json:"id"`
	SenderID string `json:"sender_id"`
	Content  string `json:"content"`
	SentAt   int64  `json:"sent_at"`
}

// RoomState is the snapshot sent to a member on join.
type RoomState struct {
	RoomID       string        `json:"room_id"`
	Participants []string      `json:"participants"`
	Player       PlayerState   `json:"player"`
	Chat         []ChatMessage `json:"chat"`
}
