package room

// Message types sent by the client to the relay.
const (
	msgPlaybackState = "playback_state"
	msgChatMessage   = "chat_message"
)

type sendChatPayload struct {
	Content string `json:"content"`
}

type createRoomResponse struct {
	RoomID string `json:"room_id"`
}

// Status is the jam-side view exposed on the control surface.
type Status struct {
	JamMode      bool     `json:"jam_mode"`
	RoomID       string   `json:"room_id,omitempty"`
	ShareURL     string   `json:"share_url,omitempty"`
	MemberID     string   `json:"member_id"`
	Participants []string `json:"participants"`
}
