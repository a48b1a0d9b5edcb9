package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrMembersLimitReached = errors.New("members limit reached")
	ErrStalePlaybackState  = errors.New("stale playback state")
	ErrEmptyChatMessage    = errors.New("empty chat message")
)

const roomIDLength = 8

type iRoomRepo interface {
	SetPlayerState(ctx context.Context, roomID string, state PlayerState) error
	GetPlayerState(ctx context.Context, roomID string) (PlayerState, error)
	RoomExists(ctx context.Context, roomID string) (bool, error)
	AddMember(ctx context.Context, roomID, memberID string) error
	RemoveMember(ctx context.Context, roomID, memberID string) error
	GetMembers(ctx context.Context, roomID string) ([]string, error)
	GetMemberRoom(ctx context.Context, memberID string) (string, error)
	AddChatMessage(ctx context.Context, roomID string, msg ChatMessage) error
	GetChatMessages(ctx context.Context, roomID string) ([]ChatMessage, error)
	RemoveRoom(ctx context.Context, roomID string) error
}

type iConnRepo interface {
	Add(memberID string, conn *websocket.Conn) error
	Get(memberID string) (*websocket.Conn, error)
	Remove(memberID string) error
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Service struct {
	roomRepo     iRoomRepo
	connRepo     iConnRepo
	generator    iGenerator
	logger       *slog.Logger
	membersLimit int
	now          func() time.Time
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, generator iGenerator, membersLimit int, logger *slog.Logger) *Service {
	return &Service{
		roomRepo:     roomRepo,
		connRepo:     connRepo,
		generator:    generator,
		logger:       logger,
		membersLimit: membersLimit,
		now:          time.Now,
	}
}

// CreateRoom provisions an empty room and returns its id. The creator joins
// separately over the room websocket, like any other member.
func (s *Service) CreateRoom(ctx context.Context, creatorID string) (string, error) {
	roomID := s.generator.GenerateRandomString(roomIDLength)

	if err := s.roomRepo.SetPlayerState(ctx, roomID, PlayerState{
		SenderID:  creatorID,
		UpdatedAt: s.now().UnixMilli(),
	}); err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}

	s.logger.InfoContext(ctx, "room created", "room_id", roomID, "creator_id", creatorID)

	return roomID, nil
}

// JoinRoom registers the member and its connection, notifies the other
// members, and returns the room snapshot for the newcomer.
func (s *Service) JoinRoom(ctx context.Context, roomID, memberID string, conn *websocket.Conn) (RoomState, error) {
	exists, err := s.roomRepo.RoomExists(ctx, roomID)
	if err != nil {
		return RoomState{}, fmt.Errorf("failed to check if room exists: %w", err)
	}
	if !exists {
		return RoomState{}, ErrRoomNotFound
	}

	members, err := s.roomRepo.GetMembers(ctx, roomID)
	if err != nil {
		return RoomState{}, fmt.Errorf("failed to get members: %w", err)
	}
	if len(members) >= s.membersLimit {
		return RoomState{}, ErrMembersLimitReached
	}

	if err := s.roomRepo.AddMember(ctx, roomID, memberID); err != nil {
		return RoomState{}, fmt.Errorf("failed to add member: %w", err)
	}
	if err := s.connRepo.Add(memberID, conn); err != nil {
		return RoomState{}, fmt.Errorf("failed to add conn: %w", err)
	}

	s.broadcast(ctx, roomID, memberID, Output{
		Type:    EventParticipantJoined,
		Payload: map[string]string{"member_id": memberID},
	})

	state, err := s.roomState(ctx, roomID)
	if err != nil {
		return RoomState{}, err
	}

	s.logger.InfoContext(ctx, "member joined room", "room_id", roomID, "member_id", memberID)

	return state, nil
}

// LeaveRoom removes the member from whatever room it is in. Leaving twice is
// a no-op. The room is dropped when its last member leaves.
func (s *Service) LeaveRoom(ctx context.Context, memberID string) error {
	roomID, err := s.roomRepo.GetMemberRoom(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to get member room: %w", err)
	}
	if roomID == "" {
		return nil
	}

	if err := s.connRepo.Remove(memberID); err != nil {
		s.logger.DebugContext(ctx, "failed to remove conn", "member_id", memberID, "error", err)
	}
	if err := s.roomRepo.RemoveMember(ctx, roomID, memberID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	members, err := s.roomRepo.GetMembers(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to get members: %w", err)
	}
	if len(members) == 0 {
		if err := s.roomRepo.RemoveRoom(ctx, roomID); err != nil {
			return fmt.Errorf("failed to remove room: %w", err)
		}
		s.logger.InfoContext(ctx, "room removed", "room_id", roomID)
		return nil
	}

	s.broadcast(ctx, roomID, memberID, Output{
		Type:    EventParticipantLeft,
		Payload: map[string]string{"member_id": memberID},
	})

	s.logger.InfoContext(ctx, "member left room", "room_id", roomID, "member_id", memberID)

	return nil
}

// UpdatePlayerState stores the new shared state and fans it out to every
// member except the sender. State whose seq does not advance past the stored
// one for the same sender is discarded with ErrStalePlaybackState.
func (s *Service) UpdatePlayerState(ctx context.Context, roomID string, state PlayerState) error {
	stored, err := s.roomRepo.GetPlayerState(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to get player state: %w", err)
	}
	if stored.SenderID == state.SenderID && state.Seq <= stored.Seq {
		return ErrStalePlaybackState
	}

	state.UpdatedAt = s.now().UnixMilli()
	if err := s.roomRepo.SetPlayerState(ctx, roomID, state); err != nil {
		return fmt.Errorf("failed to set player state: %w", err)
	}

	s.broadcast(ctx, roomID, state.SenderID, Output{
		Type:    EventPlaybackStateChanged,
		Payload: state,
	})

	return nil
}

// SendChatMessage appends the message to the room log and fans it out to
// every member, the sender included.
func (s *Service) SendChatMessage(ctx context.Context, roomID, senderID, content string) (ChatMessage, error) {
	if content == "" {
		return ChatMessage{}, ErrEmptyChatMessage
	}

	msg := ChatMessage{
		ID:       uuid.NewString(),
		SenderID: senderID,
		Content:  content,
		SentAt:   s.now().UnixMilli(),
	}
	if err := s.roomRepo.AddChatMessage(ctx, roomID, msg); err != nil {
		return ChatMessage{}, fmt.Errorf("failed to add chat message: %w", err)
	}

	s.broadcast(ctx, roomID, "", Output{
		Type:    EventChatMessage,
		Payload: msg,
	})

	return msg, nil
}

func (s *Service) roomState(ctx context.Context, roomID string) (RoomState, error) {
	members, err := s.roomRepo.GetMembers(ctx, roomID)
	if err != nil {
		return RoomState{}, fmt.Errorf("failed to get members: %w", err)
	}

	player, err := s.roomRepo.GetPlayerState(ctx, roomID)
	if err != nil {
		return RoomState{}, fmt.Errorf("failed to get player state: %w", err)
	}

	chat, err := s.roomRepo.GetChatMessages(ctx, roomID)
	if err != nil {
		return RoomState{}, fmt.Errorf("failed to get chat messages: %w", err)
	}

	return RoomState{
		RoomID:       roomID,
		Participants: members,
		Player:       player,
		Chat:         chat,
	}, nil
}

// broadcast writes the message to every member of the room except excludeID.
// Write failures are logged, not propagated: a dead conn is cleaned up when
// its read loop exits.
func (s *Service) broadcast(ctx context.Context, roomID, excludeID string, out Output) {
	members, err := s.roomRepo.GetMembers(ctx, roomID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to get members for broadcast", "room_id", roomID, "error", err)
		return
	}

	for _, memberID := range members {
		if memberID == excludeID {
			continue
		}
		conn, err := s.connRepo.Get(memberID)
		if err != nil || conn == nil {
			continue
		}
		if err := conn.WriteJSON(out); err != nil {
			s.logger.DebugContext(ctx, "failed to write to member", "member_id", memberID, "error", err)
		}
	}
}
