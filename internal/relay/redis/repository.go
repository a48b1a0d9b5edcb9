package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jamwave/player/internal/relay"
)

// repo keeps room state in redis: a hash per room player, a set of member
// ids, and a capped list for the chat log. Every touch refreshes the room's
// TTL so abandoned rooms expire on their own.
type repo struct {
	rc             *redis.Client
	expireDuration time.Duration
	chatLogLimit   int64
}

func NewRepo(rc *redis.Client, expireDuration time.Duration, chatLogLimit int) *repo {
	return &repo{
		rc:             rc,
		expireDuration: expireDuration,
		chatLogLimit:   int64(chatLogLimit),
	}
}

func (r repo) playerKey(roomID string) string {
	return "room:" + roomID + ":player"
}

func (r repo) membersKey(roomID string) string {
	return "room:" + roomID + ":members"
}

func (r repo) chatKey(roomID string) string {
	return "room:" + roomID + ":chat"
}

func (r repo) memberRoomKey(memberID string) string {
	return "member:" + memberID + ":room"
}

func (r repo) SetPlayerState(ctx context.Context, roomID string, state relay.PlayerState) error {
	playerKey := r.playerKey(roomID)

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, playerKey, state)
	pipe.Expire(ctx, playerKey, r.expireDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set player state: %w", err)
	}

	return nil
}

func (r repo) GetPlayerState(ctx context.Context, roomID string) (relay.PlayerState, error) {
	playerKey := r.playerKey(roomID)

	var state relay.PlayerState
	if err := r.rc.HGetAll(ctx, playerKey).Scan(&state); err != nil {
		return relay.PlayerState{}, fmt.Errorf("failed to get player state: %w", err)
	}

	r.rc.Expire(ctx, playerKey, r.expireDuration)

	return state, nil
}

func (r repo) RoomExists(ctx context.Context, roomID string) (bool, error) {
	res, err := r.rc.Exists(ctx, r.playerKey(roomID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if room exists: %w", err)
	}

	return res > 0, nil
}

func (r repo) AddMember(ctx context.Context, roomID, memberID string) error {
	pipe := r.rc.TxPipeline()
	pipe.SAdd(ctx, r.membersKey(roomID), memberID)
	pipe.Expire(ctx, r.membersKey(roomID), r.expireDuration)
	pipe.Set(ctx, r.memberRoomKey(memberID), roomID, r.expireDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	return nil
}

func (r repo) RemoveMember(ctx context.Context, roomID, memberID string) error {
	pipe := r.rc.TxPipeline()
	pipe.SRem(ctx, r.membersKey(roomID), memberID)
	pipe.Del(ctx, r.memberRoomKey(memberID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

func (r repo) GetMembers(ctx context.Context, roomID string) ([]string, error) {
	members, err := r.rc.SMembers(ctx, r.membersKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}

	return members, nil
}

// GetMemberRoom returns the room the member belongs to, or "" when none.
func (r repo) GetMemberRoom(ctx context.Context, memberID string) (string, error) {
	roomID, err := r.rc.Get(ctx, r.memberRoomKey(memberID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get member room: %w", err)
	}

	return roomID, nil
}

func (r repo) AddChatMessage(ctx context.Context, roomID string, msg relay.ChatMessage) error {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal chat message: %w", err)
	}

	chatKey := r.chatKey(roomID)
	pipe := r.rc.TxPipeline()
	pipe.LPush(ctx, chatKey, encoded)
	pipe.LTrim(ctx, chatKey, 0, r.chatLogLimit-1)
	pipe.Expire(ctx, chatKey, r.expireDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add chat message: %w", err)
	}

	return nil
}

// GetChatMessages returns the capped chat log, oldest first.
func (r repo) GetChatMessages(ctx context.Context, roomID string) ([]relay.ChatMessage, error) {
	raw, err := r.rc.LRange(ctx, r.chatKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get chat messages: %w", err)
	}

	messages := make([]relay.ChatMessage, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var msg relay.ChatMessage
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chat message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

func (r repo) RemoveRoom(ctx context.Context, roomID string) error {
	if err := r.rc.Del(ctx, r.playerKey(roomID), r.membersKey(roomID), r.chatKey(roomID)).Err(); err != nil {
		return fmt.Errorf("failed to remove room: %w", err)
	}

	return nil
}
