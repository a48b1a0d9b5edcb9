package relay_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamwave/player/internal/relay"
	"github.com/jamwave/player/internal/relay/conn"
	relayRedis "github.com/jamwave/player/internal/relay/redis"
	"github.com/jamwave/player/pkg/randstr"
)

func newTestService(t *testing.T, membersLimit int) *relay.Service {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	roomRepo := relayRedis.NewRepo(rc, 10*time.Minute, 200)
	connRepo := conn.NewRepo()
	generator := randstr.New([]byte("abcdefghijklmnopqrstuvwxyz0123456789"))

	return relay.NewService(roomRepo, connRepo, generator, membersLimit, slog.Default())
}

func TestCreateAndJoinRoom(t *testing.T) {
	service := newTestService(t, 3)
	ctx := context.Background()

	roomID, err := service.CreateRoom(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, roomID, 8)

	state, err := service.JoinRoom(ctx, roomID, "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, roomID, state.RoomID)
	assert.Equal(t, []string{"alice"}, state.Participants)
	assert.Empty(t, state.Chat)

	state, err = service.JoinRoom(ctx, roomID, "bob", nil)
	require.NoError(t, err)
	assert.Len(t, state.Participants, 2)
}

func TestJoinRoomNotFound(t *testing.T) {
	service := newTestService(t, 3)

	_, err := service.JoinRoom(context.Background(), "nope1234", "alice", nil)
	assert.ErrorIs(t, err, relay.ErrRoomNotFound)
}

func TestJoinRoomMembersLimit(t *testing.T) {
	service := newTestService(t, 2)
	ctx := context.Background()

	roomID, err := service.CreateRoom(ctx, "alice")
	require.NoError(t, err)

	_, err = service.JoinRoom(ctx, roomID, "alice", nil)
	require.NoError(t, err)
	_, err = service.JoinRoom(ctx, roomID, "bob", nil)
	require.NoError(t, err)

	_, err = service.JoinRoom(ctx, roomID, "carol", nil)
	assert.ErrorIs(t, err, relay.ErrMembersLimitReached)
}

func TestUpdatePlayerStateSeq(t *testing.T) {
	service := newTestService(t, 3)
	ctx := context.Background()

	roomID, err := service.CreateRoom(ctx, "alice")
	require.NoError(t, err)
	_, err = service.JoinRoom(ctx, roomID, "alice", nil)
	require.NoError(t, err)

	err = service.UpdatePlayerState(ctx, roomID, relay.PlayerState{
		SenderID:    "alice",
		Seq:         1,
		IsPlaying:   true,
		CurrentTime: 12.5,
	})
	require.NoError(t, err)

	// same sender, seq did not advance
	err = service.UpdatePlayerState(ctx, roomID, relay.PlayerState{
		SenderID:    "alice",
		Seq:         1,
		IsPlaying:   false,
		CurrentTime: 30,
	})
	assert.ErrorIs(t, err, relay.ErrStalePlaybackState)

	state, err := service.RoomStateForTest(ctx, roomID)
	require.NoError(t, err)
	assert.True(t, state.Player.IsPlaying)
	assert.Equal(t, 12.5, state.Player.CurrentTime)
	assert.Equal(t, uint64(1), state.Player.Seq)

	// a different sender starts its own sequence
	err = service.UpdatePlayerState(ctx, roomID, relay.PlayerState{
		SenderID:    "bob",
		Seq:         1,
		IsPlaying:   false,
		CurrentTime: 30,
	})
	require.NoError(t, err)

	state, err = service.RoomStateForTest(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, "bob", state.Player.SenderID)
	assert.False(t, state.Player.IsPlaying)
	assert.NotZero(t, state.Player.UpdatedAt)
}

func TestLeaveRoomIdempotent(t *testing.T) {
	service := newTestService(t, 3)
	ctx := context.Background()

	roomID, err := service.CreateRoom(ctx, "alice")
	require.NoError(t, err)
	_, err = service.JoinRoom(ctx, roomID, "alice", nil)
	require.NoError(t, err)
	_, err = service.JoinRoom(ctx, roomID, "bob", nil)
	require.NoError(t, err)

	require.NoError(t, service.LeaveRoom(ctx, "bob"))
	require.NoError(t, service.LeaveRoom(ctx, "bob"))

	state, err := service.RoomStateForTest(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, state.Participants)

	// last member out removes the room
	require.NoError(t, service.LeaveRoom(ctx, "alice"))
	exists, err := service.RoomExistsForTest(ctx, roomID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSendChatMessage(t *testing.T) {
	service := newTestService(t, 3)
	ctx := context.Background()

	roomID, err := service.CreateRoom(ctx, "alice")
	require.NoError(t, err)
	_, err = service.JoinRoom(ctx, roomID, "alice", nil)
	require.NoError(t, err)

	_, err = service.SendChatMessage(ctx, roomID, "alice", "")
	assert.ErrorIs(t, err, relay.ErrEmptyChatMessage)

	msg, err := service.SendChatMessage(ctx, roomID, "alice", "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.NotZero(t, msg.SentAt)

	_, err = service.SendChatMessage(ctx, roomID, "alice", "world")
	require.NoError(t, err)

	state, err := service.RoomStateForTest(ctx, roomID)
	require.NoError(t, err)
	require.Len(t, state.Chat, 2)
	assert.Equal(t, "hello", state.Chat[0].Content)
	assert.Equal(t, "world", state.Chat[1].Content)
}
