package relay

import "context"

// Test-only shims so the external test package can reach unexported state.

func (s *Service) RoomStateForTest(ctx context.Context, roomID string) (RoomState, error) {
	return s.roomState(ctx, roomID)
}

func (s *Service) RoomExistsForTest(ctx context.Context, roomID string) (bool, error) {
	return s.roomRepo.RoomExists(ctx, roomID)
}
