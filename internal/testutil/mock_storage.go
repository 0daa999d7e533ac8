//go:build !production

package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ines1102/SeriousGame-sub000/internal/server/storage"
)

// MockRoomStore 房间镜像存储 mock
type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) SaveRoom(ctx context.Context, roomCode string, data *storage.RoomData) error {
	args := m.Called(ctx, roomCode, data)
	return args.Error(0)
}

func (m *MockRoomStore) DeleteRoom(ctx context.Context, roomCode string) error {
	args := m.Called(ctx, roomCode)
	return args.Error(0)
}

func (m *MockRoomStore) ReserveCode(ctx context.Context, code string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, code, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoomStore) ReleaseCode(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockRoomStore) IncrStat(ctx context.Context, field string) error {
	args := m.Called(ctx, field)
	return args.Error(0)
}
