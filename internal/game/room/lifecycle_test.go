package room

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ines1102/SeriousGame-sub000/internal/server/storage"
	"github.com/ines1102/SeriousGame-sub000/internal/testutil"
)

func TestEmptyRoomRemovedAfterGrace(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, func(o *Options) { o.EmptyRoomGrace = 30 * time.Millisecond })
	client := testutil.NewSimpleClient("c1", "")
	room, err := rm.CreateRoom(client, user("Ana"))
	require.NoError(t, err)

	rm.LeaveRoom(client)
	assert.NotNil(t, rm.GetRoom(room.Code), "room survives until the grace period ends")

	assert.Eventually(t, func() bool {
		return rm.GetRoom(room.Code) == nil
	}, time.Second, 5*time.Millisecond)
}

func TestJoinCancelsGrace(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, func(o *Options) { o.EmptyRoomGrace = 30 * time.Millisecond })
	creator := testutil.NewSimpleClient("c1", "")
	room, err := rm.CreateRoom(creator, user("Ana"))
	require.NoError(t, err)
	rm.LeaveRoom(creator)

	_, err = rm.JoinRoom(testutil.NewSimpleClient("c2", ""), room.Code, user("Bo"))
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	assert.Same(t, room, rm.GetRoom(room.Code))
}

func TestExpireEmptyRoom_StaleTimer(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t)
	room := NewMockRoom("5555", nil, testutil.NewSimpleClient("c1", "Ana"))
	rm.AddRoomForTest(room)

	// 房间不为空：什么都不做
	rm.expireEmptyRoom(room)
	assert.NotNil(t, rm.GetRoom("5555"))

	// 同号的新房间不会被旧计时器删除
	other := NewRoom("5555", nil)
	rm.expireEmptyRoom(other)
	assert.Same(t, room, rm.GetRoom("5555"))
}

func TestSweep(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, func(o *Options) { o.IdleTimeout = time.Minute })
	now := time.Now()

	stale := NewRoom("1111", nil)
	stale.CreatedAt = now.Add(-2 * time.Minute)
	fresh := NewRoom("2222", nil)
	occupied := NewMockRoom("3333", nil, testutil.NewSimpleClient("c1", "Ana"))
	occupied.CreatedAt = now.Add(-2 * time.Minute)

	for _, r := range []*Room{stale, fresh, occupied} {
		rm.AddRoomForTest(r)
	}

	assert.Equal(t, 1, rm.sweep(now))
	assert.Nil(t, rm.GetRoom("1111"))
	assert.NotNil(t, rm.GetRoom("2222"))
	assert.NotNil(t, rm.GetRoom("3333"))
	assert.Zero(t, rm.sweep(now))
}

func TestRemoveRoom(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t)
	room, c1, c2 := startGame(t, rm)

	rm.RemoveRoom(room.Code)
	assert.Nil(t, rm.GetRoom(room.Code))
	assert.Empty(t, c1.GetRoom())
	assert.Empty(t, c2.GetRoom())
	assert.Nil(t, rm.FindByConnection(c1.GetID()))

	// 幂等
	rm.RemoveRoom(room.Code)
	assert.Zero(t, rm.RoomCount())
}

func TestManager_MirrorsToRedis(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := storage.NewRedisStore(client)

	rm := newTestManager(t, func(o *Options) {
		o.Store = store
		o.EmptyRoomGrace = 200 * time.Millisecond
	})
	room, c1, c2 := startGame(t, rm)
	ctx := context.Background()

	assert.True(t, mr.Exists("roomcode:"+room.Code), "room code is reserved")

	assert.Eventually(t, func() bool {
		data, err := store.LoadRoom(ctx, room.Code)
		return err == nil && data != nil && data.Status == "playing" && len(data.Players) == 2
	}, time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		stats, err := store.GetStats(ctx)
		return err == nil &&
			stats[storage.StatRoomsCreated] == 1 &&
			stats[storage.StatGamesStarted] == 1
	}, time.Second, 10*time.Millisecond)

	rm.LeaveRoom(c1)
	rm.LeaveRoom(c2)

	assert.Eventually(t, func() bool {
		data, err := store.LoadRoom(ctx, room.Code)
		return err == nil && data == nil && !mr.Exists("roomcode:"+room.Code)
	}, time.Second, 10*time.Millisecond)
}
