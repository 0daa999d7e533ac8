package handler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ines1102/SeriousGame-sub000/internal/game/room"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol/codec"
	"github.com/ines1102/SeriousGame-sub000/internal/testutil"
	"github.com/ines1102/SeriousGame-sub000/internal/types"
)

func newTestHandler(t *testing.T, maintenance bool) *Handler {
	t.Helper()
	rm := room.NewRoomManager(room.Options{
		Builder:        room.NewTestBuilder(7),
		EmptyRoomGrace: 15 * time.Second,
		IdleTimeout:    time.Hour,
	})
	t.Cleanup(rm.Close)

	return NewHandler(HandlerDeps{Server: testutil.NewStubServer(maintenance), RoomManager: rm})
}

func message(t *testing.T, typ protocol.MessageType, payload any) *protocol.Message {
	t.Helper()
	if payload == nil {
		return &protocol.Message{Type: typ}
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &protocol.Message{Type: typ, Payload: raw}
}

func errorCode(t *testing.T, msg *protocol.Message) int {
	t.Helper()
	require.NotNil(t, msg)
	p, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	return p.Code
}

// createRoom 通过处理器创建房间，返回房间号
func createRoom(t *testing.T, h *Handler, c *testutil.SimpleClient, name string) string {
	t.Helper()
	h.Handle(c, message(t, protocol.MsgCreateRoom, protocol.CreateRoomPayload{
		UserData: protocol.UserData{Name: name},
	}))
	last := c.LastMessage()
	require.NotNil(t, last)
	require.Equal(t, protocol.MsgRoomCreated, last.Type)
	p, err := codec.ParsePayload[protocol.RoomCreatedPayload](last)
	require.NoError(t, err)
	return p.RoomCode
}

func TestHandle_Ping(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)
	c := testutil.NewSimpleClient("c1", "")

	h.Handle(c, message(t, protocol.MsgPing, protocol.PingPayload{Timestamp: 42}))

	last := c.LastMessage()
	require.Equal(t, protocol.MsgPong, last.Type)
	p, err := codec.ParsePayload[protocol.PongPayload](last)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ClientTimestamp)
	assert.Positive(t, p.ServerTimestamp)
}

func TestHandle_UnknownType(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)
	c := testutil.NewSimpleClient("c1", "")

	h.Handle(c, message(t, "bogus", nil))

	last := c.LastMessage()
	assert.Equal(t, protocol.MsgError, last.Type)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, errorCode(t, last))
}

func TestHandle_PanicRecovered(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)
	h.handlers["boom"] = func(types.ClientInterface, *protocol.Message) { panic("boom") }
	c := testutil.NewSimpleClient("c1", "")

	assert.NotPanics(t, func() { h.Handle(c, message(t, "boom", nil)) })
	assert.Equal(t, protocol.ErrCodeUnknown, errorCode(t, c.LastMessage()))

	// 处理器仍可继续工作
	h.Handle(c, message(t, protocol.MsgPing, protocol.PingPayload{}))
	assert.Equal(t, protocol.MsgPong, c.LastMessage().Type)
}

func TestHandle_CreateRoom(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)
	c := testutil.NewSimpleClient("c1", "")

	code := createRoom(t, h, c, "Ana")
	assert.Len(t, code, 4)
	assert.Equal(t, code, c.GetRoom())
}

func TestHandle_CreateRoomErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		maintenance bool
		msg         func(t *testing.T) *protocol.Message
		wantCode    int
	}{
		{
			name: "malformed payload",
			msg: func(*testing.T) *protocol.Message {
				return &protocol.Message{Type: protocol.MsgCreateRoom, Payload: []byte("{")}
			},
			wantCode: protocol.ErrCodeInvalidMsg,
		},
		{
			name: "blank name",
			msg: func(t *testing.T) *protocol.Message {
				return message(t, protocol.MsgCreateRoom, protocol.CreateRoomPayload{UserData: protocol.UserData{Name: " "}})
			},
			wantCode: protocol.ErrCodeInvalidName,
		},
		{
			name:        "maintenance",
			maintenance: true,
			msg: func(t *testing.T) *protocol.Message {
				return message(t, protocol.MsgCreateRoom, protocol.CreateRoomPayload{UserData: protocol.UserData{Name: "Ana"}})
			},
			wantCode: protocol.ErrCodeServerMaintenance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newTestHandler(t, tt.maintenance)
			c := testutil.NewSimpleClient("c1", "")

			h.Handle(c, tt.msg(t))

			last := c.LastMessage()
			assert.Equal(t, protocol.MsgError, last.Type)
			assert.Equal(t, tt.wantCode, errorCode(t, last))
			assert.Empty(t, c.GetRoom())
		})
	}
}

func TestHandle_JoinRoomErrors(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)
	host := testutil.NewSimpleClient("host", "")
	code := createRoom(t, h, host, "Ana")
	h.Handle(testutil.NewSimpleClient("guest", ""), message(t, protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode: code, UserData: protocol.UserData{Name: "Bo"},
	}))

	tests := []struct {
		name     string
		code     string
		userName string
		wantType protocol.MessageType
		wantCode int
		wantText string
	}{
		{"unknown room", "0000", "Cy", protocol.MsgRoomError, protocol.ErrCodeRoomNotFound, "La room n'existe pas."},
		{"full room", code, "Cy", protocol.MsgRoomError, protocol.ErrCodeRoomFull, "La room est pleine."},
		{"blank name", code, "", protocol.MsgError, protocol.ErrCodeInvalidName, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testutil.NewSimpleClient("c-"+tt.name, "")
			h.Handle(c, message(t, protocol.MsgJoinRoom, protocol.JoinRoomPayload{
				RoomCode: tt.code, UserData: protocol.UserData{Name: tt.userName},
			}))

			last := c.LastMessage()
			require.NotNil(t, last)
			assert.Equal(t, tt.wantType, last.Type)
			p, err := codec.ParsePayload[protocol.ErrorPayload](last)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, p.Code)
			if tt.wantText != "" {
				assert.Equal(t, tt.wantText, p.Message)
			}
			assert.Empty(t, c.GetRoom())
		})
	}
}

func TestHandle_JoinStartedRoom(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)
	host := testutil.NewSimpleClient("host", "")
	guest := testutil.NewSimpleClient("guest", "")
	code := createRoom(t, h, host, "Ana")
	h.Handle(guest, message(t, protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode: code, UserData: protocol.UserData{Name: "Bo"},
	}))
	h.Handle(guest, message(t, protocol.MsgLeaveRoom, nil))

	late := testutil.NewSimpleClient("late", "")
	h.Handle(late, message(t, protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode: code, UserData: protocol.UserData{Name: "Cy"},
	}))

	last := late.LastMessage()
	assert.Equal(t, protocol.MsgRoomError, last.Type)
	assert.Equal(t, protocol.ErrCodeGameStarted, errorCode(t, last))

	require.Len(t, host.MessagesOfType(protocol.MsgOpponentLeft), 1)
}

func TestHandle_FullGameFlow(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)
	host := testutil.NewSimpleClient("host", "")
	guest := testutil.NewSimpleClient("guest", "")
	code := createRoom(t, h, host, "Ana")

	h.Handle(guest, message(t, protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode: code, UserData: protocol.UserData{Name: "Bo"},
	}))

	starts := host.MessagesOfType(protocol.MsgGameStart)
	require.Len(t, starts, 1)
	start, err := codec.ParsePayload[protocol.GameStartPayload](starts[0])
	require.NoError(t, err)
	assert.Equal(t, "host", start.FirstTurn)
	require.Len(t, start.Hands.PlayerHand, 5)

	// 非回合玩家出牌
	guest.Reset()
	h.Handle(guest, message(t, protocol.MsgPlayCard, protocol.PlayCardPayload{Slot: "a1", Card: start.Hands.PlayerHand[0]}))
	assert.Equal(t, protocol.ErrCodeNotYourTurn, errorCode(t, guest.LastMessage()))

	// 回合玩家以 cardPlayed 事件出牌
	host.Reset()
	guest.Reset()
	h.Handle(host, message(t, protocol.MsgCardPlayed, protocol.PlayCardPayload{Slot: "a1", Card: start.Hands.PlayerHand[0]}))

	for _, c := range []*testutil.SimpleClient{host, guest} {
		msgs := c.SentMessages()
		require.Len(t, msgs, 2)
		assert.Equal(t, protocol.MsgCardPlayed, msgs[0].Type)
		assert.Equal(t, protocol.MsgTurnUpdate, msgs[1].Type)
		turn, err := codec.ParsePayload[protocol.TurnUpdatePayload](msgs[1])
		require.NoError(t, err)
		assert.Equal(t, "guest", turn.PlayerID)
	}

	// 对手摸牌
	host.Reset()
	h.Handle(guest, message(t, protocol.MsgDrawCard, nil))
	require.Len(t, guest.MessagesOfType(protocol.MsgCardDrawn), 1)
	require.Len(t, host.MessagesOfType(protocol.MsgOpponentDrew), 1)
	assert.Empty(t, host.MessagesOfType(protocol.MsgCardDrawn))
}

func TestHandle_PlayCardInvalid(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)
	c := testutil.NewSimpleClient("c1", "")

	h.Handle(c, message(t, protocol.MsgPlayCard, protocol.PlayCardPayload{Slot: ""}))
	assert.Equal(t, protocol.ErrCodeInvalidMsg, errorCode(t, c.LastMessage()))

	h.Handle(c, message(t, protocol.MsgPlayCard, protocol.PlayCardPayload{Slot: "a1"}))
	assert.Equal(t, protocol.ErrCodeNotInRoom, errorCode(t, c.LastMessage()))

	h.Handle(c, message(t, protocol.MsgDrawCard, nil))
	assert.Equal(t, protocol.ErrCodeNotInRoom, errorCode(t, c.LastMessage()))
}

func TestHandleDisconnect(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)
	host := testutil.NewSimpleClient("host", "")
	guest := testutil.NewSimpleClient("guest", "")
	code := createRoom(t, h, host, "Ana")
	h.Handle(guest, message(t, protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode: code, UserData: protocol.UserData{Name: "Bo"},
	}))

	h.HandleDisconnect(guest)

	left := host.MessagesOfType(protocol.MsgOpponentLeft)
	require.Len(t, left, 1)
	p, err := codec.ParsePayload[protocol.OpponentLeftPayload](left[0])
	require.NoError(t, err)
	assert.Contains(t, p.Message, "Bo")
}

func TestHandle_UnknownTypeWithMockClient(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)
	c := new(testutil.MockClient)
	c.On("GetID").Return("ghost")
	c.On("GetName").Return("")
	c.On("SendMessage", mock.MatchedBy(func(msg *protocol.Message) bool {
		return msg.Type == protocol.MsgError
	})).Once()

	h.Handle(c, &protocol.Message{Type: "nope"})
	h.HandleDisconnect(c)

	c.AssertExpectations(t)
	c.AssertNotCalled(t, "SetRoom", mock.Anything)
	c.AssertNumberOfCalls(t, "SendMessage", 1)
}

func TestHandle_MaintenanceBlocksJoinIntoExistingRoom(t *testing.T) {
	t.Parallel()

	rm := room.NewRoomManager(room.Options{
		Builder:        room.NewTestBuilder(7),
		EmptyRoomGrace: 15 * time.Second,
		IdleTimeout:    time.Hour,
	})
	t.Cleanup(rm.Close)
	srv := testutil.NewStubServer(false)
	h := NewHandler(HandlerDeps{Server: srv, RoomManager: rm})

	ana := testutil.NewSimpleClient("conn-ana", "")
	code := createRoom(t, h, ana, "Ana")

	srv.SetMaintenance(true)
	bo := testutil.NewSimpleClient("conn-bo", "")
	h.Handle(bo, message(t, protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode: code,
		UserData: protocol.UserData{Name: "Bo"},
	}))

	last := bo.LastMessage()
	assert.Equal(t, protocol.MsgError, last.Type)
	assert.Equal(t, protocol.ErrCodeServerMaintenance, errorCode(t, last))
	assert.Empty(t, bo.GetRoom())
	assert.Len(t, rm.GetRoom(code).Players, 1)
}
