package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol/codec"
)

var upgrader = websocket.Upgrader{}

// fakeGateway 模拟网关：先发 connected，ping 回 pong，其余消息原样回显
func fakeGateway(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer c.Close()

	hello, _ := codec.Encode(codec.MustNewMessage(protocol.MsgConnected,
		protocol.ConnectedPayload{ConnectionID: "conn-42"}))
	if err := c.WriteMessage(websocket.TextMessage, hello); err != nil {
		return
	}

	for {
		mt, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		msg, err := codec.Decode(data)
		if err != nil {
			return
		}
		if msg.Type == protocol.MsgPing {
			ping, _ := codec.ParsePayload[protocol.PingPayload](msg)
			data, _ = codec.Encode(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
				ClientTimestamp: ping.Timestamp,
				ServerTimestamp: time.Now().UnixMilli(),
			}))
		}
		_ = c.WriteMessage(mt, data)
	}
}

func dialFake(t *testing.T) *Client {
	t.Helper()
	s := httptest.NewServer(http.HandlerFunc(fakeGateway))
	t.Cleanup(s.Close)

	client := NewClient("ws" + strings.TrimPrefix(s.URL, "http"))
	require.NoError(t, client.Connect())
	t.Cleanup(client.Close)
	return client
}

func TestClient_ConnectedSetsConnectionID(t *testing.T) {
	t.Parallel()
	client := dialFake(t)

	msg, err := client.ReceiveWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgConnected, msg.Type)
	assert.Equal(t, "conn-42", client.ConnectionID())
}

func TestClient_SendAndReceive(t *testing.T) {
	t.Parallel()
	client := dialFake(t)
	_, err := client.ReceiveWithTimeout(time.Second)
	require.NoError(t, err)

	require.NoError(t, client.Send(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode: "1234",
		UserData: protocol.UserData{Name: "Ana"},
	}))

	msg, err := client.ReceiveWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgJoinRoom, msg.Type)
	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "1234", payload.RoomCode)
	assert.Equal(t, "Ana", payload.Name)
}

func TestClient_PingUpdatesLatency(t *testing.T) {
	t.Parallel()
	var updates atomic.Int32

	s := httptest.NewServer(http.HandlerFunc(fakeGateway))
	t.Cleanup(s.Close)
	client := NewClient("ws" + strings.TrimPrefix(s.URL, "http"))
	client.OnLatencyUpdate = func(int64) { updates.Add(1) }
	require.NoError(t, client.Connect())
	t.Cleanup(client.Close)

	require.NoError(t, client.Ping())

	assert.Eventually(t, func() bool { return updates.Load() == 1 }, time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, client.Latency(), int64(0))
}

func TestClient_CloseStopsSendAndReceive(t *testing.T) {
	t.Parallel()
	closed := make(chan struct{})

	s := httptest.NewServer(http.HandlerFunc(fakeGateway))
	t.Cleanup(s.Close)
	client := NewClient("ws" + strings.TrimPrefix(s.URL, "http"))
	client.OnClose = func() { close(closed) }
	require.NoError(t, client.Connect())

	client.Close()
	client.Close()

	assert.True(t, client.IsClosed())
	assert.ErrorIs(t, client.Ping(), ErrClosed)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("OnClose not called")
	}
}

func TestClient_ConnectFails(t *testing.T) {
	t.Parallel()
	client := NewClient("ws://127.0.0.1:1/ws")
	assert.Error(t, client.Connect())
}
