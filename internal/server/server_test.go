package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ines1102/SeriousGame-sub000/internal/config"
	"github.com/ines1102/SeriousGame-sub000/internal/game/room"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol/codec"
	"github.com/ines1102/SeriousGame-sub000/internal/server/storage"
	"github.com/ines1102/SeriousGame-sub000/internal/testutil"
)

func newTestServer(t *testing.T, modify ...func(*config.Config)) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	for _, m := range modify {
		m(cfg)
	}

	rm := room.NewRoomManager(room.Options{
		Builder:        room.NewTestBuilder(21),
		EmptyRoomGrace: cfg.Game.EmptyRoomGraceDuration(),
		IdleTimeout:    cfg.Game.RoomIdleTimeoutDuration(),
	})
	s := NewServer(cfg, Deps{RoomManager: rm, Publisher: &testutil.RecordingPublisher{}})
	ts := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		ts.Close()
		s.Shutdown()
	})
	return s, ts
}

type wsPeer struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

func dial(t *testing.T, ts *httptest.Server) *wsPeer {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	p := &wsPeer{t: t, conn: conn}
	msg := p.expect(protocol.MsgConnected)
	connected, err := codec.ParsePayload[protocol.ConnectedPayload](msg)
	require.NoError(t, err)
	require.NotEmpty(t, connected.ConnectionID)
	p.id = connected.ConnectionID
	return p
}

func (p *wsPeer) send(typ protocol.MessageType, payload any) {
	p.t.Helper()
	msg := codec.MustNewMessage(typ, payload)
	data, err := codec.Encode(msg)
	require.NoError(p.t, err)
	require.NoError(p.t, p.conn.WriteMessage(websocket.TextMessage, data))
}

// expect 读取消息直到遇到指定类型，中间的其他消息被丢弃
func (p *wsPeer) expect(typ protocol.MessageType) *protocol.Message {
	p.t.Helper()
	for {
		require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := p.conn.ReadMessage()
		require.NoError(p.t, err, "waiting for %s", typ)
		msg, err := codec.Decode(data)
		require.NoError(p.t, err)
		if msg.Type == typ {
			return msg
		}
	}
}

func createRoomAs(p *wsPeer, name string) string {
	p.send(protocol.MsgCreateRoom, protocol.CreateRoomPayload{UserData: protocol.UserData{Name: name}})
	created, err := codec.ParsePayload[protocol.RoomCreatedPayload](p.expect(protocol.MsgRoomCreated))
	require.NoError(p.t, err)
	return created.RoomCode
}

func TestWebSocket_GameFlow(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t)
	ana := dial(t, ts)
	bo := dial(t, ts)
	assert.Eventually(t, func() bool { return s.GetOnlineCount() == 2 }, time.Second, 10*time.Millisecond)

	code := createRoomAs(ana, "Ana")
	bo.send(protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: code, UserData: protocol.UserData{Name: "Bo"}})

	anaStart, err := codec.ParsePayload[protocol.GameStartPayload](ana.expect(protocol.MsgGameStart))
	require.NoError(t, err)
	boStart, err := codec.ParsePayload[protocol.GameStartPayload](bo.expect(protocol.MsgGameStart))
	require.NoError(t, err)

	assert.Equal(t, ana.id, anaStart.FirstTurn)
	assert.Equal(t, ana.id, boStart.FirstTurn)
	require.Len(t, anaStart.Hands.PlayerHand, 5)
	require.Len(t, boStart.Hands.PlayerHand, 5)
	for _, c := range anaStart.Hands.PlayerHand {
		assert.NotContains(t, boStart.Hands.PlayerHand, c, "hands are private")
	}

	// 出牌：双方都先收到 cardPlayed 再收到 turnUpdate
	ana.send(protocol.MsgPlayCard, protocol.PlayCardPayload{Slot: "board-0", Card: anaStart.Hands.PlayerHand[0]})
	for _, p := range []*wsPeer{ana, bo} {
		played, err := codec.ParsePayload[protocol.CardPlayedPayload](p.expect(protocol.MsgCardPlayed))
		require.NoError(t, err)
		assert.Equal(t, anaStart.Hands.PlayerHand[0].ID, played.Card.ID)
		turn, err := codec.ParsePayload[protocol.TurnUpdatePayload](p.expect(protocol.MsgTurnUpdate))
		require.NoError(t, err)
		assert.Equal(t, bo.id, turn.PlayerID)
	}

	// 断线：对手收到 opponentLeft
	require.NoError(t, bo.conn.Close())
	left, err := codec.ParsePayload[protocol.OpponentLeftPayload](ana.expect(protocol.MsgOpponentLeft))
	require.NoError(t, err)
	assert.Equal(t, "Bo a quitté la partie.", left.Message)
}

func TestWebSocket_JoinErrors(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t)
	ana := dial(t, ts)
	bo := dial(t, ts)
	cy := dial(t, ts)

	cy.send(protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: "0000", UserData: protocol.UserData{Name: "Cy"}})
	notFound, err := codec.ParsePayload[protocol.ErrorPayload](cy.expect(protocol.MsgRoomError))
	require.NoError(t, err)
	assert.Equal(t, "La room n'existe pas.", notFound.Message)

	code := createRoomAs(ana, "Ana")
	bo.send(protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: code, UserData: protocol.UserData{Name: "Bo"}})
	bo.expect(protocol.MsgGameStart)

	cy.send(protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: code, UserData: protocol.UserData{Name: "Cy"}})
	full, err := codec.ParsePayload[protocol.ErrorPayload](cy.expect(protocol.MsgRoomError))
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeRoomFull, full.Code)
	assert.Equal(t, "La room est pleine.", full.Message)
}

func TestWebSocket_InvalidFrame(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t)
	p := dial(t, ts)

	require.NoError(t, p.conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	e, err := codec.ParsePayload[protocol.ErrorPayload](p.expect(protocol.MsgError))
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, e.Code)

	p.send(protocol.MsgPing, protocol.PingPayload{Timestamp: 7})
	pong, err := codec.ParsePayload[protocol.PongPayload](p.expect(protocol.MsgPong))
	require.NoError(t, err)
	assert.Equal(t, int64(7), pong.ClientTimestamp)
}

func TestWebSocket_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*config.Config)
		setup  func(*Server)
		header http.Header
		status int
	}{
		{
			name:   "maintenance",
			setup:  func(s *Server) { s.EnterMaintenanceMode() },
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "blacklisted",
			modify: func(c *config.Config) { c.Security.Blacklist = []string{"127.0.0.1"} },
			status: http.StatusForbidden,
		},
		{
			name:   "not whitelisted",
			modify: func(c *config.Config) { c.Security.Whitelist = []string{"10.0.0.1"} },
			status: http.StatusForbidden,
		},
		{
			name:   "origin",
			modify: func(c *config.Config) { c.Security.AllowedOrigins = []string{"https://remedy.example"} },
			header: http.Header{"Origin": []string{"https://evil.example"}},
			status: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var mods []func(*config.Config)
			if tt.modify != nil {
				mods = append(mods, tt.modify)
			}
			s, ts := newTestServer(t, mods...)
			if tt.setup != nil {
				tt.setup(s)
			}

			url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
			_, resp, err := websocket.DefaultDialer.Dial(url, tt.header)
			require.Error(t, err)
			require.NotNil(t, resp)
			_ = resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Zero(t, s.GetOnlineCount())
		})
	}
}

func TestHTTP_HealthAndStats(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t)
	ana := dial(t, ts)
	createRoomAs(ana, "Ana")

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var stats StatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Online)
	assert.Equal(t, 1, stats.Rooms)
	assert.Zero(t, stats.Playing)
	assert.Zero(t, stats.Banned)
	assert.Nil(t, stats.Counters)
}

func TestHTTP_StatsReportsBannedIPs(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, func(c *config.Config) { c.Security.RateLimit.MaxPerSecond = 1 })
	dial(t, ts)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	assert.Equal(t, 1, s.Stats(context.Background()).Banned)
}

func TestHTTP_RoomInfo(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	store := storage.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	cfg := config.Default()
	rm := room.NewRoomManager(room.Options{
		Builder:        room.NewTestBuilder(21),
		Store:          store,
		EmptyRoomGrace: cfg.Game.EmptyRoomGraceDuration(),
		IdleTimeout:    cfg.Game.RoomIdleTimeoutDuration(),
	})
	s := NewServer(cfg, Deps{RoomManager: rm, Store: store})
	ts := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		ts.Close()
		s.Shutdown()
	})

	ana := dial(t, ts)
	bo := dial(t, ts)
	code := createRoomAs(ana, "Ana")
	bo.send(protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: code, UserData: protocol.UserData{Name: "Bo"}})
	bo.expect(protocol.MsgGameStart)

	var info RoomInfoResponse
	assert.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/rooms/" + code)
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		return json.NewDecoder(resp.Body).Decode(&info) == nil && info.Status == "playing"
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, code, info.Code)
	assert.Equal(t, ana.id, info.CurrentTurn)
	require.Len(t, info.Players, 2)
	assert.Equal(t, "Ana", info.Players[0].Name)
	assert.Equal(t, "Bo", info.Players[1].Name)
	assert.Zero(t, info.PlayedCards)

	resp, err := http.Get(ts.URL + "/rooms/0000")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTP_RoomInfoWithoutRedis(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/rooms/4821")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestHTTP_RoomQR(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t)
	code := createRoomAs(dial(t, ts), "Ana")

	resp, err := http.Get(ts.URL + "/rooms/" + code + "/qr.png")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp, err = http.Get(ts.URL + "/rooms/0000/qr.png")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJoinURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		publicURL string
		host      string
		headers   map[string]string
		want      string
	}{
		{"request host", "", "game.local:3000", nil, "http://game.local:3000/?room=4821"},
		{"forwarded proto", "", "remedy.example", map[string]string{"X-Forwarded-Proto": "https"}, "https://remedy.example/?room=4821"},
		{"public url", "https://play.example/duel/", "ignored", nil, "https://play.example/duel/?room=4821"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			cfg.Server.PublicURL = tt.publicURL
			s := &Server{config: cfg}

			req := httptest.NewRequest(http.MethodGet, "/rooms/4821/qr.png", http.NoBody)
			req.Host = tt.host
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, s.joinURL(req, "4821"))
		})
	}
}

func TestShutdown_ClosesConnections(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t)
	p := dial(t, ts)

	s.Shutdown()

	e, err := codec.ParsePayload[protocol.ErrorPayload](p.expect(protocol.MsgError))
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeServerMaintenance, e.Code)

	require.NoError(t, p.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = p.conn.ReadMessage()
	assert.Error(t, err, "connection is closed after shutdown")
	assert.Eventually(t, func() bool { return s.GetOnlineCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestEnterMaintenanceMode_NotifiesLobbyOnly(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t)
	ana := dial(t, ts)
	cy := dial(t, ts)
	createRoomAs(ana, "Ana")

	s.EnterMaintenanceMode()

	notice, err := codec.ParsePayload[protocol.ErrorPayload](cy.expect(protocol.MsgError))
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeServerMaintenance, notice.Code)

	// 房间内的玩家不收到维护通知
	for {
		require.NoError(t, ana.conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
		_, data, err := ana.conn.ReadMessage()
		if err != nil {
			break
		}
		msg, err := codec.Decode(data)
		require.NoError(t, err)
		assert.NotEqual(t, protocol.MsgError, msg.Type)
	}
}
