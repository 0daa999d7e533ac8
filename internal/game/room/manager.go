package room

import (
	"context"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/ines1102/SeriousGame-sub000/internal/apperrors"
	"github.com/ines1102/SeriousGame-sub000/internal/events"
	"github.com/ines1102/SeriousGame-sub000/internal/game/deck"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol/codec"
	"github.com/ines1102/SeriousGame-sub000/internal/server/storage"
	"github.com/ines1102/SeriousGame-sub000/internal/types"
)

// Store 房间镜像存储
type Store interface {
	SaveRoom(ctx context.Context, roomCode string, data *storage.RoomData) error
	DeleteRoom(ctx context.Context, roomCode string) error
	ReserveCode(ctx context.Context, code string, ttl time.Duration) (bool, error)
	ReleaseCode(ctx context.Context, code string) error
	IncrStat(ctx context.Context, field string) error
}

// Options 房间管理器参数
type Options struct {
	Builder        *deck.Builder    // 必填
	Store          Store            // 为 nil 时不镜像
	Publisher      events.Publisher // 为 nil 时不发布事件
	EmptyRoomGrace time.Duration    // 房间变空后多久删除
	IdleTimeout    time.Duration    // 兜底清理：空房间存活上限
	SweepInterval  time.Duration    // 兜底清理间隔，0 表示不启动
	CodeTTL        time.Duration    // 房间号预留时长
	Rand           *rand.Rand       // 房间号随机源，nil 时使用全局源
}

// RoomManager 房间管理器
type RoomManager struct {
	builder   *deck.Builder
	store     Store
	publisher events.Publisher
	grace     time.Duration
	idle      time.Duration
	codeTTL   time.Duration
	codeRand  *rand.Rand // 由 mu 保护

	rooms  map[string]*Room  // 房间号 -> 房间
	byConn map[string]string // 连接 ID -> 房间号
	mu     sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRoomManager 创建房间管理器
func NewRoomManager(opts Options) *RoomManager {
	rm := &RoomManager{
		builder:   opts.Builder,
		store:     opts.Store,
		publisher: opts.Publisher,
		grace:     opts.EmptyRoomGrace,
		idle:      opts.IdleTimeout,
		codeTTL:   opts.CodeTTL,
		codeRand:  opts.Rand,
		rooms:     make(map[string]*Room),
		byConn:    make(map[string]string),
		stop:      make(chan struct{}),
	}
	if rm.publisher == nil {
		rm.publisher = events.Noop{}
	}
	if rm.codeTTL <= 0 {
		rm.codeTTL = 2 * time.Hour
	}

	// 启动房间清理协程
	if opts.SweepInterval > 0 {
		go rm.cleanupLoop(opts.SweepInterval)
	}

	return rm
}

// validateUser 校验并规整玩家信息
func validateUser(client types.ClientInterface, user protocol.UserData) (protocol.UserData, error) {
	user.Name = strings.TrimSpace(user.Name)
	if user.Name == "" {
		return user, apperrors.ErrInvalidName
	}
	// 没有自报 ID 时使用连接 ID，保证两名玩家的 ClientID 不同
	if strings.TrimSpace(user.ClientID) == "" {
		user.ClientID = client.GetID()
	}
	return user, nil
}

func newRoomPlayer(client types.ClientInterface, user protocol.UserData) *RoomPlayer {
	return &RoomPlayer{
		Client:   client,
		ClientID: user.ClientID,
		Name:     user.Name,
		Avatar:   user.Avatar,
	}
}

// CreateRoom 创建房间，创建者为座位 0
func (rm *RoomManager) CreateRoom(client types.ClientInterface, user protocol.UserData) (*Room, error) {
	user, err := validateUser(client, user)
	if err != nil {
		return nil, err
	}

	// 如果已在房间中，先离开
	rm.LeaveRoom(client)

	decks, err := rm.builder.BuildMatchDecks()
	if err != nil {
		return nil, err
	}

	rm.mu.Lock()
	code, err := rm.generateRoomCode()
	if err != nil {
		rm.mu.Unlock()
		return nil, err
	}

	room := NewRoom(code, decks)
	player := newRoomPlayer(client, user)
	_ = room.addPlayer(player) // 新房间不会失败
	rm.rooms[code] = room
	rm.byConn[client.GetID()] = code
	client.SetName(user.Name)
	client.SetRoom(code)
	rm.mu.Unlock()

	log.Printf("🏠 房间 %s 已创建，玩家 %s", code, user.Name)

	rm.saveRoom(room)
	rm.incrStat(storage.StatRoomsCreated)
	rm.publisher.Publish(events.New(events.RoomCreated, code, client.GetID()))

	return room, nil
}

// JoinRoom 加入房间
// 第二名玩家加入时每人收到只含自己手牌的 gameStart，随后广播 updatePlayers
func (rm *RoomManager) JoinRoom(client types.ClientInterface, code string, user protocol.UserData) (*Room, error) {
	user, err := validateUser(client, user)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)

	// 如果已在房间中，先离开
	rm.LeaveRoom(client)

	rm.mu.Lock()
	room, exists := rm.rooms[code]
	if !exists {
		rm.mu.Unlock()
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	// 已入座玩家用过的 ClientID 换成连接 ID，避免按 ClientID 查手牌时串座
	for _, p := range room.Players {
		if p.ClientID == user.ClientID {
			user.ClientID = client.GetID()
			break
		}
	}
	player := newRoomPlayer(client, user)
	if err := room.addPlayer(player); err != nil {
		room.mu.Unlock()
		rm.mu.Unlock()
		return nil, err
	}
	rm.byConn[client.GetID()] = code
	rm.mu.Unlock()

	client.SetName(user.Name)
	client.SetRoom(code)

	started := room.State == RoomStatePlaying
	if started {
		for _, p := range room.Players {
			p.Client.SendMessage(codec.MustNewMessage(protocol.MsgGameStart, room.gameStartFor(p)))
		}
	} else {
		client.SendMessage(codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
			RoomCode: code,
			Players:  room.playersInfo(),
		}))
	}
	room.Broadcast(codec.MustNewMessage(protocol.MsgUpdatePlayers, protocol.UpdatePlayersPayload{
		Players: room.playersInfo(),
	}))
	room.mu.Unlock()

	log.Printf("👤 玩家 %s 加入房间 %s (座位 %d)", user.Name, code, player.Slot)

	rm.saveRoom(room)
	rm.publisher.Publish(events.New(events.RoomJoined, code, client.GetID()).With("slot", player.Slot))
	if started {
		log.Printf("🎮 房间 %s 游戏开始", code)
		rm.incrStat(storage.StatGamesStarted)
		rm.publisher.Publish(events.New(events.GameStarted, code, room.GetCurrentTurn()))
	}

	return room, nil
}

// LeaveRoom 离开房间（主动离开和断线共用）
// 剩余玩家收到 opponentLeft 和 updatePlayers；房间变空后等待宽限期再删除
func (rm *RoomManager) LeaveRoom(client types.ClientInterface) {
	id := client.GetID()

	rm.mu.Lock()
	code, ok := rm.byConn[id]
	if !ok {
		rm.mu.Unlock()
		return
	}
	delete(rm.byConn, id)
	room, exists := rm.rooms[code]
	rm.mu.Unlock()

	client.SetRoom("")
	if !exists {
		return
	}

	room.mu.Lock()
	player, inRoom := room.getPlayer(id)
	if !inRoom {
		room.mu.Unlock()
		return
	}
	remaining := room.removePlayer(id)
	if remaining > 0 {
		room.Broadcast(codec.MustNewMessage(protocol.MsgOpponentLeft, protocol.OpponentLeftPayload{
			Message: player.Name + " a quitté la partie.",
		}))
		room.Broadcast(codec.MustNewMessage(protocol.MsgUpdatePlayers, protocol.UpdatePlayersPayload{
			Players: room.playersInfo(),
		}))
	} else {
		rm.scheduleEmptyRoomRemoval(room)
	}
	room.mu.Unlock()

	log.Printf("👋 玩家 %s 离开房间 %s (座位 %d)，剩余 %d 人", player.Name, code, player.Slot, remaining)

	rm.saveRoom(room)
	rm.publisher.Publish(events.New(events.PlayerLeft, code, id).With("remaining", remaining))
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[code]
}

// FindByConnection 通过连接 ID 获取房间
func (rm *RoomManager) FindByConnection(connectionID string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	code, ok := rm.byConn[connectionID]
	if !ok {
		return nil
	}
	return rm.rooms[code]
}

// RoomCount 房间总数
func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// GetActiveGamesCount 获取进行中的游戏数量（双方都在的房间）
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	count := 0
	for _, room := range rm.rooms {
		room.mu.RLock()
		if room.State == RoomStatePlaying && len(room.Players) == MaxPlayers {
			count++
		}
		room.mu.RUnlock()
	}
	return count
}
