package room

import (
	"sync"
	"time"

	"github.com/ines1102/SeriousGame-sub000/internal/apperrors"
	"github.com/ines1102/SeriousGame-sub000/internal/game/card"
	"github.com/ines1102/SeriousGame-sub000/internal/game/deck"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol/convert"
	"github.com/ines1102/SeriousGame-sub000/internal/types"
)

// MaxPlayers 每个房间的玩家数
const MaxPlayers = 2

// RoomPlayer 房间中的玩家
type RoomPlayer struct {
	Client   types.ClientInterface
	ClientID string // 客户端自报的会话 ID，用于手牌座位映射
	Name     string
	Avatar   string
	Slot     int // 座位号 0-1，按加入顺序
}

// ID 连接 ID
func (p *RoomPlayer) ID() string {
	return p.Client.GetID()
}

// Info 对外展示的玩家信息（不含手牌）
func (p *RoomPlayer) Info() protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:     p.ID(),
		Name:   p.Name,
		Avatar: p.Avatar,
		Slot:   p.Slot,
	}
}

// Room 游戏房间
type Room struct {
	Code        string               // 房间号
	State       RoomState            // 房间状态
	Players     []*RoomPlayer        // 玩家列表（按加入顺序）
	Decks       *deck.MatchDecks     // 创建时发好的两副牌
	CurrentTurn string               // 当前出牌玩家的连接 ID
	TurnNumber  int                  // 已出牌次数
	PlayedCards map[string]card.Card // 棋盘位置 -> 最后打出的牌
	CreatedAt   time.Time            // 创建时间
	EmptySince  time.Time            // 最近一次变空的时间，有玩家时为零值

	graceTimer *time.Timer
	mu         sync.RWMutex
	saveMu     sync.Mutex // 串行化快照写入，保证最后写入的是最新状态
}

// NewRoom 创建房间
func NewRoom(code string, decks *deck.MatchDecks) *Room {
	now := time.Now()
	return &Room{
		Code:        code,
		State:       RoomStateWaiting,
		Players:     make([]*RoomPlayer, 0, MaxPlayers),
		Decks:       decks,
		PlayedCards: make(map[string]card.Card),
		CreatedAt:   now,
		EmptySince:  now,
	}
}

// AddPlayer 加入玩家，第二名玩家加入时开始游戏
func (r *Room) AddPlayer(p *RoomPlayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addPlayer(p)
}

func (r *Room) addPlayer(p *RoomPlayer) error {
	if len(r.Players) >= MaxPlayers {
		return apperrors.ErrRoomFull
	}
	if r.State != RoomStateWaiting {
		return apperrors.ErrGameStarted
	}

	p.Slot = len(r.Players)
	r.Players = append(r.Players, p)
	r.EmptySince = time.Time{}
	r.stopGraceTimer()

	if len(r.Players) == MaxPlayers {
		r.State = RoomStatePlaying
		r.CurrentTurn = r.Players[0].ID()
		r.TurnNumber = 0
	}
	return nil
}

// RemovePlayer 移除玩家，返回剩余人数；不改变状态和当前回合
func (r *Room) RemovePlayer(connectionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removePlayer(connectionID)
}

func (r *Room) removePlayer(connectionID string) int {
	kept := r.Players[:0]
	for _, p := range r.Players {
		if p.ID() != connectionID {
			kept = append(kept, p)
		}
	}
	// 清掉尾部引用
	for i := len(kept); i < len(r.Players); i++ {
		r.Players[i] = nil
	}
	r.Players = kept

	if len(r.Players) == 0 && r.EmptySince.IsZero() {
		r.EmptySince = time.Now()
	}
	return len(r.Players)
}

// GetPlayer 按连接 ID 查找玩家
func (r *Room) GetPlayer(connectionID string) (*RoomPlayer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getPlayer(connectionID)
}

func (r *Room) getPlayer(connectionID string) (*RoomPlayer, bool) {
	for _, p := range r.Players {
		if p.ID() == connectionID {
			return p, true
		}
	}
	return nil, false
}

// GetOpponent 获取对手
func (r *Room) GetOpponent(connectionID string) (*RoomPlayer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getOpponent(connectionID)
}

func (r *Room) getOpponent(connectionID string) (*RoomPlayer, bool) {
	if _, ok := r.getPlayer(connectionID); !ok {
		return nil, false
	}
	for _, p := range r.Players {
		if p.ID() != connectionID {
			return p, true
		}
	}
	return nil, false
}

// GetPlayerHand 返回 clientID 对应座位的手牌副本，不足两人时返回 nil
// 与先加入玩家的 ClientID 相同即为座位 0，否则为座位 1
func (r *Room) GetPlayerHand(clientID string) []card.Card {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getPlayerHand(clientID)
}

func (r *Room) getPlayerHand(clientID string) []card.Card {
	if len(r.Players) < MaxPlayers || r.Decks == nil {
		return nil
	}
	if r.Players[0].ClientID == clientID {
		return r.handForSlot(0)
	}
	return r.handForSlot(1)
}

// handForSlot 座位手牌的副本
func (r *Room) handForSlot(slot int) []card.Card {
	d := r.deckForSlot(slot)
	hand := make([]card.Card, len(d.Hand))
	copy(hand, d.Hand)
	return hand
}

// deckForSlot 座位 0 是玩家 1 的牌，座位 1 是玩家 2 的牌
func (r *Room) deckForSlot(slot int) *deck.PlayerDeck {
	if slot == 0 {
		return &r.Decks.Player1
	}
	return &r.Decks.Player2
}

// RecordPlay 记录出牌并轮转回合，返回下一位玩家的连接 ID
// 只校验回合，不校验牌是否在手牌中
func (r *Room) RecordPlay(connectionID, slot string, c card.Card) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recordPlay(connectionID, slot, c)
}

func (r *Room) recordPlay(connectionID, slot string, c card.Card) (string, error) {
	player, ok := r.getPlayer(connectionID)
	if !ok {
		return "", apperrors.ErrNotInRoom
	}
	if r.State != RoomStatePlaying || len(r.Players) < MaxPlayers {
		return "", apperrors.ErrGameNotStart
	}
	if r.CurrentTurn != connectionID {
		return "", apperrors.ErrNotYourTurn
	}

	if r.Decks != nil {
		if held, ok := r.deckForSlot(player.Slot).TakeFromHand(c.ID); ok {
			c = held
		}
	}

	r.PlayedCards[slot] = c
	r.TurnNumber++
	opponent, _ := r.getOpponent(connectionID)
	r.CurrentTurn = opponent.ID()
	return r.CurrentTurn, nil
}

// DrawCard 当前回合玩家从自己的牌堆摸一张牌，返回牌和牌堆剩余数
func (r *Room) DrawCard(connectionID string) (card.Card, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawCard(connectionID)
}

func (r *Room) drawCard(connectionID string) (card.Card, int, error) {
	player, ok := r.getPlayer(connectionID)
	if !ok {
		return card.Card{}, 0, apperrors.ErrNotInRoom
	}
	if r.State != RoomStatePlaying || len(r.Players) < MaxPlayers || r.Decks == nil {
		return card.Card{}, 0, apperrors.ErrGameNotStart
	}
	if r.CurrentTurn != connectionID {
		return card.Card{}, 0, apperrors.ErrNotYourTurn
	}

	d := r.deckForSlot(player.Slot)
	c, ok := d.Draw()
	if !ok {
		return card.Card{}, 0, apperrors.ErrDrawPileEmpty
	}
	return c, len(d.DrawPile), nil
}

// GetState 获取房间状态
func (r *Room) GetState() RoomState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.State
}

// GetCurrentTurn 获取当前回合玩家
func (r *Room) GetCurrentTurn() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.CurrentTurn
}

// GetTurnNumber 获取已出牌次数
func (r *Room) GetTurnNumber() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.TurnNumber
}

// PlayerCount 当前人数
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Players)
}

// IsFull 是否已满
func (r *Room) IsFull() bool {
	return r.PlayerCount() >= MaxPlayers
}

// GetAllPlayersInfo 所有玩家信息（按座位）
func (r *Room) GetAllPlayersInfo() []protocol.PlayerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.playersInfo()
}

func (r *Room) playersInfo() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, len(r.Players))
	for i, p := range r.Players {
		infos[i] = p.Info()
	}
	return infos
}

// gameStartFor 给指定玩家的开局消息，只包含其本人的手牌
func (r *Room) gameStartFor(p *RoomPlayer) protocol.GameStartPayload {
	return protocol.GameStartPayload{
		RoomCode:  r.Code,
		Players:   r.playersInfo(),
		Hands:     protocol.HandsPayload{PlayerHand: convert.CardsToInfos(r.handForSlot(p.Slot))},
		DrawPile:  len(r.deckForSlot(p.Slot).DrawPile),
		FirstTurn: r.CurrentTurn,
	}
}

// Broadcast 广播消息给房间内所有玩家（调用方持有锁）
func (r *Room) Broadcast(msg *protocol.Message) {
	for _, p := range r.Players {
		p.Client.SendMessage(msg)
	}
}

// BroadcastExcept 广播消息给除指定玩家外的所有人（调用方持有锁）
func (r *Room) BroadcastExcept(excludeID string, msg *protocol.Message) {
	for _, p := range r.Players {
		if p.ID() != excludeID {
			p.Client.SendMessage(msg)
		}
	}
}

// stopGraceTimer 取消空房间删除计时（调用方持有锁）
func (r *Room) stopGraceTimer() {
	if r.graceTimer != nil {
		r.graceTimer.Stop()
		r.graceTimer = nil
	}
}
