// Package events publishes room lifecycle events for external observers.
package events

import (
	"time"
)

// 事件类型，同时作为主题后缀
const (
	RoomCreated = "room.created"
	RoomJoined  = "room.joined"
	GameStarted = "game.started"
	CardPlayed  = "card.played"
	CardDrawn   = "card.drawn"
	PlayerLeft  = "player.left"
	RoomClosed  = "room.closed"
)

// Event 房间生命周期事件（不含手牌内容）
type Event struct {
	Type     string         `json:"type"`
	RoomCode string         `json:"roomCode"`
	PlayerID string         `json:"playerId,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	At       time.Time      `json:"at"`
}

// New 创建事件
func New(typ, roomCode, playerID string) Event {
	return Event{Type: typ, RoomCode: roomCode, PlayerID: playerID, At: time.Now()}
}

// With 附加字段
func (e Event) With(key string, value any) Event {
	data := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	data[key] = value
	e.Data = data
	return e
}

// Publisher 事件发布者，发布失败只记录日志，不影响游戏流程
type Publisher interface {
	Publish(e Event)
	Close()
}

// Noop 未配置消息总线时使用
type Noop struct{}

func (Noop) Publish(Event) {}
func (Noop) Close()        {}
