//go:build !production

package room

import (
	"math/rand/v2"

	"github.com/ines1102/SeriousGame-sub000/internal/game/card"
	"github.com/ines1102/SeriousGame-sub000/internal/game/deck"
	"github.com/ines1102/SeriousGame-sub000/internal/types"
)

// NewTestBuilder 固定种子的牌组生成器
func NewTestBuilder(seed uint64) *deck.Builder {
	catalog, err := card.DefaultCatalog()
	if err != nil {
		panic(err)
	}
	b, err := deck.NewBuilder(catalog, deck.DefaultOptions(), rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
	if err != nil {
		panic(err)
	}
	return b
}

// NewMockRoom 创建测试用的 Room，clients 按顺序入座
func NewMockRoom(code string, decks *deck.MatchDecks, clients ...types.ClientInterface) *Room {
	room := NewRoom(code, decks)
	for _, c := range clients {
		_ = room.addPlayer(&RoomPlayer{Client: c, ClientID: c.GetID(), Name: c.GetName()})
		c.SetRoom(code)
	}
	return room
}

// AddRoomForTest 添加房间用于测试
func (rm *RoomManager) AddRoomForTest(room *Room) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.rooms[room.Code] = room
	for _, p := range room.Players {
		rm.byConn[p.ID()] = room.Code
	}
}
