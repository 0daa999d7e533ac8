package room

import (
	"log"

	"github.com/ines1102/SeriousGame-sub000/internal/apperrors"
	"github.com/ines1102/SeriousGame-sub000/internal/events"
	"github.com/ines1102/SeriousGame-sub000/internal/game/card"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol/codec"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol/convert"
	"github.com/ines1102/SeriousGame-sub000/internal/server/storage"
	"github.com/ines1102/SeriousGame-sub000/internal/types"
)

// PlayCard 出牌：记录后广播 cardPlayed，再广播 turnUpdate
func (rm *RoomManager) PlayCard(client types.ClientInterface, slot string, c card.Card) error {
	room := rm.FindByConnection(client.GetID())
	if room == nil {
		return apperrors.ErrNotInRoom
	}

	room.mu.Lock()
	next, err := room.recordPlay(client.GetID(), slot, c)
	if err != nil {
		room.mu.Unlock()
		return err
	}
	played := room.PlayedCards[slot]
	turn := room.TurnNumber
	room.Broadcast(codec.MustNewMessage(protocol.MsgCardPlayed, protocol.CardPlayedPayload{
		PlayerID:   client.GetID(),
		Slot:       slot,
		Card:       convert.CardToInfo(played),
		TurnNumber: turn,
	}))
	room.Broadcast(codec.MustNewMessage(protocol.MsgTurnUpdate, protocol.TurnUpdatePayload{
		PlayerID:   next,
		TurnNumber: turn,
	}))
	room.mu.Unlock()

	log.Printf("🃏 房间 %s 玩家 %s 打出 %s 到 %s (第 %d 手)", room.Code, client.GetName(), played, slot, turn)

	rm.saveRoom(room)
	rm.incrStat(storage.StatCardsPlayed)
	rm.publisher.Publish(events.New(events.CardPlayed, room.Code, client.GetID()).
		With("slot", slot).
		With("image", played.Image).
		With("turnNumber", turn))
	return nil
}

// DrawCard 摸牌：摸到的牌只发给本人，对手只收到数量
func (rm *RoomManager) DrawCard(client types.ClientInterface) error {
	room := rm.FindByConnection(client.GetID())
	if room == nil {
		return apperrors.ErrNotInRoom
	}

	room.mu.Lock()
	drawn, remaining, err := room.drawCard(client.GetID())
	if err != nil {
		room.mu.Unlock()
		return err
	}
	player, _ := room.getPlayer(client.GetID())
	handSize := len(room.deckForSlot(player.Slot).Hand)

	client.SendMessage(codec.MustNewMessage(protocol.MsgCardDrawn, protocol.CardDrawnPayload{
		Card:      convert.CardToInfo(drawn),
		Remaining: remaining,
	}))
	room.BroadcastExcept(client.GetID(), codec.MustNewMessage(protocol.MsgOpponentDrew, protocol.OpponentDrewPayload{
		PlayerID:  client.GetID(),
		Remaining: remaining,
		HandSize:  handSize,
	}))
	room.mu.Unlock()

	rm.saveRoom(room)
	rm.incrStat(storage.StatCardsDrawn)
	rm.publisher.Publish(events.New(events.CardDrawn, room.Code, client.GetID()).With("remaining", remaining))
	return nil
}
