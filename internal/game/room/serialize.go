package room

import (
	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol/convert"
	"github.com/ines1102/SeriousGame-sub000/internal/server/storage"
)

// ToRoomData 将 Room 转换为可序列化的 RoomData
func (r *Room) ToRoomData() *storage.RoomData {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data := &storage.RoomData{
		Code:        r.Code,
		Status:      r.State.String(),
		CurrentTurn: r.CurrentTurn,
		TurnNumber:  r.TurnNumber,
		CreatedAt:   r.CreatedAt.Unix(),
		Players:     r.playersInfo(),
		PlayedCards: make(map[string]protocol.CardInfo, len(r.PlayedCards)),
	}

	if r.Decks != nil {
		for slot := range MaxPlayers {
			d := r.deckForSlot(slot)
			data.Decks = append(data.Decks, storage.DeckData{
				Hand:     convert.CardsToInfos(d.Hand),
				DrawPile: convert.CardsToInfos(d.DrawPile),
			})
		}
	}

	for slot, c := range r.PlayedCards {
		data.PlayedCards[slot] = convert.CardToInfo(c)
	}

	return data
}
