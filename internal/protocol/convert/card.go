package convert

import (
	"github.com/ines1102/SeriousGame-sub000/internal/game/card"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
)

// CardToInfo 将 card.Card 转换为 protocol.CardInfo
func CardToInfo(c card.Card) protocol.CardInfo {
	return protocol.CardInfo{
		ID:     c.ID,
		Image:  c.Image,
		Rarity: c.Rarity,
		Kind:   string(c.Kind),
	}
}

// CardsToInfos 将 []card.Card 转换为 []protocol.CardInfo
func CardsToInfos(cards []card.Card) []protocol.CardInfo {
	infos := make([]protocol.CardInfo, len(cards))
	for i, c := range cards {
		infos[i] = CardToInfo(c)
	}
	return infos
}

// InfoToCard 将 protocol.CardInfo 转换为 card.Card
// 客户端上报的种类不做校验，原样保留
func InfoToCard(info protocol.CardInfo) card.Card {
	return card.Card{
		ID:     info.ID,
		Image:  info.Image,
		Rarity: info.Rarity,
		Kind:   card.Kind(info.Kind),
	}
}
