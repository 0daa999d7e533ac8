package storage

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol/convert"
)

// RoomData 房间快照（用于 Redis 镜像，进程不会读回恢复）
type RoomData struct {
	Code        string
	Status      string
	CurrentTurn string
	TurnNumber  int
	CreatedAt   int64
	Players     []protocol.PlayerInfo
	Decks       []DeckData                   // 下标为座位号
	PlayedCards map[string]protocol.CardInfo // 棋盘位置 -> 牌
}

// DeckData 一名玩家的牌
type DeckData struct {
	Hand     []protocol.CardInfo
	DrawPile []protocol.CardInfo
}

// ToProto 转换为 protobuf Struct
func (d *RoomData) ToProto() *structpb.Struct {
	decks := make([]*structpb.Value, len(d.Decks))
	for i, deck := range d.Decks {
		decks[i] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"hand":     structpb.NewListValue(convert.CardsToProto(deck.Hand)),
			"drawPile": structpb.NewListValue(convert.CardsToProto(deck.DrawPile)),
		}})
	}

	played := make(map[string]*structpb.Value, len(d.PlayedCards))
	for slot, c := range d.PlayedCards {
		played[slot] = convert.CardToProto(c)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"code":        structpb.NewStringValue(d.Code),
		"status":      structpb.NewStringValue(d.Status),
		"currentTurn": structpb.NewStringValue(d.CurrentTurn),
		"turnNumber":  structpb.NewNumberValue(float64(d.TurnNumber)),
		"createdAt":   structpb.NewNumberValue(float64(d.CreatedAt)), // 秒级时间戳在 float64 精度内
		"players":     structpb.NewListValue(convert.PlayerInfosToProto(d.Players)),
		"decks":       structpb.NewListValue(&structpb.ListValue{Values: decks}),
		"playedCards": structpb.NewStructValue(&structpb.Struct{Fields: played}),
	}}
}

// RoomDataFromProto 从 protobuf Struct 还原
func RoomDataFromProto(s *structpb.Struct) (*RoomData, error) {
	f := s.GetFields()

	players, err := convert.ProtoToPlayerInfos(f["players"].GetListValue())
	if err != nil {
		return nil, fmt.Errorf("players: %w", err)
	}

	data := &RoomData{
		Code:        f["code"].GetStringValue(),
		Status:      f["status"].GetStringValue(),
		CurrentTurn: f["currentTurn"].GetStringValue(),
		TurnNumber:  int(f["turnNumber"].GetNumberValue()),
		CreatedAt:   int64(f["createdAt"].GetNumberValue()),
		Players:     players,
		PlayedCards: make(map[string]protocol.CardInfo),
	}

	for i, v := range f["decks"].GetListValue().GetValues() {
		df := v.GetStructValue().GetFields()
		hand, err := convert.ProtoToCards(df["hand"].GetListValue())
		if err != nil {
			return nil, fmt.Errorf("deck %d hand: %w", i, err)
		}
		pile, err := convert.ProtoToCards(df["drawPile"].GetListValue())
		if err != nil {
			return nil, fmt.Errorf("deck %d draw pile: %w", i, err)
		}
		data.Decks = append(data.Decks, DeckData{Hand: hand, DrawPile: pile})
	}

	for slot, v := range f["playedCards"].GetStructValue().GetFields() {
		c, err := convert.ProtoToCard(v)
		if err != nil {
			return nil, fmt.Errorf("played %s: %w", slot, err)
		}
		data.PlayedCards[slot] = c
	}

	return data, nil
}
