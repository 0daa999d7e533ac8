package convert

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
)

// --- Card conversion ---

func CardToProto(c protocol.CardInfo) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"id":        structpb.NewStringValue(c.ID),
		"imagePath": structpb.NewStringValue(c.Image),
		"rarity":    structpb.NewNumberValue(float64(c.Rarity)),
		"kind":      structpb.NewStringValue(c.Kind),
	}})
}

func CardsToProto(cards []protocol.CardInfo) *structpb.ListValue {
	values := make([]*structpb.Value, len(cards))
	for i, c := range cards {
		values[i] = CardToProto(c)
	}
	return &structpb.ListValue{Values: values}
}

func ProtoToCard(v *structpb.Value) (protocol.CardInfo, error) {
	s := v.GetStructValue()
	if s == nil {
		return protocol.CardInfo{}, fmt.Errorf("card: expected struct, got %T", v.GetKind())
	}
	f := s.GetFields()
	return protocol.CardInfo{
		ID:     f["id"].GetStringValue(),
		Image:  f["imagePath"].GetStringValue(),
		Rarity: int(f["rarity"].GetNumberValue()),
		Kind:   f["kind"].GetStringValue(),
	}, nil
}

func ProtoToCards(l *structpb.ListValue) ([]protocol.CardInfo, error) {
	result := make([]protocol.CardInfo, len(l.GetValues()))
	for i, v := range l.GetValues() {
		c, err := ProtoToCard(v)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		result[i] = c
	}
	return result, nil
}

// --- PlayerInfo conversion ---

func PlayerInfoToProto(p protocol.PlayerInfo) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"id":     structpb.NewStringValue(p.ID),
		"name":   structpb.NewStringValue(p.Name),
		"avatar": structpb.NewStringValue(p.Avatar),
		"slot":   structpb.NewNumberValue(float64(p.Slot)),
	}})
}

func PlayerInfosToProto(players []protocol.PlayerInfo) *structpb.ListValue {
	values := make([]*structpb.Value, len(players))
	for i, p := range players {
		values[i] = PlayerInfoToProto(p)
	}
	return &structpb.ListValue{Values: values}
}

func ProtoToPlayerInfo(v *structpb.Value) (protocol.PlayerInfo, error) {
	s := v.GetStructValue()
	if s == nil {
		return protocol.PlayerInfo{}, fmt.Errorf("player: expected struct, got %T", v.GetKind())
	}
	f := s.GetFields()
	return protocol.PlayerInfo{
		ID:     f["id"].GetStringValue(),
		Name:   f["name"].GetStringValue(),
		Avatar: f["avatar"].GetStringValue(),
		Slot:   int(f["slot"].GetNumberValue()),
	}, nil
}

func ProtoToPlayerInfos(l *structpb.ListValue) ([]protocol.PlayerInfo, error) {
	result := make([]protocol.PlayerInfo, len(l.GetValues()))
	for i, v := range l.GetValues() {
		p, err := ProtoToPlayerInfo(v)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		result[i] = p
	}
	return result, nil
}
