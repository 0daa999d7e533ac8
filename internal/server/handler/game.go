package handler

import (
	"strings"

	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol/codec"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol/convert"
	"github.com/ines1102/SeriousGame-sub000/internal/types"
)

// handlePlayCard 处理出牌（playCard 与 cardPlayed 同义）
func (h *Handler) handlePlayCard(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PlayCardPayload](msg)
	if err != nil || strings.TrimSpace(payload.Slot) == "" {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := h.roomManager.PlayCard(client, payload.Slot, convert.InfoToCard(payload.Card)); err != nil {
		sendError(client, err)
	}
}

// handleDrawCard 处理摸牌
func (h *Handler) handleDrawCard(client types.ClientInterface) {
	if err := h.roomManager.DrawCard(client); err != nil {
		sendError(client, err)
	}
}
