package ui

import (
	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol/codec"
)

// handleServerMessage 处理服务器消息
func (m *Model) handleServerMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgRoomCreated:
		m.handleRoomCreated(msg)
	case protocol.MsgRoomJoined:
		m.handleRoomJoined(msg)
	case protocol.MsgUpdatePlayers:
		if p, err := codec.ParsePayload[protocol.UpdatePlayersPayload](msg); err == nil {
			m.state.players = p.Players
		}
	case protocol.MsgGameStart:
		m.handleGameStart(msg)
	case protocol.MsgCardPlayed:
		m.handleCardPlayed(msg)
	case protocol.MsgTurnUpdate:
		if p, err := codec.ParsePayload[protocol.TurnUpdatePayload](msg); err == nil {
			m.state.turn = p.PlayerID
			m.state.turnNumber = p.TurnNumber
		}
	case protocol.MsgCardDrawn:
		if p, err := codec.ParsePayload[protocol.CardDrawnPayload](msg); err == nil {
			m.state.hand = append(m.state.hand, p.Card)
			m.state.drawPile = p.Remaining
			m.addLog("🃏 你摸到 %s", cardLabel(p.Card))
		}
	case protocol.MsgOpponentDrew:
		if p, err := codec.ParsePayload[protocol.OpponentDrewPayload](msg); err == nil {
			m.state.opponentHand = p.HandSize
			m.addLog("🃏 %s 摸了一张牌", m.nameOf(p.PlayerID))
		}
	case protocol.MsgOpponentLeft:
		if p, err := codec.ParsePayload[protocol.OpponentLeftPayload](msg); err == nil {
			m.addLog("👋 %s", p.Message)
			m.error = p.Message
		}
	case protocol.MsgRoomError, protocol.MsgError:
		if p, err := codec.ParsePayload[protocol.ErrorPayload](msg); err == nil {
			m.error = p.Message
		}
	}
}

func (m *Model) handleRoomCreated(msg *protocol.Message) {
	p, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg)
	if err != nil {
		return
	}
	m.resetState()
	m.state.roomCode = p.RoomCode
	m.state.players = []protocol.PlayerInfo{{ID: m.conn.ConnectionID(), Name: m.playerName}}
	m.enterWaiting()
}

func (m *Model) handleRoomJoined(msg *protocol.Message) {
	p, err := codec.ParsePayload[protocol.RoomJoinedPayload](msg)
	if err != nil {
		return
	}
	m.resetState()
	m.state.roomCode = p.RoomCode
	m.state.players = p.Players
	m.enterWaiting()
}

func (m *Model) handleGameStart(msg *protocol.Message) {
	p, err := codec.ParsePayload[protocol.GameStartPayload](msg)
	if err != nil {
		return
	}
	m.resetState()
	m.state.roomCode = p.RoomCode
	m.state.players = p.Players
	m.state.hand = p.Hands.PlayerHand
	m.state.drawPile = p.DrawPile
	m.state.turn = p.FirstTurn
	m.state.opponentHand = len(p.Hands.PlayerHand)
	m.phase = PhasePlaying
	m.error = ""
	m.input.Placeholder = "<n> <位置> 出牌 | d 摸牌 | q 离开"
	m.addLog("🎮 游戏开始，%s 先手", m.nameOf(p.FirstTurn))
}

func (m *Model) handleCardPlayed(msg *protocol.Message) {
	p, err := codec.ParsePayload[protocol.CardPlayedPayload](msg)
	if err != nil {
		return
	}
	m.state.board[p.Slot] = p.Card
	m.state.turnNumber = p.TurnNumber

	if p.PlayerID == m.conn.ConnectionID() {
		m.removeFromHand(p.Card.ID)
	} else if m.state.opponentHand > 0 {
		m.state.opponentHand--
	}
	m.addLog("▶ %s 在 %s 打出 %s", m.nameOf(p.PlayerID), p.Slot, cardLabel(p.Card))
}

func (m *Model) removeFromHand(id string) {
	for i, c := range m.state.hand {
		if c.ID == id {
			m.state.hand = append(m.state.hand[:i], m.state.hand[i+1:]...)
			return
		}
	}
}

func (m *Model) enterWaiting() {
	m.phase = PhaseWaiting
	m.error = ""
	m.input.Placeholder = "q 离开房间"
}

func (m *Model) resetState() {
	m.state = gameState{board: make(map[string]protocol.CardInfo)}
	m.log = nil
}
