package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
)

// handleKeyPress 处理按键消息，返回是否已处理和命令
func (m *Model) handleKeyPress(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.conn.Close()
		return true, tea.Quit
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		m.input.SetValue("")
		m.submit(value)
		return true, nil
	}
	return false, nil
}

// submit 按当前阶段解释输入
func (m *Model) submit(value string) {
	m.error = ""

	switch m.phase {
	case PhaseName:
		if value == "" {
			m.error = "昵称不能为空"
			return
		}
		m.playerName = value
		m.phase = PhaseLobby
		m.input.Placeholder = "c 创建房间 | 输入房间号加入"

	case PhaseLobby:
		m.submitLobby(value)

	case PhaseWaiting:
		if value == "q" {
			m.leave()
		}

	case PhasePlaying:
		m.submitPlaying(value)
	}
}

func (m *Model) submitLobby(value string) {
	user := protocol.UserData{Name: m.playerName}

	switch {
	case value == "c":
		m.send(protocol.MsgCreateRoom, protocol.CreateRoomPayload{UserData: user})
	case value != "":
		m.send(protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: value, UserData: user})
	}
}

func (m *Model) submitPlaying(value string) {
	switch value {
	case "":
		return
	case "q":
		m.leave()
		return
	case "d":
		m.send(protocol.MsgDrawCard, nil)
		return
	}

	fields := strings.Fields(value)
	if len(fields) != 2 {
		m.error = "格式: <手牌序号> <位置>"
		return
	}
	idx, err := strconv.Atoi(fields[0])
	if err != nil || idx < 1 || idx > len(m.state.hand) {
		m.error = fmt.Sprintf("手牌序号需在 1-%d 之间", len(m.state.hand))
		return
	}
	m.send(protocol.MsgPlayCard, protocol.PlayCardPayload{
		Slot: fields[1],
		Card: m.state.hand[idx-1],
	})
}

// leave 离开房间回到大厅
func (m *Model) leave() {
	m.send(protocol.MsgLeaveRoom, nil)
	m.resetState()
	m.phase = PhaseLobby
	m.input.Placeholder = "c 创建房间 | 输入房间号加入"
}

func (m *Model) send(msgType protocol.MessageType, payload any) {
	if err := m.conn.Send(msgType, payload); err != nil {
		m.error = fmt.Sprintf("发送失败: %v", err)
	}
}
