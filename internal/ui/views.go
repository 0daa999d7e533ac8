package ui

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
)

func (m *Model) View() string {
	var body string
	switch m.phase {
	case PhaseConnecting:
		body = "🔌 正在连接服务器..."
	case PhaseName:
		body = m.nameView()
	case PhaseLobby:
		body = m.lobbyView()
	case PhaseWaiting:
		body = m.waitingView()
	case PhasePlaying:
		body = m.gameView()
	case PhaseClosed:
		body = "连接已断开"
	}

	var sb strings.Builder
	sb.WriteString(titleStyle("🩺 Remedy Duel"))
	sb.WriteString("\n\n")
	sb.WriteString(body)
	if m.phase != PhaseConnecting && m.phase != PhaseClosed {
		sb.WriteString(promptStyle.Render(m.input.View()))
	}
	if m.error != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.error))
	}
	return docStyle.Render(sb.String())
}

func (m *Model) nameView() string {
	return "请输入昵称:"
}

func (m *Model) lobbyView() string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("欢迎, %s!", m.playerName),
		"",
		"  c      创建房间",
		"  1234   加入房间",
	))
}

func (m *Model) waitingView() string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("房间号: %s", m.state.roomCode),
		"",
		"⏳ 等待对手加入...",
		dimStyle.Render(m.playersLine()),
	))
}

func (m *Model) gameView() string {
	turn := dimStyle.Render(fmt.Sprintf("等待 %s", m.nameOf(m.state.turn)))
	if m.myTurn() {
		turn = turnStyle.Render("轮到你了")
	}

	header := fmt.Sprintf("房间 %s | 回合 %d | %s | 延迟 %dms",
		m.state.roomCode, m.state.turnNumber, turn, m.conn.Latency())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		dimStyle.Render(fmt.Sprintf("%s | 对手手牌 %d", m.playersLine(), m.state.opponentHand)),
		"",
		boxStyle.Render(m.boardView()),
		"",
		fmt.Sprintf("你的手牌 (牌堆剩余 %d):", m.state.drawPile),
		m.handView(),
		"",
		dimStyle.Render(strings.Join(m.log, "\n")),
	)
}

func (m *Model) playersLine() string {
	names := make([]string, 0, len(m.state.players))
	for _, p := range m.state.players {
		names = append(names, fmt.Sprintf("%d:%s", p.Slot+1, p.Name))
	}
	return "玩家 " + strings.Join(names, ", ")
}

func (m *Model) boardView() string {
	if len(m.state.board) == 0 {
		return dimStyle.Render("(棋盘为空)")
	}
	slots := make([]string, 0, len(m.state.board))
	for slot := range m.state.board {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	lines := make([]string, 0, len(slots))
	for _, slot := range slots {
		lines = append(lines, fmt.Sprintf("%-6s %s", slot, cardLabel(m.state.board[slot])))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) handView() string {
	if len(m.state.hand) == 0 {
		return dimStyle.Render("(空)")
	}
	lines := make([]string, 0, len(m.state.hand))
	for i, c := range m.state.hand {
		lines = append(lines, fmt.Sprintf("%2d. %s", i+1, cardLabel(c)))
	}
	return strings.Join(lines, "\n")
}

// cardLabel 种类 + 图片文件名 + 稀有度星级
func cardLabel(c protocol.CardInfo) string {
	name := strings.TrimSuffix(path.Base(c.Image), path.Ext(c.Image))
	stars := strings.Repeat("★", max(c.Rarity, 0))
	return kindStyle(c.Kind).Render(fmt.Sprintf("[%s] %s %s", c.Kind, name, stars))
}
