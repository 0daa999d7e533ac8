// Package ui 终端调试客户端，与浏览器使用同一套 WebSocket 协议
package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
	"github.com/ines1102/SeriousGame-sub000/internal/transport"
)

// Phase 客户端阶段
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseName             // 输入昵称
	PhaseLobby            // 创建或加入房间
	PhaseWaiting          // 房间里等待对手
	PhasePlaying
	PhaseClosed // 连接已断开
)

const (
	heartbeatInterval = 5 * time.Second
	maxLogLines       = 8
)

// Conn 模型依赖的连接能力，由 transport.Client 实现
type Conn interface {
	Connect() error
	Send(msgType protocol.MessageType, payload any) error
	Receive() (*protocol.Message, error)
	Ping() error
	ConnectionID() string
	Latency() int64
	Close()
}

// ServerMessage 服务器消息（用于 tea.Msg）
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg 连接成功消息
type ConnectedMsg struct{}

// ConnectionErrorMsg 连接错误消息
type ConnectionErrorMsg struct {
	Err error
}

// heartbeatMsg 定时心跳
type heartbeatMsg struct{}

// gameState 客户端看到的对局
type gameState struct {
	roomCode     string
	players      []protocol.PlayerInfo
	hand         []protocol.CardInfo
	drawPile     int
	turn         string // 当前回合玩家的连接 ID
	turnNumber   int
	board        map[string]protocol.CardInfo // 位置 -> 最后打出的牌
	opponentHand int
}

// Model 联网模式的 model
type Model struct {
	conn  Conn
	phase Phase
	error string

	playerName string
	state      gameState
	log        []string // 最近的对局事件

	input  textinput.Model
	width  int
	height int
}

// NewModel 创建连接到 serverURL 的 model
func NewModel(serverURL string) *Model {
	return newModel(transport.NewClient(serverURL))
}

func newModel(conn Conn) *Model {
	ti := textinput.New()
	ti.CharLimit = 40
	ti.Width = 30
	ti.Focus()

	return &Model{
		conn:  conn,
		phase: PhaseConnecting,
		input: ti,
		state: gameState{board: make(map[string]protocol.CardInfo)},
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.connectToServer(), textinput.Blink)
}

// connectToServer 连接服务器
func (m *Model) connectToServer() tea.Cmd {
	return func() tea.Msg {
		if err := m.conn.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

// listenForMessages 监听服务器消息
func (m *Model) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.conn.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

func heartbeat() tea.Cmd {
	return tea.Tick(heartbeatInterval, func(time.Time) tea.Msg { return heartbeatMsg{} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if handled, cmd := m.handleKeyPress(msg); handled {
			return m, cmd
		}

	case ConnectedMsg:
		m.phase = PhaseName
		m.input.Placeholder = "Votre nom"
		cmds = append(cmds, m.listenForMessages(), heartbeat())

	case ConnectionErrorMsg:
		if m.phase == PhaseConnecting {
			m.error = fmt.Sprintf("无法连接到服务器: %v\n\n按 ESC 退出", msg.Err)
		} else {
			m.error = "连接已断开，按 ESC 退出"
			m.phase = PhaseClosed
		}

	case heartbeatMsg:
		if m.phase != PhaseClosed {
			_ = m.conn.Ping()
			cmds = append(cmds, heartbeat())
		}

	case ServerMessage:
		m.handleServerMessage(msg.Msg)
		if m.phase != PhaseClosed {
			cmds = append(cmds, m.listenForMessages())
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// addLog 记录一条对局事件，只保留最近几条
func (m *Model) addLog(format string, args ...any) {
	m.log = append(m.log, fmt.Sprintf(format, args...))
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
}

// myTurn 是否轮到自己
func (m *Model) myTurn() bool {
	return m.state.turn != "" && m.state.turn == m.conn.ConnectionID()
}

// nameOf 按连接 ID 查找昵称
func (m *Model) nameOf(id string) string {
	for _, p := range m.state.players {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}
