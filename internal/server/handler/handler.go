package handler

import (
	"errors"
	"log"

	"github.com/ines1102/SeriousGame-sub000/internal/apperrors"
	"github.com/ines1102/SeriousGame-sub000/internal/game/room"
	"github.com/ines1102/SeriousGame-sub000/internal/logger"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol/codec"
	"github.com/ines1102/SeriousGame-sub000/internal/types"
)

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server      types.ServerInterface
	RoomManager *room.RoomManager
}

// Handler 消息处理器
type Handler struct {
	server      types.ServerInterface
	roomManager *room.RoomManager
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:      deps.Server,
		roomManager: deps.RoomManager,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing: h.handlePing,

		// 房间操作
		protocol.MsgCreateRoom: h.handleCreateRoom,
		protocol.MsgJoinRoom:   h.handleJoinRoom,
		protocol.MsgLeaveRoom:  func(c types.ClientInterface, _ *protocol.Message) { h.handleLeaveRoom(c) },

		// 游戏操作
		protocol.MsgPlayCard:   h.handlePlayCard,
		protocol.MsgCardPlayed: h.handlePlayCard,
		protocol.MsgDrawCard:   func(c types.ClientInterface, _ *protocol.Message) { h.handleDrawCard(c) },
	}
}

// Handle 处理消息，处理器 panic 不会影响其他连接
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ 处理消息 %s 时 panic (玩家: %s): %v", msg.Type, client.GetID(), r)
			logger.LogPanic(r)
			client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
		}
	}()

	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Printf("⚠️  未知消息类型: '%s' (来自玩家: %s, ID: %s)", msg.Type, client.GetName(), client.GetID())
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// HandleDisconnect 连接断开，等同于离开房间
func (h *Handler) HandleDisconnect(client types.ClientInterface) {
	h.roomManager.LeaveRoom(client)
}

// sendError 把错误转换为 error 消息
func sendError(client types.ClientInterface, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(codec.NewErrorMessage(gameErr.Code))
		return
	}
	log.Printf("处理玩家 %s 的请求失败: %v", client.GetID(), err)
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
}
