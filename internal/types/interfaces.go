package types

import (
	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
)

// ServerInterface 处理器依赖的服务器状态（用于打破循环依赖）
type ServerInterface interface {
	IsMaintenanceMode() bool
}

// ClientInterface 定义客户端接口
// ID 为服务器分配的连接 ID，只在连接存续期间有效
type ClientInterface interface {
	GetID() string
	GetName() string
	SetName(name string)
	GetRoom() string
	SetRoom(code string)
	SendMessage(msg *protocol.Message)
	Close()
}
