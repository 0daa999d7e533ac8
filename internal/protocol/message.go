package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgCreateRoom MessageType = "createRoom" // 创建房间
	MsgJoinRoom   MessageType = "joinRoom"   // 加入房间
	MsgLeaveRoom  MessageType = "leaveRoom"  // 离开房间

	// 游戏操作
	MsgPlayCard MessageType = "playCard" // 出牌（cardPlayed 作为同义入站事件）
	MsgDrawCard MessageType = "drawCard" // 摸牌
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong

	// 房间相关
	MsgRoomCreated   MessageType = "roomCreated"   // 房间创建成功
	MsgRoomJoined    MessageType = "roomJoined"    // 加入了一个空房间，等待对手
	MsgUpdatePlayers MessageType = "updatePlayers" // 房间玩家列表
	MsgOpponentLeft  MessageType = "opponentLeft"  // 对手离开
	MsgRoomError     MessageType = "roomError"     // 房间错误

	// 游戏流程
	MsgGameStart    MessageType = "gameStart"    // 游戏开始（每人只收到自己的手牌）
	MsgCardPlayed   MessageType = "cardPlayed"   // 有人出牌（入站时与 playCard 同义）
	MsgTurnUpdate   MessageType = "turnUpdate"   // 轮到某人
	MsgCardDrawn    MessageType = "cardDrawn"    // 自己摸到的牌
	MsgOpponentDrew MessageType = "opponentDrew" // 对手摸牌（只含数量）

	// 错误
	MsgError MessageType = "error" // 错误消息
)
