package protocol

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// UserData 玩家自报信息（createRoom / joinRoom 共用）
type UserData struct {
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	ClientID string `json:"clientId,omitempty"` // 浏览器会话内稳定的 ID
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	UserData
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	UserData
}

// PlayCardPayload 出牌请求
type PlayCardPayload struct {
	Slot string   `json:"slot"` // 棋盘位置
	Card CardInfo `json:"card"`
}

// --- 服务端响应 Payloads ---

// CardInfo 卡牌信息
type CardInfo struct {
	ID     string `json:"id"`
	Image  string `json:"imagePath"`
	Rarity int    `json:"rarity"`
	Kind   string `json:"kind"`
}

// PlayerInfo 玩家信息
type PlayerInfo struct {
	ID     string `json:"id"` // 连接 ID
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Slot   int    `json:"slot"`
}

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	ConnectionID string `json:"connectionId"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"serverTimestamp"` // 服务器时间戳（毫秒）
}

// RoomCreatedPayload 房间创建成功
type RoomCreatedPayload struct {
	RoomCode string `json:"roomCode"`
}

// RoomJoinedPayload 加入空房间成功（等待对手）
type RoomJoinedPayload struct {
	RoomCode string       `json:"roomCode"`
	Players  []PlayerInfo `json:"players"`
}

// UpdatePlayersPayload 房间玩家列表
type UpdatePlayersPayload struct {
	Players []PlayerInfo `json:"players"`
}

// HandsPayload 发给单个玩家的手牌
type HandsPayload struct {
	PlayerHand []CardInfo `json:"playerHand"`
}

// GameStartPayload 游戏开始
type GameStartPayload struct {
	RoomCode  string       `json:"roomCode"`
	Players   []PlayerInfo `json:"players"`
	Hands     HandsPayload `json:"hands"`
	DrawPile  int          `json:"drawPile"` // 自己牌堆剩余张数
	FirstTurn string       `json:"firstTurn"`
}

// OpponentLeftPayload 对手离开
type OpponentLeftPayload struct {
	Message string `json:"message"`
}

// CardPlayedPayload 出牌广播
type CardPlayedPayload struct {
	PlayerID   string   `json:"playerId"`
	Slot       string   `json:"slot"`
	Card       CardInfo `json:"card"`
	TurnNumber int      `json:"turnNumber"`
}

// TurnUpdatePayload 回合切换
type TurnUpdatePayload struct {
	PlayerID   string `json:"playerId"`
	TurnNumber int    `json:"turnNumber"`
}

// CardDrawnPayload 摸牌结果（仅发给摸牌者）
type CardDrawnPayload struct {
	Card      CardInfo `json:"card"`
	Remaining int      `json:"remaining"`
}

// OpponentDrewPayload 对手摸牌通知（不含牌面）
type OpponentDrewPayload struct {
	PlayerID  string `json:"playerId"`
	Remaining int    `json:"remaining"`
	HandSize  int    `json:"handSize"`
}

// ErrorPayload 错误消息
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
