package room

// RoomState 房间状态
type RoomState int

const (
	RoomStateWaiting  RoomState = iota // 0-1 名玩家
	RoomStatePlaying                   // 第二名玩家加入后
	RoomStateFinished                  // 预留：服务端不计算胜负，目前不会进入
)

var roomStateNames = [...]string{"waiting", "playing", "finished"}

func (s RoomState) String() string {
	if s >= 0 && int(s) < len(roomStateNames) {
		return roomStateNames[s]
	}
	return "unknown"
}
