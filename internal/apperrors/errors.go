package apperrors

import (
	"errors"

	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
)

// GameError 游戏错误（房间和会话共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrRoomNotFound  = &GameError{Code: protocol.ErrCodeRoomNotFound, Message: "room not found"}
	ErrRoomFull      = &GameError{Code: protocol.ErrCodeRoomFull, Message: "room is full"}
	ErrNotInRoom     = &GameError{Code: protocol.ErrCodeNotInRoom, Message: "not in a room"}
	ErrGameStarted   = &GameError{Code: protocol.ErrCodeGameStarted, Message: "game already started"}
	ErrGameNotStart  = &GameError{Code: protocol.ErrCodeGameNotStart, Message: "game not started"}
	ErrNotYourTurn   = &GameError{Code: protocol.ErrCodeNotYourTurn, Message: "not your turn"}
	ErrInvalidName   = &GameError{Code: protocol.ErrCodeInvalidName, Message: "invalid player name"}
	ErrNoRoomCode    = &GameError{Code: protocol.ErrCodeNoRoomCode, Message: "no free room code"}
	ErrDrawPileEmpty = &GameError{Code: protocol.ErrCodeDrawPileEmpty, Message: "draw pile is empty"}
)

// Code 提取错误码，非 GameError 返回 ErrCodeUnknown
func Code(err error) int {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return protocol.ErrCodeUnknown
}
