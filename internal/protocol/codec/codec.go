package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
)

// ErrEmptyType 消息缺少 type 字段
var ErrEmptyType = errors.New("message type is empty")

// NewMessage 创建一个新消息
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	msg := &protocol.Message{Type: msgType}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
		}
		msg.Payload = data
	}
	return msg, nil
}

// MustNewMessage 创建消息，失败时 panic
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode 将消息编码为 JSON 文本帧
func Encode(m *protocol.Message) ([]byte, error) {
	buf := acquireBuffer()
	defer releaseBuffer(buf)

	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return nil, err
	}

	// Encoder 会追加换行，浏览器端不需要
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return append([]byte(nil), out...), nil
}

// Decode 从 JSON 文本帧解码消息，返回值归调用方所有
func Decode(data []byte) (*protocol.Message, error) {
	msg := new(protocol.Message)
	if err := unmarshalFrame(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Dispatch 解码入站帧并交给 handle，handle 返回后消息归还到池
// handle 不能保留 msg，需要的数据应通过 ParsePayload 取出
func Dispatch(data []byte, handle func(*protocol.Message)) error {
	msg := acquireFrame()
	defer releaseFrame(msg)

	if err := unmarshalFrame(data, msg); err != nil {
		return err
	}
	handle(msg)
	return nil
}

func unmarshalFrame(data []byte, msg *protocol.Message) error {
	if err := json.Unmarshal(data, msg); err != nil {
		return err
	}
	if msg.Type == "" {
		return ErrEmptyType
	}
	return nil
}

// ParsePayload 解析消息的 Payload 到指定类型
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	var payload T
	if len(msg.Payload) == 0 {
		return &payload, nil
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", msg.Type, err)
	}
	return &payload, nil
}

// NewErrorMessage 创建错误消息
func NewErrorMessage(code int) *protocol.Message {
	return NewErrorMessageWithText(code, protocol.ErrorMessages[code])
}

// NewErrorMessageWithText 创建带自定义文本的错误消息
func NewErrorMessageWithText(code int, text string) *protocol.Message {
	return MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    code,
		Message: text,
	})
}

// NewRoomErrorMessage 创建房间错误消息（roomError）
func NewRoomErrorMessage(code int) *protocol.Message {
	return MustNewMessage(protocol.MsgRoomError, protocol.ErrorPayload{
		Code:    code,
		Message: protocol.ErrorMessages[code],
	})
}
