package codec

import (
	"bytes"
	"sync"

	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
)

// 入站帧只在 Dispatch 期间借出；出站消息进入发送队列后由接收方持有，不入池
var (
	framePool = sync.Pool{
		New: func() any { return new(protocol.Message) },
	}

	encodeBufPool = sync.Pool{
		New: func() any { return new(bytes.Buffer) },
	}
)

func acquireFrame() *protocol.Message {
	return framePool.Get().(*protocol.Message)
}

// releaseFrame 清空后归还，Payload 不复用以免与处理器解析出的数据共享底层数组
func releaseFrame(msg *protocol.Message) {
	if msg == nil {
		return
	}
	*msg = protocol.Message{}
	framePool.Put(msg)
}

func acquireBuffer() *bytes.Buffer {
	return encodeBufPool.Get().(*bytes.Buffer)
}

func releaseBuffer(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	buf.Reset()
	encodeBufPool.Put(buf)
}
