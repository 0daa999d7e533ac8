package server

import "github.com/ines1102/SeriousGame-sub000/internal/protocol"

// GetOnlineCount 在线连接数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// notify 发送给 match 返回 true 的连接，match 为 nil 时发给全部，返回发送数
// 房间内的消息由 Room.Broadcast 负责，这里只处理服务器级通知
func (s *Server) notify(msg *protocol.Message, match func(*Client) bool) int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	n := 0
	for _, c := range s.clients {
		if match != nil && !match(c) {
			continue
		}
		c.SendMessage(msg)
		n++
	}
	return n
}

// inLobby 尚未进入房间的连接
func inLobby(c *Client) bool {
	return c.GetRoom() == ""
}
