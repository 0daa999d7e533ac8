package server

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
	"github.com/ines1102/SeriousGame-sub000/internal/protocol/codec"
)

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case <-s.stop:
			return
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		log.Printf("📊 [监控] 在线: %d | 房间: %d | 对局: %d | Goroutines: %d | 活跃连接: %d/%d | 内存: %.2f MB",
			s.GetOnlineCount(),
			s.roomManager.RoomCount(),
			s.roomManager.GetActiveGamesCount(),
			runtime.NumGoroutine(),
			len(s.semaphore),
			s.maxConnections,
			float64(m.Alloc)/1024/1024)
	}
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接、新房间和加入
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	// 对局中的玩家不打扰，只通知大厅
	n := s.notify(codec.NewErrorMessage(protocol.ErrCodeServerMaintenance), inLobby)

	log.Printf("🔧 进入维护模式：停止新连接和房间创建，已通知 %d 个大厅连接", n)
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 进入维护模式，等待进行中的对局结束（最多 timeout），然后关闭
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(s.config.Game.ShutdownCheckIntervalDuration())
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		activeGames := s.roomManager.GetActiveGamesCount()
		if activeGames == 0 {
			log.Printf("✅ 所有对局已结束，将在 %ds 后关闭服务器", s.config.Game.RoomCleanupDelay)
			s.notify(codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance,
				fmt.Sprintf("Le serveur s'arrête dans %d secondes.", s.config.Game.RoomCleanupDelay)), inLobby)
			break
		}
		log.Printf("⏳ 等待 %d 个对局结束...", activeGames)
		<-ticker.C
	}

	if activeGames := s.roomManager.GetActiveGamesCount(); activeGames > 0 {
		log.Printf("⚠️ 超时，仍有 %d 个对局进行中，强制关闭", activeGames)
	}

	time.Sleep(s.config.Game.RoomCleanupDelayDuration())
	s.Shutdown()
}

// Shutdown 立即关闭：断开所有连接，停止后台协程，关闭 Redis 和 NATS
func (s *Server) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.stop)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.stopHTTP(ctx)

		// 通知并关闭所有客户端连接
		s.notify(codec.NewErrorMessage(protocol.ErrCodeServerMaintenance), nil)
		s.clientsMu.RLock()
		for _, client := range s.clients {
			client.Close()
		}
		s.clientsMu.RUnlock()

		s.roomManager.Close()
		s.rateLimiter.Stop()
		s.publisher.Close()
		if err := s.store.Close(); err != nil {
			log.Printf("关闭 Redis 失败: %v", err)
		}

		log.Println("服务器已关闭")
	})
}
