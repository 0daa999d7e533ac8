package room

import (
	"context"
	"log"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/ines1102/SeriousGame-sub000/internal/apperrors"
	"github.com/ines1102/SeriousGame-sub000/internal/events"
)

const (
	roomCodeMin     = 1000 // 房间号为 [1000, 9999] 内的四位数
	roomCodeMax     = 9999
	maxCodeAttempts = 200

	storeTimeout = 2 * time.Second
)

// generateRoomCode 生成房间号（调用方持有 rm.mu）
func (rm *RoomManager) generateRoomCode() (string, error) {
	for range maxCodeAttempts {
		var n int
		if rm.codeRand != nil {
			n = roomCodeMin + rm.codeRand.IntN(roomCodeMax-roomCodeMin+1)
		} else {
			n = roomCodeMin + rand.IntN(roomCodeMax-roomCodeMin+1)
		}
		code := strconv.Itoa(n)
		if _, exists := rm.rooms[code]; exists {
			continue
		}
		if rm.reserveCode(code) {
			return code, nil
		}
	}
	log.Printf("⚠️ %d 次尝试后仍无可用房间号，当前房间数 %d", maxCodeAttempts, len(rm.rooms))
	return "", apperrors.ErrNoRoomCode
}

// reserveCode 在 Redis 中预留房间号；Redis 出错时只依赖内存判重
func (rm *RoomManager) reserveCode(code string) bool {
	if rm.store == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	ok, err := rm.store.ReserveCode(ctx, code, rm.codeTTL)
	if err != nil {
		log.Printf("预留房间号 %s 失败: %v", code, err)
		return true
	}
	return ok
}

// scheduleEmptyRoomRemoval 房间变空后启动宽限计时（调用方持有 room.mu）
func (rm *RoomManager) scheduleEmptyRoomRemoval(room *Room) {
	room.stopGraceTimer()
	room.graceTimer = time.AfterFunc(rm.grace, func() {
		rm.expireEmptyRoom(room)
	})
}

// expireEmptyRoom 宽限期结束：房间仍为空才删除
func (rm *RoomManager) expireEmptyRoom(room *Room) {
	rm.mu.Lock()
	if rm.rooms[room.Code] != room {
		rm.mu.Unlock()
		return
	}
	room.mu.Lock()
	empty := len(room.Players) == 0
	if empty {
		room.graceTimer = nil
	}
	room.mu.Unlock()
	if !empty {
		rm.mu.Unlock()
		return
	}
	delete(rm.rooms, room.Code)
	rm.mu.Unlock()

	log.Printf("🏠 房间 %s 已空置 %v，已删除", room.Code, rm.grace)
	rm.afterRemove(room.Code, "empty")
}

// RemoveRoom 立即删除房间，房间内玩家回到大厅
func (rm *RoomManager) RemoveRoom(code string) {
	rm.mu.Lock()
	room, exists := rm.rooms[code]
	if !exists {
		rm.mu.Unlock()
		return
	}
	delete(rm.rooms, code)

	room.mu.Lock()
	room.stopGraceTimer()
	players := make([]*RoomPlayer, len(room.Players))
	copy(players, room.Players)
	for _, p := range players {
		delete(rm.byConn, p.ID())
	}
	room.mu.Unlock()
	rm.mu.Unlock()

	for _, p := range players {
		p.Client.SetRoom("")
	}

	log.Printf("🏠 房间 %s 已删除", code)
	rm.afterRemove(code, "removed")
}

// afterRemove 清理镜像并发布事件
func (rm *RoomManager) afterRemove(code, reason string) {
	if rm.store != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			if err := rm.store.DeleteRoom(ctx, code); err != nil {
				log.Printf("删除房间镜像 %s 失败: %v", code, err)
			}
			if err := rm.store.ReleaseCode(ctx, code); err != nil {
				log.Printf("释放房间号 %s 失败: %v", code, err)
			}
		}()
	}
	rm.publisher.Publish(events.New(events.RoomClosed, code, "").With("reason", reason))
}

// cleanupLoop 定期清理超时房间
func (rm *RoomManager) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rm.sweep(now)
		case <-rm.stop:
			return
		}
	}
}

// sweep 兜底清理：删除空置且创建时间超过上限的房间
func (rm *RoomManager) sweep(now time.Time) int {
	rm.mu.Lock()
	var expired []string
	for code, room := range rm.rooms {
		room.mu.Lock()
		if len(room.Players) == 0 && now.Sub(room.CreatedAt) > rm.idle {
			room.stopGraceTimer()
			expired = append(expired, code)
		}
		room.mu.Unlock()
	}
	for _, code := range expired {
		delete(rm.rooms, code)
	}
	rm.mu.Unlock()

	for _, code := range expired {
		log.Printf("🧹 房间 %s 超时已清理", code)
		rm.afterRemove(code, "idle")
	}
	return len(expired)
}

// Close 停止清理协程和所有宽限计时
func (rm *RoomManager) Close() {
	rm.stopOnce.Do(func() {
		close(rm.stop)

		rm.mu.RLock()
		defer rm.mu.RUnlock()
		for _, room := range rm.rooms {
			room.mu.Lock()
			room.stopGraceTimer()
			room.mu.Unlock()
		}
	})
}

// saveRoom 异步保存房间快照
func (rm *RoomManager) saveRoom(room *Room) {
	if rm.store == nil {
		return
	}
	go func() {
		room.saveMu.Lock()
		defer room.saveMu.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := rm.store.SaveRoom(ctx, room.Code, room.ToRoomData()); err != nil {
			log.Printf("保存房间 %s 失败: %v", room.Code, err)
		}
	}()
}

// incrStat 异步累加计数器
func (rm *RoomManager) incrStat(field string) {
	if rm.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := rm.store.IncrStat(ctx, field); err != nil {
			log.Printf("更新计数 %s 失败: %v", field, err)
		}
	}()
}
