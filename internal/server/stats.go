package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/ines1102/SeriousGame-sub000/internal/protocol"
)

const qrSize = 320

// StatsResponse /stats 返回体
type StatsResponse struct {
	Online   int              `json:"online"`
	Rooms    int              `json:"rooms"`
	Playing  int              `json:"playing"`
	Banned   int              `json:"banned"`             // 处于连接封禁期的 IP
	Counters map[string]int64 `json:"counters,omitempty"` // Redis 累计计数，未启用时省略
}

// Stats 当前统计
func (s *Server) Stats(ctx context.Context) StatsResponse {
	resp := StatsResponse{
		Online:  s.GetOnlineCount(),
		Rooms:   s.roomManager.RoomCount(),
		Playing: s.roomManager.GetActiveGamesCount(),
		Banned:  s.rateLimiter.BannedCount(),
	}
	if s.store.Enabled() {
		counters, err := s.store.GetStats(ctx)
		if err != nil {
			log.Printf("读取计数失败: %v", err)
		} else {
			resp.Counters = counters
		}
	}
	return resp
}

// handleStats 统计接口
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Stats(ctx)); err != nil {
		log.Printf("写入统计失败: %v", err)
	}
}

// RoomInfoResponse /rooms/:code 返回体，只含公开信息
type RoomInfoResponse struct {
	Code        string                `json:"code"`
	Status      string                `json:"status"`
	CurrentTurn string                `json:"currentTurn,omitempty"`
	TurnNumber  int                   `json:"turnNumber"`
	Players     []protocol.PlayerInfo `json:"players"`
	PlayedCards int                   `json:"playedCards"`
}

// handleRoomInfo 从 Redis 快照读取房间概况，任一实例上的房间都可查询
func (s *Server) handleRoomInfo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !s.store.Enabled() {
		http.Error(w, "room snapshots require redis", http.StatusNotImplemented)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	data, err := s.store.LoadRoom(ctx, ps.ByName("code"))
	if err != nil {
		log.Printf("读取房间快照失败: %v", err)
		http.Error(w, "snapshot unavailable", http.StatusBadGateway)
		return
	}
	if data == nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(RoomInfoResponse{
		Code:        data.Code,
		Status:      data.Status,
		CurrentTurn: data.CurrentTurn,
		TurnNumber:  data.TurnNumber,
		Players:     data.Players,
		PlayedCards: len(data.PlayedCards),
	}); err != nil {
		log.Printf("写入房间信息失败: %v", err)
	}
}

// handleRoomQR 房间加入链接的二维码
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if s.roomManager.GetRoom(code) == nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	png, err := qrcode.Encode(s.joinURL(r, code), qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// joinURL 配置了 public_url 时以其为前缀，否则按请求的 Host 拼接
func (s *Server) joinURL(r *http.Request, code string) string {
	base := strings.TrimRight(s.config.Server.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + "/?room=" + code
}
