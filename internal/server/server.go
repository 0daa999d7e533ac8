package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/ines1102/SeriousGame-sub000/internal/config"
	"github.com/ines1102/SeriousGame-sub000/internal/events"
	"github.com/ines1102/SeriousGame-sub000/internal/game/room"
	"github.com/ines1102/SeriousGame-sub000/internal/server/handler"
	"github.com/ines1102/SeriousGame-sub000/internal/server/storage"
)

// Deps 服务器依赖，由 cmd/server 组装
type Deps struct {
	RoomManager *room.RoomManager   // 必填
	Store       *storage.RedisStore // 可为 nil
	Publisher   events.Publisher    // 可为 nil
}

// Server WebSocket 服务器
type Server struct {
	config      *config.Config
	store       *storage.RedisStore
	publisher   events.Publisher
	roomManager *room.RoomManager
	clients     map[string]*Client
	clientsMu   sync.RWMutex
	handler     *handler.Handler
	upgrader    websocket.Upgrader
	httpServer  *http.Server

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	ipFilter       *IPFilter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		config:      cfg,
		store:       deps.Store,
		publisher:   deps.Publisher,
		roomManager: deps.RoomManager,
		clients:     make(map[string]*Client),
		// 初始化安全组件
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		ipFilter:       NewIPFilter(cfg.Security.Whitelist, cfg.Security.Blacklist),
		// 初始化连接控制
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		stop:           make(chan struct{}),
	}
	if s.publisher == nil {
		s.publisher = events.Noop{}
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// 来源在升级前已由 originChecker 校验
		CheckOrigin: func(*http.Request) bool { return true },
	}

	// 初始化消息处理器
	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:      s,
		RoomManager: s.roomManager,
	})

	log.Printf("🔒 安全配置: 连接限制=%d/s, 消息限制=%d/s, 最大连接数=%d, 白名单=%d, 黑名单=%d",
		cfg.Security.RateLimit.MaxPerSecond, cfg.Security.MessageLimit.MaxPerSecond,
		cfg.Server.MaxConnections, len(cfg.Security.Whitelist), len(cfg.Security.Blacklist))

	return s
}

// Router HTTP 路由
func (s *Server) Router() http.Handler {
	mux := httprouter.New()
	mux.GET("/ws", s.handleWebSocket)
	mux.GET("/health", s.handleHealth)
	mux.GET("/stats", s.handleStats)
	mux.GET("/rooms/:code", s.handleRoomInfo)
	mux.GET("/rooms/:code/qr.png", s.handleRoomQR)
	return mux
}

// Start 启动服务器，Shutdown 后返回 nil
func (s *Server) Start() error {
	addr := s.config.Addr()

	// 启动监控 goroutine
	go s.monitorStats()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("🚀 服务器启动在 ws://%s/ws (CPU核心数: %d)", addr, runtime.NumCPU())
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// stopHTTP 停止接受新请求
func (s *Server) stopHTTP(ctx context.Context) {
	if s.httpServer == nil {
		return
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP 服务关闭失败: %v", err)
	}
}
