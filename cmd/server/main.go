package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/ines1102/SeriousGame-sub000/internal/config"
	"github.com/ines1102/SeriousGame-sub000/internal/events"
	"github.com/ines1102/SeriousGame-sub000/internal/game/card"
	"github.com/ines1102/SeriousGame-sub000/internal/game/deck"
	"github.com/ines1102/SeriousGame-sub000/internal/game/room"
	"github.com/ines1102/SeriousGame-sub000/internal/server"
	"github.com/ines1102/SeriousGame-sub000/internal/server/storage"
)

const releaseVersion = "0.1.0"

func main() {
	// .env 中的 REMEDY_* 变量在绑定参数前载入
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("⚠️ 读取 .env 失败: %v", err)
	}

	cobra.CheckErr(newCmd(&options{}).Execute())
}

// run 组装依赖并运行服务器，收到 SIGINT/SIGTERM 时优雅关闭
func run(ctx context.Context, cfg *config.Config) error {
	catalog, err := card.LoadCatalog(cfg.Deck.CatalogPath)
	if err != nil {
		return err
	}

	var rng *rand.Rand
	if cfg.Deck.Seed != 0 {
		log.Printf("🎲 使用固定随机种子 %d", cfg.Deck.Seed)
		rng = rand.New(rand.NewPCG(cfg.Deck.Seed, cfg.Deck.Seed))
	}
	builder, err := deck.NewBuilder(catalog, cfg.Deck.Options(), rng)
	if err != nil {
		return err
	}

	store, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.NATS.URL != "" {
		nc, err := events.Connect(cfg.NATS.URL, cfg.NATS.Name)
		if err != nil {
			_ = store.Close()
			return err
		}
		publisher = events.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix)
		log.Printf("📡 房间事件发布到 NATS %s (%s.*)", cfg.NATS.URL, cfg.NATS.SubjectPrefix)
	}

	opts := room.Options{
		Builder:        builder,
		Publisher:      publisher,
		EmptyRoomGrace: cfg.Game.EmptyRoomGraceDuration(),
		IdleTimeout:    cfg.Game.RoomIdleTimeoutDuration(),
		SweepInterval:  cfg.Game.SweepIntervalDuration(),
		CodeTTL:        cfg.Game.CodeReservationTTLDuration(),
	}
	if store.Enabled() {
		opts.Store = store
	}
	rm := room.NewRoomManager(opts)

	srv := server.NewServer(cfg, server.Deps{
		RoomManager: rm,
		Store:       store,
		Publisher:   publisher,
	})

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		sig := <-quit
		log.Printf("收到信号 %v，进入维护模式...", sig)
		go func() {
			// 再次收到信号时立即关闭
			<-quit
			log.Println("再次收到信号，立即关闭")
			srv.Shutdown()
		}()
		srv.GracefulShutdown(cfg.Game.ShutdownTimeoutDuration())
	}()

	log.Printf("🩺 Remedy Duel 服务器 v%s 启动中...", releaseVersion)
	if err := srv.Start(); err != nil {
		return err
	}
	// Start 在 HTTP 停止后立即返回，等待 Shutdown 的其余清理完成
	srv.Shutdown()
	return nil
}

// connectRedis Addr 为空时返回未启用的存储
func connectRedis(ctx context.Context, cfg config.RedisConfig) (*storage.RedisStore, error) {
	if cfg.Addr == "" {
		log.Println("ℹ️ 未配置 Redis，房间不做镜像")
		return storage.NewRedisStore(nil), nil
	}

	store := storage.NewRedisStore(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}))

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	log.Printf("✅ 已连接 Redis %s", cfg.Addr)
	return store, nil
}
