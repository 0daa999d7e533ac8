package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ines1102/SeriousGame-sub000/internal/game/deck"
)

// 默认值
const (
	defaultHost                  = "0.0.0.0"
	defaultPort                  = 3000
	defaultMaxConnections        = 2000
	defaultNATSSubjectPrefix     = "remedy"
	defaultNATSName              = "remedy-duel-server"
	defaultEmptyRoomGrace        = 15 // 秒
	defaultRoomIdleTimeout       = 60 // 分钟
	defaultSweepInterval         = 60 // 秒
	defaultCodeReservationTTL    = 120
	defaultShutdownTimeout       = 30 // 分钟
	defaultShutdownCheckInterval = 5  // 秒
	defaultRoomCleanupDelay      = 10 // 秒
	defaultRateMaxPerSecond      = 10
	defaultRateMaxPerMinute      = 60
	defaultRateBanDuration       = 60 // 秒
	defaultMessageMaxPerSecond   = 20
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	NATS     NATSConfig     `yaml:"nats"`
	Game     GameConfig     `yaml:"game"`
	Deck     DeckConfig     `yaml:"deck"`
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
	PublicURL      string `yaml:"public_url"` // 二维码中的加入地址前缀，为空时按请求 Host 拼接
}

// RedisConfig Redis 配置，Addr 为空时不启用
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NATSConfig 事件总线配置，URL 为空时不启用
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
	Name          string `yaml:"name"`
}

// GameConfig 房间生命周期配置
type GameConfig struct {
	EmptyRoomGrace        int `yaml:"empty_room_grace"`        // 房间变空后多久删除（秒）
	RoomIdleTimeout       int `yaml:"room_idle_timeout"`       // 兜底清理：空房间存活上限（分钟）
	SweepInterval         int `yaml:"sweep_interval"`          // 兜底清理间隔（秒）
	CodeReservationTTL    int `yaml:"code_reservation_ttl"`    // Redis 房间号预留时长（分钟）
	ShutdownTimeout       int `yaml:"shutdown_timeout"`        // 优雅关闭最长等待（分钟）
	ShutdownCheckInterval int `yaml:"shutdown_check_interval"` // 优雅关闭检查间隔（秒）
	RoomCleanupDelay      int `yaml:"room_cleanup_delay"`      // 关闭前的通知等待（秒）
}

// EmptyRoomGraceDuration 空房间宽限期
func (c *GameConfig) EmptyRoomGraceDuration() time.Duration {
	return time.Duration(c.EmptyRoomGrace) * time.Second
}

// RoomIdleTimeoutDuration 空房间存活上限
func (c *GameConfig) RoomIdleTimeoutDuration() time.Duration {
	return time.Duration(c.RoomIdleTimeout) * time.Minute
}

// SweepIntervalDuration 兜底清理间隔
func (c *GameConfig) SweepIntervalDuration() time.Duration {
	return time.Duration(c.SweepInterval) * time.Second
}

// CodeReservationTTLDuration 房间号预留时长
func (c *GameConfig) CodeReservationTTLDuration() time.Duration {
	return time.Duration(c.CodeReservationTTL) * time.Minute
}

// ShutdownTimeoutDuration 优雅关闭最长等待
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Minute
}

// ShutdownCheckIntervalDuration 优雅关闭检查间隔
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return time.Duration(c.ShutdownCheckInterval) * time.Second
}

// RoomCleanupDelayDuration 关闭前的通知等待
func (c *GameConfig) RoomCleanupDelayDuration() time.Duration {
	return time.Duration(c.RoomCleanupDelay) * time.Second
}

// DeckConfig 牌组构成
type DeckConfig struct {
	DeckSize            int    `yaml:"deck_size"`
	HandSize            int    `yaml:"hand_size"`
	Diseases            int    `yaml:"diseases"`
	Bonuses             int    `yaml:"bonuses"`
	Maluses             int    `yaml:"maluses"`
	Supporters          int    `yaml:"supporters"`
	MaxDistinctAttempts int    `yaml:"max_distinct_attempts"`
	CatalogPath         string `yaml:"catalog_path"` // 为空时使用内置卡牌目录
	Seed                uint64 `yaml:"seed"`         // 非 0 时固定随机种子（调试用）
}

// Options 转换为牌组生成参数
func (c DeckConfig) Options() deck.Options {
	return deck.Options{
		DeckSize:            c.DeckSize,
		HandSize:            c.HandSize,
		Diseases:            c.Diseases,
		Bonuses:             c.Bonuses,
		Maluses:             c.Maluses,
		Supporters:          c.Supporters,
		MaxDistinctAttempts: c.MaxDistinctAttempts,
	}
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins"`
	Whitelist      []string           `yaml:"whitelist"` // 非空时只接受列出的 IP
	Blacklist      []string           `yaml:"blacklist"`
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
}

// RateLimitConfig 连接速率限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // 秒
}

// BanDurationTime 封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// MessageLimitConfig 消息速率限制
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults 设置默认值
func (c *Config) applyDefaults() {
	setInt := func(v *int, def int) {
		if *v == 0 {
			*v = def
		}
	}

	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	setInt(&c.Server.Port, defaultPort)
	setInt(&c.Server.MaxConnections, defaultMaxConnections)

	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = defaultNATSSubjectPrefix
	}
	if c.NATS.Name == "" {
		c.NATS.Name = defaultNATSName
	}

	setInt(&c.Game.EmptyRoomGrace, defaultEmptyRoomGrace)
	setInt(&c.Game.RoomIdleTimeout, defaultRoomIdleTimeout)
	setInt(&c.Game.SweepInterval, defaultSweepInterval)
	setInt(&c.Game.CodeReservationTTL, defaultCodeReservationTTL)
	setInt(&c.Game.ShutdownTimeout, defaultShutdownTimeout)
	setInt(&c.Game.ShutdownCheckInterval, defaultShutdownCheckInterval)
	setInt(&c.Game.RoomCleanupDelay, defaultRoomCleanupDelay)

	d := deck.DefaultOptions()
	setInt(&c.Deck.DeckSize, d.DeckSize)
	setInt(&c.Deck.HandSize, d.HandSize)
	setInt(&c.Deck.Diseases, d.Diseases)
	setInt(&c.Deck.Bonuses, d.Bonuses)
	setInt(&c.Deck.Maluses, d.Maluses)
	setInt(&c.Deck.Supporters, d.Supporters)
	setInt(&c.Deck.MaxDistinctAttempts, d.MaxDistinctAttempts)

	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = []string{"*"}
	}
	setInt(&c.Security.RateLimit.MaxPerSecond, defaultRateMaxPerSecond)
	setInt(&c.Security.RateLimit.MaxPerMinute, defaultRateMaxPerMinute)
	setInt(&c.Security.RateLimit.BanDuration, defaultRateBanDuration)
	setInt(&c.Security.MessageLimit.MaxPerSecond, defaultMessageMaxPerSecond)
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxConnections < 1 {
		errs = append(errs, errors.New("server.max_connections must be positive"))
	}
	if c.Game.EmptyRoomGrace < 0 || c.Game.SweepInterval < 1 || c.Game.RoomIdleTimeout < 1 {
		errs = append(errs, errors.New("game timers must be positive"))
	}
	if err := c.Deck.Options().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("deck: %w", err))
	}
	return errors.Join(errs...)
}

// Addr 监听地址
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
