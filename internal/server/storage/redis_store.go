package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// Redis key 前缀
	roomKeyPrefix     = "room:"
	roomCodeKeyPrefix = "roomcode:"
	statsKey          = "stats"

	// 房间数据过期时间
	roomExpiration = 2 * time.Hour
)

// 计数器字段
const (
	StatRoomsCreated = "rooms_created"
	StatGamesStarted = "games_started"
	StatCardsPlayed  = "cards_played"
	StatCardsDrawn   = "cards_drawn"
)

// RedisStore Redis 存储
// client 为 nil 时所有操作都是空操作，房间号预留总是成功
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Enabled 是否连接了 Redis
func (rs *RedisStore) Enabled() bool {
	return rs != nil && rs.client != nil
}

// --- 房间存储 ---

// SaveRoom 保存房间快照到 Redis
func (rs *RedisStore) SaveRoom(ctx context.Context, roomCode string, data *RoomData) error {
	if data == nil || !rs.Enabled() {
		return nil
	}

	raw, err := proto.Marshal(data.ToProto())
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	key := roomKeyPrefix + roomCode
	return rs.client.Set(ctx, key, raw, roomExpiration).Err()
}

// LoadRoom 从 Redis 加载房间快照，不存在时返回 nil, nil
func (rs *RedisStore) LoadRoom(ctx context.Context, code string) (*RoomData, error) {
	if !rs.Enabled() {
		return nil, nil
	}

	key := roomKeyPrefix + code
	raw, err := rs.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // 房间不存在
		}
		return nil, err
	}

	var s structpb.Struct
	if err := proto.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}
	return RoomDataFromProto(&s)
}

// DeleteRoom 从 Redis 删除房间快照
func (rs *RedisStore) DeleteRoom(ctx context.Context, code string) error {
	if !rs.Enabled() {
		return nil
	}
	return rs.client.Del(ctx, roomKeyPrefix+code).Err()
}

// --- 房间号预留 ---

// ReserveCode 跨实例预留房间号，已被占用时返回 false
func (rs *RedisStore) ReserveCode(ctx context.Context, code string, ttl time.Duration) (bool, error) {
	if !rs.Enabled() {
		return true, nil
	}
	ok, err := rs.client.SetNX(ctx, roomCodeKeyPrefix+code, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("预留房间号失败: %w", err)
	}
	return ok, nil
}

// ReleaseCode 释放房间号
func (rs *RedisStore) ReleaseCode(ctx context.Context, code string) error {
	if !rs.Enabled() {
		return nil
	}
	return rs.client.Del(ctx, roomCodeKeyPrefix+code).Err()
}

// --- 计数器 ---

// IncrStat 计数器加一
func (rs *RedisStore) IncrStat(ctx context.Context, field string) error {
	if !rs.Enabled() {
		return nil
	}
	return rs.client.HIncrBy(ctx, statsKey, field, 1).Err()
}

// GetStats 读取全部计数器
func (rs *RedisStore) GetStats(ctx context.Context) (map[string]int64, error) {
	if !rs.Enabled() {
		return map[string]int64{}, nil
	}

	raw, err := rs.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", k, err)
		}
		stats[k] = n
	}
	return stats, nil
}

// Ping 检查连接
func (rs *RedisStore) Ping(ctx context.Context) error {
	if !rs.Enabled() {
		return nil
	}
	return rs.client.Ping(ctx).Err()
}

// Close 关闭连接
func (rs *RedisStore) Close() error {
	if !rs.Enabled() {
		return nil
	}
	return rs.client.Close()
}
