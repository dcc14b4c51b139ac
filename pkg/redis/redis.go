package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"care-station/backend/config"
)

// Client Redis 客户端封装
// 用于 Token 黑名单与批注编辑锁（带 TTL 的提示性锁）
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 批注编辑锁 ──
//
// 提示性锁，不是互斥量：只用于提醒后来的编辑者"有人正在编辑"，
// 真正的写冲突由批注记录的版本号比对兜底。
// TTL 到期自动消失；进程/实例重启不影响正确性。

const editLockPrefix = "annotation:editlock:"

// EditLockInfo 编辑锁持有者信息
type EditLockInfo struct {
	HolderID   string    `json:"holder_id"`
	HolderName string    `json:"holder_name"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// AcquireEditLock 尝试获取编辑锁。
// 成功返回 (nil, true)；已被他人持有时返回 (持有者信息, false)。
// 同一持有者重复获取视为续期。
func (c *Client) AcquireEditLock(ctx context.Context, key string, info EditLockInfo, ttl time.Duration) (*EditLockInfo, bool, error) {
	payload, err := json.Marshal(info)
	if err != nil {
		return nil, false, err
	}

	ok, err := c.rdb.SetNX(ctx, editLockPrefix+key, payload, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if ok {
		return nil, true, nil
	}

	holder, err := c.GetEditLock(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if holder == nil {
		// 锁在 SetNX 与读取之间恰好过期，直接重试一次
		ok, err := c.rdb.SetNX(ctx, editLockPrefix+key, payload, ttl).Result()
		if err != nil {
			return nil, false, err
		}
		return nil, ok, nil
	}
	if holder.HolderID == info.HolderID {
		// 同一持有者续期
		if err := c.rdb.Set(ctx, editLockPrefix+key, payload, ttl).Err(); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}

	return holder, false, nil
}

// GetEditLock 查询编辑锁当前持有者；无锁返回 nil
func (c *Client) GetEditLock(ctx context.Context, key string) (*EditLockInfo, error) {
	payload, err := c.rdb.Get(ctx, editLockPrefix+key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var info EditLockInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ReleaseEditLock 释放编辑锁。
// 仅当持有者匹配时删除，避免误删他人后来获取的锁。
func (c *Client) ReleaseEditLock(ctx context.Context, key string, holderID string) error {
	holder, err := c.GetEditLock(ctx, key)
	if err != nil {
		return err
	}
	if holder == nil || holder.HolderID != holderID {
		return nil
	}
	return c.rdb.Del(ctx, editLockPrefix+key).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
