package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"dcfassist/internal/config"
	"dcfassist/internal/logging"
)

// Open 按配置创建会话存储
// Redis 不可用时回退到内存存储
func Open(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	sc := cfg.Session
	opts := []Option{WithTTL(sc.TTL.Duration)}

	switch strings.ToLower(strings.TrimSpace(sc.Backend)) {
	case "", "memory":
		return NewMemoryStore(opts...), nil

	case "sqlite":
		path := config.GetDataPath(cfg, sc.SQLiteFile)
		store, err := NewSQLiteStore(path, opts...)
		if err != nil {
			return nil, err
		}
		logger.Info("session store opened", "backend", "sqlite", "path", path)
		return store, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: sc.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			logger.Warn("redis unavailable, falling back to in-memory sessions", "addr", sc.RedisAddr, "error", err)
			return NewMemoryStore(opts...), nil
		}
		logger.Info("session store opened", "backend", "redis", "addr", sc.RedisAddr)
		return NewRedisStore(client, sc.RedisPrefix, opts...), nil

	default:
		return nil, fmt.Errorf("unknown session backend %q", sc.Backend)
	}
}

// RunSweeper 定期清理过期会话，直到 ctx 取消
func RunSweeper(ctx context.Context, store Store, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = logging.Nop()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Sweep(ctx)
			if err != nil {
				logger.Warn("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
		}
	}
}
