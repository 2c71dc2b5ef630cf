package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"dcfassist/internal/embedding"
	"dcfassist/internal/model"
)

// DefaultTTL 会话有效期，从创建时刻起算
const DefaultTTL = 24 * time.Hour

var ErrNotFound = errors.New("session not found")

// Session 一次 PDF 上传产生的会话数据
type Session struct {
	ID           string          `json:"id"`
	Filename     string          `json:"filename"`
	Text         string          `json:"text"`
	Summary      string          `json:"summary"`
	ModelData    model.ModelData `json:"modelData,omitempty"`
	Index        embedding.Index `json:"index"`
	CreatedAt    time.Time       `json:"createdAt"`
	LastAccessed time.Time       `json:"lastAccessed"`
}

// ChunkCount 文档片段数量
func (s *Session) ChunkCount() int {
	return len(s.Index.Chunks)
}

// Store 会话存储
// Get 在会话不存在或已过期时返回 ErrNotFound，并刷新 LastAccessed
type Store interface {
	Create(ctx context.Context, s *Session) (string, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Sweep(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Option 存储选项
type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL 设置会话有效期
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock 替换时钟，用于测试
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) expired(s *Session, now time.Time) bool {
	return now.Sub(s.CreatedAt) > o.ttl
}

// prepare 分配 ID 并填充时间戳
func (o options) prepare(s *Session) *Session {
	cp := *s
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	now := o.now()
	cp.CreatedAt = now
	cp.LastAccessed = now
	return &cp
}

// ShortID 日志中使用的会话 ID 前缀
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
