package session

import (
	"context"
	"sync"
)

// MemoryStore 进程内会话存储
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*Session
	opts  options
}

// NewMemoryStore 创建内存存储
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]*Session),
		opts:  buildOptions(opts),
	}
}

func (m *MemoryStore) Create(ctx context.Context, s *Session) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	stored := m.opts.prepare(s)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[stored.ID] = stored
	return stored.ID, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := m.opts.now()
	if m.opts.expired(s, now) {
		delete(m.items, id)
		return nil, ErrNotFound
	}
	s.LastAccessed = now

	cp := *s
	return &cp, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// Sweep 删除所有过期会话，返回删除数量
func (m *MemoryStore) Sweep(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.opts.now()
	removed := 0
	for id, s := range m.items {
		if m.opts.expired(s, now) {
			delete(m.items, id)
			removed++
		}
	}
	return removed, nil
}

// Count 当前保存的会话数（含尚未清理的过期会话）
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items), nil
}

func (m *MemoryStore) Close() error {
	return nil
}
