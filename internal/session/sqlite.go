package session

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStore 基于 SQLite 的会话存储，进程重启后会话仍然可用
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

// NewSQLiteStore 打开（必要时创建）数据库文件
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite 建议单连接
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db, opts: buildOptions(opts)}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := s.db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Create(ctx context.Context, sess *Session) (string, error) {
	stored := s.opts.prepare(sess)
	payload, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, filename, payload, created_at, last_accessed)
		VALUES (?, ?, ?, ?, ?)
	`, stored.ID, stored.Filename, payload, stored.CreatedAt.UnixNano(), stored.LastAccessed.UnixNano())
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return stored.ID, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	var (
		payload   []byte
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, "SELECT payload, created_at FROM sessions WHERE id = ?", id).Scan(&payload, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	sess.CreatedAt = time.Unix(0, createdAt)

	now := s.opts.now()
	if s.opts.expired(&sess, now) {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	sess.LastAccessed = now
	if _, err := s.db.ExecContext(ctx, "UPDATE sessions SET last_accessed = ? WHERE id = ?", now.UnixNano(), id); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Sweep(ctx context.Context) (int, error) {
	cutoff := s.opts.now().Add(-s.opts.ttl).UnixNano()
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close 关闭数据库连接
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
