package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dcfassist/internal/config"
)

// Logger 带关闭函数的日志器
type Logger struct {
	*slog.Logger
	Close func() error
}

// Nop 丢弃所有输出
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// ParseLevel 解析日志级别，未知值按 info 处理
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New 按配置创建日志器；配置了文件时写入文件，否则写 stderr
func New(cfg config.LogConfig) (Logger, error) {
	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return Logger{Logger: Nop(), Close: closeFn}, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return Logger{Logger: Nop(), Close: closeFn}, fmt.Errorf("open log file: %w", err)
		}
		w = file
		closeFn = file.Close
	}

	return Logger{Logger: NewWithWriter(w, cfg), Close: closeFn}, nil
}

// NewWithWriter 写入指定 writer
func NewWithWriter(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
