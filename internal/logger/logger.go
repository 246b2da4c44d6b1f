// Package logger 构造全局 slog 日志器
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ashwinyue/next-label/internal/config"
)

// New 按配置创建日志器，w 为 nil 时输出到 stderr
func New(cfg config.LogConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Setup 创建日志器并设为默认
func Setup(cfg config.LogConfig) *slog.Logger {
	l := New(cfg, nil)
	slog.SetDefault(l)
	return l
}

// ParseLevel 未知取值按 info 处理
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// Discard 丢弃全部输出，测试使用
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
