package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormAdapter 把 GORM 日志接到 slog
// 普通 SQL 记 debug，慢查询和查询错误记 warn。
type GormAdapter struct {
	logger        *slog.Logger
	slowThreshold time.Duration
}

// NewGormAdapter slowThreshold 为 0 时不报告慢查询
func NewGormAdapter(l *slog.Logger, slowThreshold time.Duration) *GormAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &GormAdapter{logger: l.With("component", "gorm"), slowThreshold: slowThreshold}
}

// LogMode 级别由 slog 决定
func (a *GormAdapter) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return a
}

func (a *GormAdapter) Info(ctx context.Context, msg string, data ...any) {
	a.logger.DebugContext(ctx, fmt.Sprintf(msg, data...))
}

func (a *GormAdapter) Warn(ctx context.Context, msg string, data ...any) {
	a.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
}

func (a *GormAdapter) Error(ctx context.Context, msg string, data ...any) {
	a.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
}

// Trace 记录每条 SQL
func (a *GormAdapter) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		a.logger.WarnContext(ctx, "query error",
			"sql", sql, "rows_affected", rows, "duration_ms", elapsed.Milliseconds(), "error", err)
	case a.slowThreshold > 0 && elapsed > a.slowThreshold:
		a.logger.WarnContext(ctx, "slow query",
			"sql", sql, "rows_affected", rows, "duration_ms", elapsed.Milliseconds(), "threshold", a.slowThreshold)
	default:
		a.logger.DebugContext(ctx, "sql query",
			"sql", sql, "rows_affected", rows, "duration_ms", elapsed.Milliseconds())
	}
}
