package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

// gormLog routes GORM output through the application logger so SQL warnings
// share the request's structured fields.
type gormLog struct {
	log           *logger.Logger
	level         gormLogger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger(log *logger.Logger, slowThreshold time.Duration) gormLogger.Interface {
	if slowThreshold <= 0 {
		slowThreshold = time.Second
	}
	return &gormLog{log: log.With("component", "gorm"), level: gormLogger.Warn, slowThreshold: slowThreshold}
}

func (g *gormLog) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *gormLog) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormLogger.Info {
		g.log.Info(msg, "args", args)
	}
}

func (g *gormLog) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormLogger.Warn {
		g.log.Warn(msg, "args", args)
	}
}

func (g *gormLog) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormLogger.Error {
		g.log.Error(msg, "args", args)
	}
}

func (g *gormLog) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= gormLogger.Error &&
		!errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey):
		sql, rows := fc()
		g.log.Error("sql error", "error", err, "elapsed_ms", elapsed.Milliseconds(), "rows", rows, "sql", sql)
	case elapsed > g.slowThreshold && g.level >= gormLogger.Warn:
		sql, rows := fc()
		g.log.Warn("slow sql", "elapsed_ms", elapsed.Milliseconds(), "rows", rows, "sql", sql)
	case g.level >= gormLogger.Info:
		sql, rows := fc()
		g.log.Debug("sql", "elapsed_ms", elapsed.Milliseconds(), "rows", rows, "sql", sql)
	}
}
