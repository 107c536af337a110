package treenode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// logrusLogger adapts a *logrus.Logger to gorm's logger.Interface, for
// production use rather than only under `go test`.
type logrusLogger struct {
	log          *logrus.Logger
	level        gormlogger.LogLevel
	slowThreshold time.Duration
}

// newLogrusLogger builds a gorm logger.Interface backed by l, logging
// every query at Info and flagging anything slower than 200ms as a
// warning. Callers can narrow this with db.Logger.LogMode after
// construction.
func newLogrusLogger(l *logrus.Logger) gormlogger.Interface {
	return &logrusLogger{log: l, level: gormlogger.Info, slowThreshold: 200 * time.Millisecond}
}

func (g *logrusLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *logrusLogger) Info(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Info {
		g.log.WithContext(ctx).Infof(msg, args...)
	}
}

func (g *logrusLogger) Warn(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Warn {
		g.log.WithContext(ctx).Warnf(msg, args...)
	}
}

func (g *logrusLogger) Error(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Error {
		g.log.WithContext(ctx).Errorf(msg, args...)
	}
}

func (g *logrusLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	entry := g.log.WithContext(ctx).WithFields(logrus.Fields{
		"elapsed_ms": float64(elapsed.Nanoseconds()) / 1e6,
		"rows":       rows,
	})

	switch {
	case err != nil && g.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		entry.WithError(err).Error(sql)
	case g.slowThreshold != 0 && elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		entry.Warn(fmt.Sprintf("SLOW SQL >= %s: %s", g.slowThreshold, sql))
	case g.level >= gormlogger.Info:
		entry.Info(sql)
	}
}
