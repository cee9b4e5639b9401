package gorm

import (
	"fmt"
	"strings"
	"time"

	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
	gormlogger "gorm.io/gorm/logger"
)

// NewGormLogger returns a gorm logger that writes through the batch logger.
func NewGormLogger(level string) gormlogger.Interface {
	var gormLevel gormlogger.LogLevel
	switch strings.ToUpper(level) {
	case "ERROR":
		gormLevel = gormlogger.Error
	case "WARN":
		gormLevel = gormlogger.Warn
	case "INFO", "DEBUG":
		gormLevel = gormlogger.Info
	default:
		gormLevel = gormlogger.Silent
	}
	return gormlogger.New(gormWriter{}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormLevel,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// gormWriter redirects gorm output to the batch logger. Statement traces go to DEBUG.
type gormWriter struct{}

func (gormWriter) Printf(format string, v ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	if isStatement(msg) {
		logger.Debugf("[GORM] %s", msg)
		return
	}
	logger.Infof("[GORM] %s", msg)
}

func isStatement(msg string) bool {
	if !strings.Contains(msg, "[") || !strings.Contains(msg, "]") {
		return false
	}
	for _, kw := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}
