package mcpservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ggoodman/mcp-toolkit-go/mcp"
	"github.com/ggoodman/mcp-toolkit-go/sessions"
)

// ErrInvalidLoggingLevel is returned for levels outside the syslog set.
var ErrInvalidLoggingLevel = errors.New("invalid logging level")

// Levels above slog.LevelError follow the same +4 spacing slog uses, so
// "critical" lines up with the CRITICAL level accepted by config.
var slogLevels = map[mcp.LoggingLevel]slog.Level{
	mcp.LoggingLevelDebug:     slog.LevelDebug,
	mcp.LoggingLevelInfo:      slog.LevelInfo,
	mcp.LoggingLevelNotice:    slog.LevelInfo + 2,
	mcp.LoggingLevelWarning:   slog.LevelWarn,
	mcp.LoggingLevelError:     slog.LevelError,
	mcp.LoggingLevelCritical:  slog.LevelError + 4,
	mcp.LoggingLevelAlert:     slog.LevelError + 8,
	mcp.LoggingLevelEmergency: slog.LevelError + 12,
}

// SlogLevel maps a protocol logging level onto slog.
func SlogLevel(level mcp.LoggingLevel) (slog.Level, error) {
	l, ok := slogLevels[level]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLoggingLevel, level)
	}
	return l, nil
}

// NewSlogLevelVarLogging returns a LoggingCapability that sets lv. Handlers
// built on the same LevelVar pick the change up immediately.
func NewSlogLevelVarLogging(lv *slog.LevelVar) LoggingCapability {
	return levelVarLogging{lv}
}

type levelVarLogging struct{ lv *slog.LevelVar }

func (l levelVarLogging) SetLevel(ctx context.Context, _ sessions.Session, level mcp.LoggingLevel) error {
	sl, err := SlogLevel(level)
	if err != nil {
		return err
	}
	if l.lv != nil {
		l.lv.Set(sl)
	}
	return nil
}
