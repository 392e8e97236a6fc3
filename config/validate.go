package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/ggoodman/mcp-toolkit-go/mcperr"
)

func invalid(key, message string) error {
	return mcperr.Configuration(message, key)
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("url", fmt.Sprintf("Invalid URL: %q", raw))
	}
	return nil
}

// ValidatePort accepts ints and numeric strings in 1..65535.
func ValidatePort(v any) error {
	var n int
	switch p := v.(type) {
	case int:
		n = p
	case int64:
		n = int(p)
	case float64:
		n = int(p)
	case string:
		var err error
		if n, err = strconv.Atoi(p); err != nil {
			return invalid("port", fmt.Sprintf("Invalid port: %q", p))
		}
	default:
		return invalid("port", fmt.Sprintf("Invalid port: %v", v))
	}
	if n < 1 || n > 65535 {
		return invalid("port", fmt.Sprintf("Port out of range: %d", n))
	}
	return nil
}

// ValidateLogLevel accepts DEBUG, INFO, WARNING, ERROR and CRITICAL in any
// case.
func ValidateLogLevel(level string) error {
	if _, err := ParseLogLevel(level); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a level name onto slog. CRITICAL maps to LevelError+4.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "CRITICAL":
		return slog.LevelError + 4, nil
	}
	return 0, invalid("log_level", fmt.Sprintf("Invalid log level: %q", level))
}
