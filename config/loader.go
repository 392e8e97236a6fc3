package config

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ggoodman/mcp-toolkit-go/mcperr"
)

// Loader resolves keys from runtime values first, then from the environment
// variable named by the upper-cased key, then from the caller's default.
// Values loaded from files count as runtime values. A Loader is safe for
// concurrent use.
type Loader struct {
	mu     sync.RWMutex
	values map[string]any
	lookup func(string) (string, bool)
}

var _ Getter = (*Loader)(nil)

// NewLoader constructs an empty Loader backed by the process environment.
func NewLoader() *Loader {
	return &Loader{values: make(map[string]any), lookup: os.LookupEnv}
}

// Set stores a runtime value, shadowing the environment.
func (l *Loader) Set(key string, value any) *Loader {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values[key] = value
	return l
}

// Get returns the value for key or def when the key is unset everywhere.
func (l *Loader) Get(key string, def any) any {
	l.mu.RLock()
	v, ok := l.values[key]
	l.mu.RUnlock()
	if ok {
		return v
	}
	if s, ok := l.lookup(strings.ToUpper(key)); ok {
		return parseValue(s)
	}
	return def
}

// GetRequired returns the value for key or a CONFIG_MISSING error.
func (l *Loader) GetRequired(key string) (any, error) {
	v := l.Get(key, nil)
	if v == nil {
		return nil, mcperr.ConfigMissing(key)
	}
	return v, nil
}

// ValidateRequired reports the first missing key among keys. The error
// details list every missing key.
func (l *Loader) ValidateRequired(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if l.Get(k, nil) == nil {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return mcperr.ConfigMissing(missing[0]).WithDetail("missing_keys", missing)
}

// Snapshot returns a copy of the runtime values.
func (l *Loader) Snapshot() map[string]any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]any, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

// LoadEnvFile applies KEY=VALUE lines from a dotenv file to the process
// environment. Variables already set are left untouched. A missing file is
// not an error.
func (l *Loader) LoadEnvFile(path string) error {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read env file: %w", err)
	}
	sc := bufio.NewScanner(bytes.NewReader(b))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return mcperr.Configuration(fmt.Sprintf("Malformed line %d in %s", n, path), "")
		}
		key = strings.TrimSpace(key)
		val = unquote(strings.TrimSpace(val))
		if _, set := l.lookup(key); set {
			continue
		}
		if err := os.Setenv(key, val); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return sc.Err()
}

// LoadFile merges a JSON or YAML document into the runtime values. Top-level
// keys overwrite existing values.
func (l *Loader) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return mcperr.Configuration("Config file not found: "+path, "").WithCause(err)
		}
		return fmt.Errorf("read config file: %w", err)
	}
	values, err := decodeFile(path, b)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range values {
		l.values[k] = v
	}
	return nil
}

func decodeFile(path string, b []byte) (map[string]any, error) {
	values := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(b, &values); err != nil {
			return nil, mcperr.Configuration("Invalid JSON in "+path, "").WithCause(err)
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(b, &values); err != nil {
			return nil, mcperr.Configuration("Invalid YAML in "+path, "").WithCause(err)
		}
	default:
		return nil, mcperr.Configuration("Unsupported config file format: "+path, "")
	}
	return values, nil
}

func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "1":
		return true
	case "false", "no", "0":
		return false
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return s
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
