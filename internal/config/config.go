// Package config provides configuration loading.
//
// Values are resolved in this order: built-in defaults, CLOUDCURIO_* environment
// variables, the TOML config file, then the environment again so it always wins.
// Command-line flags are applied last through Set. Invalid values fall back to
// the default with a warning.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cloudcurio/cloudcurio-installer/internal/colors"
	"github.com/pelletier/go-toml/v2"
)

const (
	// FileModeDir is the permission for directories (rwxr-xr-x)
	FileModeDir os.FileMode = 0755
	// FileModeFile is the permission for data files (rw-r--r--)
	FileModeFile os.FileMode = 0644

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "CLOUDCURIO_"
	// PathEnv names an explicit config file.
	PathEnv = EnvPrefix + "CONFIG_PATH"
)

var (
	mu       sync.RWMutex
	values   map[string]string
	builtins map[string]string
)

// Load resolves the configuration from scratch.
func Load() {
	mu.Lock()
	defer mu.Unlock()

	builtins = defaults()
	values = make(map[string]string, len(builtins))
	for k, v := range builtins {
		values[k] = v
	}
	applyEnv(values)
	applyFile(values)
	applyEnv(values)
	for k, v := range values {
		values[k] = normalize(k, v)
	}
	if values["state_dir"] == "" {
		values["state_dir"] = filepath.Join(os.TempDir(), "cloudcurio")
	}
}

// applyEnv copies CLOUDCURIO_<KEY> variables into dst.
func applyEnv(dst map[string]string) {
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) || name == PathEnv {
			continue
		}
		dst[strings.ToLower(strings.TrimPrefix(name, EnvPrefix))] = value
	}
}

// filePath is the config file to read: PathEnv, or config.toml in config_dir.
func filePath(configDir string) string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "config.toml")
}

// applyFile merges the TOML config file into dst. A missing file is fine; an
// unreadable or malformed one is reported and skipped.
func applyFile(dst map[string]string) {
	path := filePath(dst["config_dir"])
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) || os.Getenv(PathEnv) != "" {
			colors.Warning(fmt.Sprintf("unable to read config file %s: %v", path, err))
		}
		return
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		colors.Warning(fmt.Sprintf("unable to parse config file %s: %v", path, err))
		return
	}
	for k, v := range raw {
		key := strings.ToLower(k)
		s, ok := fromTOML(v)
		if !ok {
			colors.Warning(fmt.Sprintf("unsupported config value type for %s: %T", key, v))
			continue
		}
		dst[key] = s
	}
}

// fromTOML flattens a decoded TOML value. Arrays of strings become a
// space-separated list, as used by extra_args.
func fromTOML(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return "", false
			}
			parts[i] = s
		}
		return strings.Join(parts, " "), true
	}
	return "", false
}

// normalize runs the key's check. Empty and invalid values take the default.
func normalize(key, value string) string {
	s, known := settings[key]
	if !known || s.check == nil {
		return value
	}
	def := builtins[key]
	if value == "" {
		return def
	}
	normalized, err := s.check(value)
	if err != nil {
		colors.Warning(fmt.Sprintf("invalid %s value %q: %v; using default: %s", key, value, err, def))
		return def
	}
	return normalized
}

// Path returns the config file Load reads, whether or not it exists.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return filePath(values["config_dir"])
}

// Set overrides one key after Load, e.g. from a command-line flag.
func Set(key, value string) {
	mu.Lock()
	defer mu.Unlock()
	if values == nil {
		builtins = defaults()
		values = make(map[string]string)
	}
	key = strings.ToLower(key)
	values[key] = normalize(key, value)
}

// Get returns a value, or defaultValue for an unknown key.
func Get(key, defaultValue string) string {
	mu.RLock()
	defer mu.RUnlock()
	if v, ok := values[key]; ok {
		return v
	}
	return defaultValue
}

// GetInt returns a value as an integer, or defaultValue.
func GetInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(Get(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

// GetBool returns a value as a boolean, or defaultValue.
func GetBool(key string, defaultValue bool) bool {
	b, ok := parseBool(Get(key, ""))
	if !ok {
		return defaultValue
	}
	return b
}

// GetDuration returns a value as a duration, or defaultValue.
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(Get(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

// GetFields returns a whitespace-split value, e.g. extra_args.
func GetFields(key string) []string {
	return strings.Fields(Get(key, ""))
}

// Keys returns every set key in sorted order.
func Keys() []string {
	mu.RLock()
	defer mu.RUnlock()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dump renders the effective configuration as TOML, with numbers and
// booleans unquoted.
func Dump() ([]byte, error) {
	mu.RLock()
	typed := make(map[string]any, len(values))
	for k, v := range values {
		typed[k] = toTOML(v)
	}
	mu.RUnlock()

	data, err := toml.Marshal(typed)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

func toTOML(v string) any {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}
