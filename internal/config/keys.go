package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// check validates a raw value and returns its normalized form.
type check func(value string) (string, error)

// setting is a known configuration key.
type setting struct {
	def   string
	check check
}

// settings lists every key with its default. config_dir and state_dir are
// filled in by defaults from the XDG base directories.
var settings = map[string]setting{
	"config_dir": {},
	"state_dir":  {},

	"runner":     {"ansible-playbook", nonBlank},
	"inventory":  {"inventory/hosts.ini", nonBlank},
	"playbook":   {"sites.yml", nonBlank},
	"workdir":    {"", nil},
	"extra_args": {"", nil},

	"cancel_grace":                  {"5s", duration},
	"clear_selection_after_install": {"false", boolean},

	"history_enabled": {"true", boolean},
	"history_limit":   {"20", positiveInt},

	"hooks_enabled":      {"true", boolean},
	"hooks_dir":          {"", nil},
	"hooks_timeout":      {"30s", duration},
	"hooks_failure_mode": {"warn", oneOf("ignore", "warn")},

	"logging_enabled":   {"false", boolean},
	"logging_level":     {"info", oneOf("debug", "error", "info", "warn")},
	"logging_max_files": {"10", positiveInt},

	"debug": {"false", boolean},
}

// defaults returns the built-in value of every known key.
func defaults() map[string]string {
	home, _ := os.UserHomeDir()
	xdg := func(env string, fallback ...string) string {
		if dir := os.Getenv(env); dir != "" {
			return dir
		}
		return filepath.Join(append([]string{home}, fallback...)...)
	}

	values := make(map[string]string, len(settings))
	for key, s := range settings {
		values[key] = s.def
	}
	values["config_dir"] = filepath.Join(xdg("XDG_CONFIG_HOME", ".config"), "cloudcurio")
	values["state_dir"] = filepath.Join(xdg("XDG_STATE_HOME", ".local", "state"), "cloudcurio")
	return values
}

func nonBlank(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("must not be blank")
	}
	return trimmed, nil
}

func positiveInt(value string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return "", fmt.Errorf("must be a positive integer")
	}
	return strconv.Itoa(n), nil
}

func duration(value string) (string, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d < 0 {
		return "", fmt.Errorf("must be a duration such as 5s or 1m")
	}
	return d.String(), nil
}

// boolean accepts 1/0, true/false, yes/no and on/off.
func boolean(value string) (string, error) {
	b, ok := parseBool(value)
	if !ok {
		return "", fmt.Errorf("must be one of 1, true, yes, on, 0, false, no, off")
	}
	return strconv.FormatBool(b), nil
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

// oneOf accepts the listed values case-insensitively.
func oneOf(allowed ...string) check {
	return func(value string) (string, error) {
		v := strings.ToLower(strings.TrimSpace(value))
		for _, a := range allowed {
			if v == a {
				return v, nil
			}
		}
		return "", fmt.Errorf("must be one of: %s", strings.Join(allowed, ", "))
	}
}
