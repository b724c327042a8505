// Package config loads relay's settings from ~/.relay/config.json and RELAY_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const fileName = "config.json"

type Config struct {
	// Dir is the directory the config was loaded from.
	Dir string `mapstructure:"-"`

	Log         LogConfig         `mapstructure:"log"`
	DB          DBConfig          `mapstructure:"db"`
	Linking     LinkingConfig     `mapstructure:"linking"`
	Layout      LayoutConfig      `mapstructure:"layout"`
	Keys        KeysConfig        `mapstructure:"keys"`
	CrashReport CrashReportConfig `mapstructure:"crash_report"`
	Locale      string            `mapstructure:"locale"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LinkingConfig struct {
	// Addr is where the running client accepts URL-open requests. Empty
	// disables the listener.
	Addr          string        `mapstructure:"addr"`
	ListenerDelay time.Duration `mapstructure:"listener_delay"`
}

type LayoutConfig struct {
	// Tablet is auto|on|off.
	Tablet         string `mapstructure:"tablet"`
	TabletMinWidth int    `mapstructure:"tablet_min_width"`
}

type KeysConfig struct {
	Escape []string `mapstructure:"escape"`
	// Device is an optional evdev input device (Linux).
	Device string `mapstructure:"device"`
}

type CrashReportConfig struct {
	// OnError is enabled|disabled: what to do when the permission can't be read.
	OnError string `mapstructure:"on_error"`
}

// Dir returns the config directory. RELAY_CONFIG_DIR overrides ~/.relay so
// tests never touch the real one.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("RELAY_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".relay"), nil
}

// Load reads dir/config.json (optional) and RELAY_* env overrides on top of the
// defaults. An empty dir means Dir().
func Load(dir string) (Config, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		d, err := Dir()
		if err != nil {
			return Config{}, err
		}
		dir = d
	}

	v := viper.New()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(dir, "relay.log"))
	v.SetDefault("db.path", filepath.Join(dir, "relay.sqlite"))
	v.SetDefault("linking.addr", "127.0.0.1:7787")
	v.SetDefault("linking.listener_delay", "5s")
	v.SetDefault("layout.tablet", "auto")
	v.SetDefault("layout.tablet_min_width", 120)
	v.SetDefault("keys.escape", []string{"esc"})
	v.SetDefault("keys.device", "")
	v.SetDefault("crash_report.on_error", "enabled")
	v.SetDefault("locale", "en")

	v.SetConfigType("json")
	path := filepath.Join(dir, fileName)
	v.SetConfigFile(path)

	v.SetEnvPrefix("RELAY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Dir = dir
	if c.Linking.ListenerDelay < 0 {
		return Config{}, fmt.Errorf("linking.listener_delay must not be negative (got %s)", c.Linking.ListenerDelay)
	}
	return c, nil
}

// Path is the config file inside dir.
func Path(dir string) string {
	return filepath.Join(dir, fileName)
}
