package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAddr         = "127.0.0.1:3001"
	DefaultMetaCacheTTL = 24 * time.Hour
)

// GlobalConfig is the user's ~/.boardview/config.json. Empty fields fall
// back to the environment and then to built-in defaults.
type GlobalConfig struct {
	// DataDir holds uploads and the catalog.
	DataDir string `json:"dataDir,omitempty"`
	// Addr is the listen address for `boardview serve`.
	Addr string `json:"addr,omitempty"`
	// RedisURL enables the shared link-metadata cache (redis://host:port/db).
	RedisURL string `json:"redisUrl,omitempty"`
	// MetaCacheTTL is a Go duration string, e.g. "12h".
	MetaCacheTTL   string `json:"metaCacheTtl,omitempty"`
	MaxUploadBytes int64  `json:"maxUploadBytes,omitempty"`
}

// Settings is the effective configuration after defaults were applied.
type Settings struct {
	DataDir        string        `json:"dataDir"`
	Addr           string        `json:"addr"`
	RedisURL       string        `json:"redisUrl,omitempty"`
	MetaCacheTTL   time.Duration `json:"metaCacheTtl"`
	MaxUploadBytes int64         `json:"maxUploadBytes"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.boardview).
	if v := strings.TrimSpace(os.Getenv("BOARDVIEW_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".boardview"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultDataDir is <config dir>/data.
func DefaultDataDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// Keep the previous version next to it; a failed backup never blocks the save.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

// Environment variables read by Resolve.
const (
	EnvDataDir  = "BOARDVIEW_DIR"
	EnvAddr     = "BOARDVIEW_ADDR"
	EnvRedisURL = "BOARDVIEW_REDIS_URL"
)

// Resolve layers getenv over the config file over defaults. Flags are
// applied on top by the caller.
func (c *GlobalConfig) Resolve(getenv func(string) string) (Settings, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	dataDir, err := DefaultDataDir()
	if err != nil {
		return Settings{}, err
	}
	out := Settings{
		DataDir:        dataDir,
		Addr:           DefaultAddr,
		MetaCacheTTL:   DefaultMetaCacheTTL,
		MaxUploadBytes: DefaultMaxUploadBytes,
	}
	if c != nil {
		out.DataDir = firstNonEmpty(c.DataDir, out.DataDir)
		out.Addr = firstNonEmpty(c.Addr, out.Addr)
		out.RedisURL = strings.TrimSpace(c.RedisURL)
		if v := strings.TrimSpace(c.MetaCacheTTL); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Settings{}, fmt.Errorf("metaCacheTtl: %w", err)
			}
			out.MetaCacheTTL = d
		}
		if c.MaxUploadBytes > 0 {
			out.MaxUploadBytes = c.MaxUploadBytes
		}
	}
	out.DataDir = firstNonEmpty(getenv(EnvDataDir), out.DataDir)
	out.Addr = firstNonEmpty(getenv(EnvAddr), out.Addr)
	out.RedisURL = firstNonEmpty(getenv(EnvRedisURL), out.RedisURL)
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ConfigKeys lists the keys accepted by Set.
func ConfigKeys() []string {
	keys := []string{"dataDir", "addr", "redisUrl", "metaCacheTtl", "maxUploadBytes"}
	sort.Strings(keys)
	return keys
}

// Set assigns one config key from its string form. An empty value clears it.
func (c *GlobalConfig) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "dataDir":
		c.DataDir = value
	case "addr":
		c.Addr = value
	case "redisUrl":
		c.RedisURL = value
	case "metaCacheTtl":
		if value != "" {
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("metaCacheTtl: %w", err)
			}
		}
		c.MetaCacheTTL = value
	case "maxUploadBytes":
		if value == "" {
			c.MaxUploadBytes = 0
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("maxUploadBytes: expected a non-negative integer, got %q", value)
		}
		c.MaxUploadBytes = n
	default:
		return fmt.Errorf("unknown config key %q (expected one of %s)", key, strings.Join(ConfigKeys(), ", "))
	}
	return nil
}
