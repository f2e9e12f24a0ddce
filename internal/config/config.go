package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

const (
	DefaultListen        = "127.0.0.1:8080"
	DefaultTimezone      = "Asia/Seoul"
	DefaultLanguage      = "ko"
	DefaultLogLevel      = "info"
	DefaultDataDir       = "data"
	DefaultFileName      = "care-records.json"
	DefaultRefreshCron   = "0 0 * * *"
	DefaultRemoteTimeout = 10
	DefaultRecentCount   = 3
	DefaultScheduleCount = 6
)

// RemoteConfig describes the remote document store used as a mirror.
type RemoteConfig struct {
	// BaseURL is the root of the upload/download API. Empty disables the mirror.
	BaseURL string `yaml:"base_url" json:"base_url"`
	// TimeoutSeconds bounds each upload/download call.
	TimeoutSeconds int `yaml:"timeout" json:"timeout"`
}

// Timeout returns the per-call remote timeout.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone that defines "today" (e.g. "Asia/Seoul").
	Timezone string `yaml:"timezone" json:"timezone"`

	// Language is the default message language ("ko" or "en").
	Language string `yaml:"language" json:"language"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// DataDir and FileName locate the local JSON copy. FileName is also the
	// document name on the remote store.
	DataDir  string `yaml:"data_dir" json:"data_dir"`
	FileName string `yaml:"file_name" json:"file_name"`

	Remote RemoteConfig `yaml:"remote" json:"remote"`

	// RefreshCron is a cron expression for the expiry refresh job.
	// Empty disables the job.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// RecentCount is how many recently saved records the UI lists.
	RecentCount int `yaml:"recent_count" json:"recent_count"`

	// ScheduleCount is the default number of projected eligibility dates.
	ScheduleCount int `yaml:"schedule_count" json:"schedule_count"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:   DefaultListen,
		Timezone: DefaultTimezone,
		Language: DefaultLanguage,
		LogLevel: DefaultLogLevel,
		DataDir:  DefaultDataDir,
		FileName: DefaultFileName,
		Remote: RemoteConfig{
			TimeoutSeconds: DefaultRemoteTimeout,
		},
		RefreshCron:   DefaultRefreshCron,
		RecentCount:   DefaultRecentCount,
		ScheduleCount: DefaultScheduleCount,
		BasicAuth:     nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	switch c.Language {
	case "ko", "en":
	default:
		c.Language = DefaultLanguage
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.FileName == "" {
		c.FileName = DefaultFileName
	}
	if c.Remote.TimeoutSeconds <= 0 {
		c.Remote.TimeoutSeconds = DefaultRemoteTimeout
	}
	if c.RecentCount <= 0 {
		c.RecentCount = DefaultRecentCount
	}
	if c.ScheduleCount <= 0 {
		c.ScheduleCount = DefaultScheduleCount
	}
}

// DataPath is the full path of the local JSON copy.
func (c *Config) DataPath() string {
	return filepath.Join(c.DataDir, c.FileName)
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC, err
	}
	return loc, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	// An explicit empty refresh disables the job; only a missing key gets
	// the default.
	if !hasKey(data, "refresh") {
		cfg.RefreshCron = DefaultRefreshCron
	}
	cfg.Normalize()

	return &cfg, nil
}

func hasKey(data []byte, key string) bool {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return false
	}
	_, ok := raw[key]
	return ok
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".carelog-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
