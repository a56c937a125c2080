package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// DatasetBaseURL is the base URL under which timetable datasets are
	// published, e.g. "https://timetable.example.edu/data". The viewer
	// requests "<base>/timetable_<year>_<session>.json".
	DatasetBaseURL string `yaml:"dataset_base_url" json:"dataset_base_url"`

	// Year and Session select the default dataset when the request URL
	// carries no "y" / "s" parameters.
	Year    string `yaml:"year" json:"year"`
	Session string `yaml:"session" json:"session"`

	// Timezone is the IANA timezone used as the display zone for derived
	// occurrences (e.g. "Australia/Canberra").
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls which weekday is treated as the first day of the
	// week in calendar views. Supported values: "monday" (default), "sunday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// SessionStart is the first Monday of the session in "2006-01-02" form.
	// Teaching week numbers in the dataset are counted from this date.
	SessionStart string `yaml:"session_start" json:"session_start"`

	// RefreshCron is a cron-style schedule string (e.g. "*/30 * * * *")
	// for periodic dataset re-fetch.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir is where fetched dataset bodies and HTTP cache metadata
	// are stored.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Year:        "2025",
		Session:     "S1",
		Timezone:    "Australia/Canberra",
		WeekStart:   "monday",
		RefreshCron: "*/30 * * * *",
		CacheDir:    "/var/lib/ttview/cache",
		BasicAuth:   nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Year == "" {
		c.Year = "2025"
	}
	if c.Session == "" {
		c.Session = "S1"
	}
	if c.Timezone == "" {
		c.Timezone = "Australia/Canberra"
	}
	switch c.WeekStart {
	case "monday", "sunday":
		// ok
	default:
		c.WeekStart = "monday"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/30 * * * *"
	}
	if c.CacheDir == "" {
		c.CacheDir = "/var/lib/ttview/cache"
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (creating
// the parent directory, 0600 perms) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg alongside the error so the caller can decide.
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
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms,
// creating the parent directory as needed.
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

	tmp, err := os.CreateTemp(dir, ".ttview-config-*.tmp")
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

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
