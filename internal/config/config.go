package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	SnatchBlackhole    = "blackhole"
	SnatchTransmission = "transmission"

	ProviderFanzub  = "fanzub"
	ProviderTorznab = "torznab"
)

type Config struct {
	App struct {
		DataPath string `yaml:"data_path"`
		Debug    bool   `yaml:"debug"`
		LogFile  string `yaml:"log_file"`
		Port     int    `yaml:"port"` // status API, 0 disables it
	} `yaml:"app"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Search struct {
		UseNZBs      bool   `yaml:"use_nzbs"`
		UseTorrents  bool   `yaml:"use_torrents"`
		CacheRefresh string `yaml:"cache_refresh"` // cron spec
		SnatchMethod string `yaml:"snatch_method"` // 'blackhole' or 'transmission'
		// Case-insensitive regexes; matching release names are never snatched.
		RejectPatterns []string `yaml:"reject_patterns"`
	} `yaml:"search"`

	Directories struct {
		NZB     string `yaml:"nzb"`
		Torrent string `yaml:"torrent"`
	} `yaml:"directories"`

	Acquisition struct {
		MinFreeSpaceMB uint64 `yaml:"min_free_space_mb"`
	} `yaml:"acquisition"`

	Providers []ProviderConfig `yaml:"providers"`

	Transmission TransmissionConfig `yaml:"transmission"`

	Notifications struct {
		Pushbullet struct {
			APIKey string `yaml:"api_key"`
		} `yaml:"pushbullet"`
	} `yaml:"notifications"`
}

type ProviderConfig struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"` // 'fanzub' or 'torznab'
	URL      string `yaml:"url"`
	APIKey   string `yaml:"api_key"`
	Enabled  bool   `yaml:"enabled"`
	Category string `yaml:"category"`
}

type TransmissionConfig struct {
	Host        string `yaml:"host"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	DownloadDir string `yaml:"download_dir"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.App.DataPath = "./data"
	cfg.App.Debug = false
	cfg.App.Port = 8585

	cfg.Database.Path = "./data/snatcher.db"

	cfg.Search.UseNZBs = true
	cfg.Search.UseTorrents = true
	cfg.Search.CacheRefresh = "@every 10m"
	cfg.Search.SnatchMethod = SnatchBlackhole
	cfg.Search.RejectPatterns = []string{`\bsample\b`, `\bhardsub`}

	cfg.Directories.NZB = "./data/nzb"
	cfg.Directories.Torrent = "./data/torrent"

	cfg.Transmission.Host = "localhost:9091"
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("SNATCHER_TRANSMISSION_HOST"); v != "" {
		cfg.Transmission.Host = v
	}
	if v := os.Getenv("SNATCHER_TRANSMISSION_USERNAME"); v != "" {
		cfg.Transmission.Username = v
	}
	if v := os.Getenv("SNATCHER_TRANSMISSION_PASSWORD"); v != "" {
		cfg.Transmission.Password = v
	}
	if v := os.Getenv("SNATCHER_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			cfg.App.Debug = debug
		}
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Search.SnatchMethod {
	case SnatchBlackhole, SnatchTransmission:
	default:
		return fmt.Errorf("unsupported snatch method %q", c.Search.SnatchMethod)
	}

	for _, pattern := range c.Search.RejectPatterns {
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			return fmt.Errorf("invalid reject pattern %q: %w", pattern, err)
		}
	}

	names := make(map[string]bool)
	for _, p := range c.Providers {
		switch p.Type {
		case ProviderFanzub, ProviderTorznab:
		default:
			return fmt.Errorf("provider %q: unsupported type %q", p.Name, p.Type)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("provider of type %q has no name", p.Type)
		}
		if p.URL == "" {
			return fmt.Errorf("provider %q: url is required", p.Name)
		}
		key := strings.ToLower(p.Name)
		if names[key] {
			return fmt.Errorf("provider %q is configured twice", p.Name)
		}
		names[key] = true
	}

	if c.Search.UseNZBs && c.Directories.NZB == "" {
		return fmt.Errorf("directories.nzb is required when use_nzbs is enabled")
	}
	if c.Search.UseTorrents && c.Search.SnatchMethod == SnatchBlackhole && c.Directories.Torrent == "" {
		return fmt.Errorf("directories.torrent is required for blackhole torrent snatching")
	}
	if c.Search.SnatchMethod == SnatchTransmission && c.Transmission.Host == "" {
		return fmt.Errorf("transmission.host is required when snatch_method is transmission")
	}
	return nil
}

// EnsureDirectories creates the data and watch directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.App.DataPath, c.Directories.NZB, c.Directories.Torrent} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// EnabledProviders returns the providers switched on in the config, in order.
func (c *Config) EnabledProviders() []ProviderConfig {
	var enabled []ProviderConfig
	for _, p := range c.Providers {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	return enabled
}
