package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for one pipeline run.
type Config struct {
	DataDir    string           `yaml:"data_dir"`
	AWS        AWSConfig        `yaml:"aws"`
	Reddit     RedditConfig     `yaml:"reddit"`
	Collection CollectionConfig `yaml:"collection"`
	Apps       []AppTarget      `yaml:"apps"`
}

// AWSConfig configures the S3 backup destination.
type AWSConfig struct {
	Region     string `yaml:"region"`
	BucketName string `yaml:"bucket_name"`
}

// RedditConfig carries the API credentials, resolved from the environment.
type RedditConfig struct {
	ClientID     string `yaml:"-"`
	ClientSecret string `yaml:"-"`
	UserAgent    string `yaml:"user_agent"`
}

// CollectionConfig tunes the collection engine.
type CollectionConfig struct {
	ItemDelay       string `yaml:"item_delay"`
	LookbackDays    int    `yaml:"lookback_days"`
	RunTimeout      string `yaml:"run_timeout"`
	AppStorePages   int    `yaml:"app_store_pages"`
	AppStoreCountry string `yaml:"app_store_country"`
}

// ParseItemDelay returns the per-item delay as a time.Duration.
func (c CollectionConfig) ParseItemDelay() time.Duration {
	d, err := time.ParseDuration(c.ItemDelay)
	if err != nil {
		return 50 * time.Millisecond
	}
	return d
}

// ParseRunTimeout returns the per-target run timeout.
func (c CollectionConfig) ParseRunTimeout() time.Duration {
	d, err := time.ParseDuration(c.RunTimeout)
	if err != nil {
		return 2 * time.Hour
	}
	return d
}

// AppTarget is one app tracked across all three sources.
type AppTarget struct {
	AppName     string `yaml:"app_name"`
	AppPath     string `yaml:"app_path"`
	AppStoreID  string `yaml:"app_store_id"`
	PlayStoreID string `yaml:"play_store_id"`
	Subreddit   string `yaml:"subreddit_name"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DataDir: "./data",
		AWS:     AWSConfig{Region: "us-east-1"},
		Reddit:  RedditConfig{UserAgent: "reviewflow-client/1.0 (+https://github.com/spacesedan/reviewflow)"},
		Collection: CollectionConfig{
			ItemDelay:       "50ms",
			LookbackDays:    365,
			RunTimeout:      "2h",
			AppStorePages:   10,
			AppStoreCountry: "us",
		},
	}
}

// Load reads the YAML config, applies env overrides and resolves
// credentials. It fails before any remote call is made.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REVIEWFLOW_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.AWS.Region = v
	}
	if v := os.Getenv("AWS_BUCKET_NAME"); v != "" {
		cfg.AWS.BucketName = v
	}
	cfg.Reddit.ClientID = os.Getenv("REDDIT_CLIENT_ID")
	cfg.Reddit.ClientSecret = os.Getenv("REDDIT_CLIENT_SECRET")
}

// Validate checks everything a run depends on. Any error here is fatal to
// the whole run.
func (cfg *Config) Validate() error {
	if cfg.Reddit.ClientID == "" || cfg.Reddit.ClientSecret == "" {
		return fmt.Errorf("missing Reddit credentials: set REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET")
	}
	if len(cfg.Apps) == 0 {
		return fmt.Errorf("no apps configured")
	}
	for i, app := range cfg.Apps {
		if app.AppName == "" || app.AppPath == "" {
			return fmt.Errorf("apps[%d]: app_name and app_path are required", i)
		}
		if app.AppStoreID == "" {
			return fmt.Errorf("apps[%d] (%s): app_store_id is required", i, app.AppName)
		}
		if app.PlayStoreID == "" {
			return fmt.Errorf("apps[%d] (%s): play_store_id is required", i, app.AppName)
		}
		if app.Subreddit == "" {
			return fmt.Errorf("apps[%d] (%s): subreddit_name is required", i, app.AppName)
		}
	}
	return nil
}
