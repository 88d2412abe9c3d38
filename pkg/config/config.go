package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	errs "dyscraper/pkg/errors"
)

// DefaultUserAgent is the desktop browser identity sent with every request
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"

// Config holds all configuration options for the archiver
type Config struct {
	Douyin   DouyinConfig    `yaml:"douyin" json:"douyin"`
	Database DatabaseConfig  `yaml:"database" json:"database"`
	Archive  ArchiveConfig   `yaml:"archive" json:"archive"`
	Crawl    CrawlConfig     `yaml:"crawl" json:"crawl"`
	Download DownloadConfig  `yaml:"download" json:"download"`
	Logging  LoggingConfig   `yaml:"logging" json:"logging"`
	Creators []CreatorConfig `yaml:"creators" json:"creators"`
}

// DouyinConfig holds the web API session settings
type DouyinConfig struct {
	Cookie    string `yaml:"cookie" json:"cookie"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	SignerURL string `yaml:"signer_url" json:"signer_url"`
}

// DatabaseConfig selects the relational store
type DatabaseConfig struct {
	Driver      string `yaml:"driver" json:"driver"`
	DSN         string `yaml:"dsn" json:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate" json:"auto_migrate"`
}

// ArchiveConfig selects the object storage backend and key layout
type ArchiveConfig struct {
	Provider        string `yaml:"provider" json:"provider"`
	Bucket          string `yaml:"bucket" json:"bucket"`
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	Region          string `yaml:"region" json:"region"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret" json:"access_key_secret"`
	Namespace       string `yaml:"namespace" json:"namespace"`
	Category        string `yaml:"category" json:"category"`
}

// CrawlConfig holds listing walk settings
type CrawlConfig struct {
	PageSize    int           `yaml:"page_size" json:"page_size"`
	MinDelay    time.Duration `yaml:"min_delay" json:"min_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
	Concurrency int           `yaml:"concurrency" json:"concurrency"`
}

// DownloadConfig holds media download settings
type DownloadConfig struct {
	OutputDir         string  `yaml:"output_dir" json:"output_dir"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Images            bool    `yaml:"images" json:"images"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	File       string `yaml:"file" json:"file"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// CreatorConfig is one worklist entry
type CreatorConfig struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Douyin: DouyinConfig{
			UserAgent: DefaultUserAgent,
			BaseURL:   "https://www.douyin.com",
		},
		Database: DatabaseConfig{
			Driver:      "mysql",
			AutoMigrate: true,
		},
		Archive: ArchiveConfig{
			Provider:  "oss",
			Bucket:    "datas-aigc",
			Namespace: "aigc",
			Category:  "short_play",
		},
		Crawl: CrawlConfig{
			PageSize:    18,
			MinDelay:    1 * time.Second,
			MaxDelay:    3 * time.Second,
			Concurrency: 1,
		},
		Download: DownloadConfig{
			OutputDir: "./downloads",
			Images:    true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}
}

// LoadFromEnv overrides settings from DYSCRAPER_* variables and the
// legacy OSS credential variables
func (c *Config) LoadFromEnv() error {
	setString(&c.Douyin.Cookie, "DYSCRAPER_COOKIE")
	setString(&c.Douyin.UserAgent, "DYSCRAPER_USER_AGENT")
	setString(&c.Douyin.BaseURL, "DYSCRAPER_BASE_URL")
	setString(&c.Douyin.SignerURL, "DYSCRAPER_SIGNER_URL")

	setString(&c.Database.Driver, "DYSCRAPER_DB_DRIVER")
	setString(&c.Database.DSN, "DYSCRAPER_DB_DSN")

	setString(&c.Archive.Provider, "DYSCRAPER_ARCHIVE_PROVIDER")
	setString(&c.Archive.Bucket, "DYSCRAPER_ARCHIVE_BUCKET")
	setString(&c.Archive.Endpoint, "DYSCRAPER_ARCHIVE_ENDPOINT")
	setString(&c.Archive.Region, "DYSCRAPER_ARCHIVE_REGION")
	setString(&c.Archive.AccessKeyID, "DYSCRAPER_ARCHIVE_ACCESS_KEY_ID")
	setString(&c.Archive.AccessKeySecret, "DYSCRAPER_ARCHIVE_ACCESS_KEY_SECRET")

	// Credentials used by the deployment this tool replaced
	if c.Archive.Provider == "oss" {
		fillString(&c.Archive.AccessKeyID, "OSS_ACCESS_KEY_AIGC")
		fillString(&c.Archive.AccessKeySecret, "OSS_ACCESS_KEY_SECRET_AIGC")
		fillString(&c.Archive.Endpoint, "OSS_ENDPOINT")
	}

	setString(&c.Download.OutputDir, "DYSCRAPER_OUTPUT_DIR")
	setString(&c.Logging.Level, "DYSCRAPER_LOG_LEVEL")
	setString(&c.Logging.File, "DYSCRAPER_LOG_FILE")

	if v := os.Getenv("DYSCRAPER_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DYSCRAPER_CONCURRENCY: %w", err)
		}
		c.Crawl.Concurrency = n
	}
	if v := os.Getenv("DYSCRAPER_REQUESTS_PER_SECOND"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DYSCRAPER_REQUESTS_PER_SECOND: %w", err)
		}
		c.Download.RequestsPerSecond = rps
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func fillString(dst *string, key string) {
	if *dst == "" {
		setString(dst, key)
	}
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".dyscraper.yaml",
		".dyscraper.yml",
		filepath.Join(home, ".config", "dyscraper", "config.yaml"),
		filepath.Join(home, ".config", "dyscraper", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. The cookie is checked
// separately by RequireCookie since it may come from the keyring.
func (c *Config) Validate() error {
	var problems []error

	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		problems = append(problems, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		problems = append(problems, errors.New("database dsn is required"))
	}

	switch c.Archive.Provider {
	case "oss", "s3":
	default:
		problems = append(problems, fmt.Errorf("unsupported archive provider %q", c.Archive.Provider))
	}
	if c.Archive.Bucket == "" {
		problems = append(problems, errors.New("archive bucket is required"))
	}

	if c.Crawl.PageSize <= 0 {
		problems = append(problems, errors.New("page size must be positive"))
	}
	if c.Crawl.MinDelay < 0 || c.Crawl.MaxDelay < c.Crawl.MinDelay {
		problems = append(problems, errors.New("crawl delays must satisfy 0 <= min_delay <= max_delay"))
	}
	if c.Crawl.Concurrency <= 0 {
		problems = append(problems, errors.New("concurrency must be positive"))
	}

	if c.Download.OutputDir == "" {
		problems = append(problems, errors.New("output directory is required"))
	}
	if c.Download.RequestsPerSecond < 0 {
		problems = append(problems, errors.New("requests per second cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		problems = append(problems, errors.New("invalid log level"))
	}

	for i, cr := range c.Creators {
		if cr.Name == "" || cr.URL == "" {
			problems = append(problems, fmt.Errorf("creator %d needs both name and url", i))
		}
	}

	return errors.Join(problems...)
}

// RequireCookie fails with a precondition error when no session cookie
// is configured
func (c *Config) RequireCookie() error {
	if strings.TrimSpace(c.Douyin.Cookie) == "" {
		return errs.New(errs.ErrorTypePrecondition,
			"no Douyin cookie configured; set DYSCRAPER_COOKIE, douyin.cookie or run 'dyscraper auth login'")
	}
	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) error {
	if v, ok := flags["cookie"].(string); ok && v != "" {
		c.Douyin.Cookie = v
	}
	if v, ok := flags["signer-url"].(string); ok && v != "" {
		c.Douyin.SignerURL = v
	}
	if v, ok := flags["db-dsn"].(string); ok && v != "" {
		c.Database.DSN = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Download.OutputDir = v
	}
	if v, ok := flags["concurrency"].(int); ok && v > 0 {
		c.Crawl.Concurrency = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["no-images"].(bool); ok && v {
		c.Download.Images = false
	}
	if v, ok := flags["creators"].([]string); ok && len(v) > 0 {
		creators, err := ParseCreators(v)
		if err != nil {
			return err
		}
		c.Creators = creators
	}
	return nil
}

// ParseCreators parses name=url pairs
func ParseCreators(pairs []string) ([]CreatorConfig, error) {
	creators := make([]CreatorConfig, 0, len(pairs))
	for _, p := range pairs {
		name, url, ok := strings.Cut(p, "=")
		name, url = strings.TrimSpace(name), strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("invalid creator %q, want name=url", p)
		}
		creators = append(creators, CreatorConfig{Name: name, URL: url})
	}
	return creators, nil
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".dyscraper.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.MergeCommandLineFlags(flags); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
