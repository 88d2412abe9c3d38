package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "dyscraper/pkg/errors"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Database.DSN = "user:pass@tcp(localhost:3306)/media"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultUserAgent, cfg.Douyin.UserAgent)
	assert.Equal(t, "https://www.douyin.com", cfg.Douyin.BaseURL)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "oss", cfg.Archive.Provider)
	assert.Equal(t, "datas-aigc", cfg.Archive.Bucket)
	assert.Equal(t, "aigc", cfg.Archive.Namespace)
	assert.Equal(t, "short_play", cfg.Archive.Category)
	assert.Equal(t, 18, cfg.Crawl.PageSize)
	assert.Equal(t, 1, cfg.Crawl.Concurrency)
	assert.Equal(t, time.Second, cfg.Crawl.MinDelay)
	assert.Equal(t, 3*time.Second, cfg.Crawl.MaxDelay)
	assert.True(t, cfg.Download.Images)
	assert.Zero(t, cfg.Download.RequestsPerSecond)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Douyin.Cookie)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DYSCRAPER_COOKIE", "sessionid=abc")
	t.Setenv("DYSCRAPER_DB_DRIVER", "postgres")
	t.Setenv("DYSCRAPER_DB_DSN", "host=localhost dbname=media")
	t.Setenv("DYSCRAPER_OUTPUT_DIR", "/tmp/dy")
	t.Setenv("DYSCRAPER_CONCURRENCY", "4")
	t.Setenv("DYSCRAPER_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("DYSCRAPER_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "sessionid=abc", cfg.Douyin.Cookie)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=localhost dbname=media", cfg.Database.DSN)
	assert.Equal(t, "/tmp/dy", cfg.Download.OutputDir)
	assert.Equal(t, 4, cfg.Crawl.Concurrency)
	assert.Equal(t, 2.5, cfg.Download.RequestsPerSecond)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidNumber(t *testing.T) {
	t.Setenv("DYSCRAPER_CONCURRENCY", "many")

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestLegacyOSSCredentials(t *testing.T) {
	t.Setenv("OSS_ACCESS_KEY_AIGC", "legacy-id")
	t.Setenv("OSS_ACCESS_KEY_SECRET_AIGC", "legacy-secret")
	t.Setenv("OSS_ENDPOINT", "oss-cn-hangzhou.aliyuncs.com")

	t.Run("fills empty fields", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromEnv())
		assert.Equal(t, "legacy-id", cfg.Archive.AccessKeyID)
		assert.Equal(t, "legacy-secret", cfg.Archive.AccessKeySecret)
		assert.Equal(t, "oss-cn-hangzhou.aliyuncs.com", cfg.Archive.Endpoint)
	})

	t.Run("does not override explicit values", func(t *testing.T) {
		t.Setenv("DYSCRAPER_ARCHIVE_ACCESS_KEY_ID", "explicit-id")
		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromEnv())
		assert.Equal(t, "explicit-id", cfg.Archive.AccessKeyID)
	})

	t.Run("ignored for s3", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Archive.Provider = "s3"
		require.NoError(t, cfg.LoadFromEnv())
		assert.Empty(t, cfg.Archive.AccessKeyID)
	})
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
douyin:
  cookie: "ttwid=1; sessionid=2"
  signer_url: http://localhost:8787/sign
database:
  driver: sqlite
  dsn: /var/lib/dyscraper/media.db
archive:
  provider: s3
  bucket: media
  region: us-east-1
crawl:
  min_delay: 500ms
  max_delay: 2s
  concurrency: 2
download:
  output_dir: /data/dy
  requests_per_second: 1
  images: false
creators:
  - name: alice
    url: https://www.douyin.com/user/MS4wLjABAAAA-alice
  - name: bob
    url: https://v.douyin.com/iRNBho6u/
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "ttwid=1; sessionid=2", cfg.Douyin.Cookie)
	assert.Equal(t, "http://localhost:8787/sign", cfg.Douyin.SignerURL)
	assert.Equal(t, DefaultUserAgent, cfg.Douyin.UserAgent)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "s3", cfg.Archive.Provider)
	assert.Equal(t, 500*time.Millisecond, cfg.Crawl.MinDelay)
	assert.Equal(t, 2*time.Second, cfg.Crawl.MaxDelay)
	assert.Equal(t, 2, cfg.Crawl.Concurrency)
	assert.Equal(t, 18, cfg.Crawl.PageSize)
	assert.False(t, cfg.Download.Images)
	require.Len(t, cfg.Creators, 2)
	assert.Equal(t, "bob", cfg.Creators[1].Name)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile("/nonexistent/config.yaml"))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawl: [unclosed"), 0644))
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, "unsupported database driver"},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }, "database dsn is required"},
		{"unknown provider", func(c *Config) { c.Archive.Provider = "gcs" }, "unsupported archive provider"},
		{"missing bucket", func(c *Config) { c.Archive.Bucket = "" }, "archive bucket is required"},
		{"inverted delays", func(c *Config) { c.Crawl.MaxDelay = 0 }, "crawl delays"},
		{"zero concurrency", func(c *Config) { c.Crawl.Concurrency = 0 }, "concurrency must be positive"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "invalid log level"},
		{"incomplete creator", func(c *Config) {
			c.Creators = []CreatorConfig{{Name: "alice"}}
		}, "creator 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNoCookieIsNotAValidationError(t *testing.T) {
	cfg := validConfig()
	cfg.Douyin.Cookie = ""
	assert.NoError(t, cfg.Validate())
}

func TestRequireCookie(t *testing.T) {
	cfg := validConfig()

	cfg.Douyin.Cookie = "   "
	err := cfg.RequireCookie()
	require.Error(t, err)
	assert.True(t, errs.IsFatal(err))

	cfg.Douyin.Cookie = "sessionid=abc"
	assert.NoError(t, cfg.RequireCookie())
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := validConfig()
	err := cfg.MergeCommandLineFlags(map[string]interface{}{
		"cookie":      "flag-cookie",
		"output":      "/flag/out",
		"concurrency": 3,
		"log-level":   "warn",
		"no-images":   true,
		"creators":    []string{"alice=https://www.douyin.com/user/abc", " bob = https://v.douyin.com/xyz/ "},
	})
	require.NoError(t, err)

	assert.Equal(t, "flag-cookie", cfg.Douyin.Cookie)
	assert.Equal(t, "/flag/out", cfg.Download.OutputDir)
	assert.Equal(t, 3, cfg.Crawl.Concurrency)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.False(t, cfg.Download.Images)
	assert.Equal(t, []CreatorConfig{
		{Name: "alice", URL: "https://www.douyin.com/user/abc"},
		{Name: "bob", URL: "https://v.douyin.com/xyz/"},
	}, cfg.Creators)

	// zero values leave the config alone
	require.NoError(t, cfg.MergeCommandLineFlags(map[string]interface{}{"concurrency": 0, "cookie": ""}))
	assert.Equal(t, 3, cfg.Crawl.Concurrency)
	assert.Equal(t, "flag-cookie", cfg.Douyin.Cookie)
}

func TestParseCreators(t *testing.T) {
	_, err := ParseCreators([]string{"no-separator"})
	assert.Error(t, err)

	_, err = ParseCreators([]string{"=https://v.douyin.com/x/"})
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := validConfig()
	cfg.Creators = []CreatorConfig{{Name: "alice", URL: "https://www.douyin.com/user/abc"}}
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.Database.DSN, loaded.Database.DSN)
	assert.Equal(t, cfg.Creators, loaded.Creators)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  dsn: file-dsn\n  driver: sqlite\ndownload:\n  output_dir: /from/file\n"), 0644))
	t.Setenv("DYSCRAPER_OUTPUT_DIR", "/from/env")

	cfg, err := Load(path, map[string]interface{}{"db-dsn": "flag-dsn"})
	require.NoError(t, err)

	assert.Equal(t, "flag-dsn", cfg.Database.DSN)
	assert.Equal(t, "/from/env", cfg.Download.OutputDir)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadValidationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: oracle\n"), 0644))

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}
