package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aeoscan/aeoscan/internal/model"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// This test ensures that defaults are documented through tests and that changes
// to defaults are intentional (tests will fail if defaults change unexpectedly).
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	// Verify each default value explicitly
	// This serves as living documentation of the defaults
	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default CrawlDepth is 3", func(t *testing.T) {
		if cfg.CrawlDepth != 3 {
			t.Errorf("expected CrawlDepth to be 3, got %d", cfg.CrawlDepth)
		}
	})

	t.Run("default MaxPages is 50", func(t *testing.T) {
		if cfg.MaxPages != 50 {
			t.Errorf("expected MaxPages to be 50, got %d", cfg.MaxPages)
		}
	})

	t.Run("default BatchSize is 4", func(t *testing.T) {
		if cfg.BatchSize != 4 {
			t.Errorf("expected BatchSize to be 4, got %d", cfg.BatchSize)
		}
	})

	t.Run("default EvidenceMode is extract-only", func(t *testing.T) {
		if cfg.EvidenceMode != model.EvidenceModeExtractOnly {
			t.Errorf("expected extract-only evidence mode, got %q", cfg.EvidenceMode)
		}
	})

	t.Run("default SiteType is marketing", func(t *testing.T) {
		if cfg.SiteType != "marketing" {
			t.Errorf("expected SiteType to be marketing, got %q", cfg.SiteType)
		}
	})

	t.Run("default RetentionDays is 30", func(t *testing.T) {
		if cfg.RetentionDays != 30 {
			t.Errorf("expected RetentionDays to be 30, got %d", cfg.RetentionDays)
		}
	})
}

// TestRetentionDaysFromEnv tests the environment override for retention.
func TestRetentionDaysFromEnv(t *testing.T) {
	t.Run("positive value overrides default", func(t *testing.T) {
		t.Setenv(RetentionDaysEnv, "90")
		if got := RetentionDaysFromEnv(); got != 90 {
			t.Errorf("expected 90, got %d", got)
		}
	})

	t.Run("non-numeric value falls back to default", func(t *testing.T) {
		t.Setenv(RetentionDaysEnv, "forever")
		if got := RetentionDaysFromEnv(); got != DefaultRetentionDays {
			t.Errorf("expected default %d, got %d", DefaultRetentionDays, got)
		}
	})

	t.Run("non-positive value falls back to default", func(t *testing.T) {
		t.Setenv(RetentionDaysEnv, "0")
		if got := RetentionDaysFromEnv(); got != DefaultRetentionDays {
			t.Errorf("expected default %d, got %d", DefaultRetentionDays, got)
		}
	})

	t.Run("unset falls back to default", func(t *testing.T) {
		t.Setenv(RetentionDaysEnv, "")
		if got := RetentionDaysFromEnv(); got != DefaultRetentionDays {
			t.Errorf("expected default %d, got %d", DefaultRetentionDays, got)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	// Tests can modify specific fields to test validation rules.
	validConfig := func() *Config {
		return &Config{
			Targets:       []string{"example.com"},
			Timeout:       30 * time.Second,
			BatchSize:     4,
			SiteType:      "marketing",
			EvidenceMode:  model.EvidenceModeExtractOnly,
			RetentionDays: 30,
		}
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("multiple targets is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Targets = []string{"site1.com", "site2.com", "site3.com"}

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("empty targets returns ErrNoTarget", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Targets = []string{}

		err := cfg.Validate()
		if !errors.Is(err, ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
	})

	t.Run("zero timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = 0

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("negative timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = -1 * time.Second

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("zero batch size returns ErrInvalidBatchSize", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.BatchSize = 0

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidBatchSize) {
			t.Errorf("expected ErrInvalidBatchSize, got %v", err)
		}
	})

	t.Run("json and markdown both enabled returns ErrConflictingReportFormats", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONReport = true
		cfg.MarkdownReport = true

		err := cfg.Validate()
		if !errors.Is(err, ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("json only is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONReport = true

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("negative crawl delay returns ErrInvalidCrawlDelay", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.CrawlDelay = -1 * time.Second

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidCrawlDelay) {
			t.Errorf("expected ErrInvalidCrawlDelay, got %v", err)
		}
	})

	t.Run("invalid evidence mode returns ErrInvalidEvidenceMode", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.EvidenceMode = "verbatim"

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidEvidenceMode) {
			t.Errorf("expected ErrInvalidEvidenceMode, got %v", err)
		}
	})

	t.Run("full evidence mode is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.EvidenceMode = model.EvidenceModeFull

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("zero retention days returns ErrInvalidRetentionDays", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.RetentionDays = 0

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidRetentionDays) {
			t.Errorf("expected ErrInvalidRetentionDays, got %v", err)
		}
	})

	t.Run("unknown site type returns ErrInvalidSiteType", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.SiteType = "portfolio"

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidSiteType) {
			t.Errorf("expected ErrInvalidSiteType, got %v", err)
		}
	})

	t.Run("every known site type is valid", func(t *testing.T) {
		t.Parallel()
		for _, st := range ValidSiteTypes {
			cfg := validConfig()
			cfg.SiteType = st
			if err := cfg.Validate(); err != nil {
				t.Errorf("site type %q: expected no error, got %v", st, err)
			}
		}
	})
}

// TestFileGetSiteConfig tests the GetSiteConfig method.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when site not found", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Depth:    2,
				SiteType: "docs",
			},
			Sites: map[string]SiteConfig{},
		}

		cfg := file.GetSiteConfig("unknown.com")
		if cfg.Depth != 2 {
			t.Errorf("expected depth 2, got %d", cfg.Depth)
		}
		if cfg.SiteType != "docs" {
			t.Errorf("expected default site type, got %q", cfg.SiteType)
		}
	})

	t.Run("returns site-specific config", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Depth:    2,
				SiteType: "marketing",
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					Depth:    5,
					SiteType: "blog",
					MaxPages: 20,
				},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if cfg.Depth != 5 {
			t.Errorf("expected depth 5, got %d", cfg.Depth)
		}
		if cfg.SiteType != "blog" {
			t.Errorf("expected site type blog, got %q", cfg.SiteType)
		}
		if cfg.MaxPages != 20 {
			t.Errorf("expected max pages 20, got %d", cfg.MaxPages)
		}
	})

	t.Run("merges headers from defaults and site", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Headers: map[string]string{
					"X-Default": "value1",
				},
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					Headers: map[string]string{
						"X-Custom": "value2",
					},
				},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if cfg.Headers["X-Default"] != "value1" {
			t.Errorf("expected default header, got %v", cfg.Headers)
		}
		if cfg.Headers["X-Custom"] != "value2" {
			t.Errorf("expected custom header, got %v", cfg.Headers)
		}
	})

	t.Run("site headers override default headers", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Headers: map[string]string{
					"Authorization": "default-token",
				},
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					Headers: map[string]string{
						"Authorization": "site-token",
					},
				},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if cfg.Headers["Authorization"] != "site-token" {
			t.Errorf("expected site token to override, got %q", cfg.Headers["Authorization"])
		}
	})

	t.Run("site sitemaps override defaults", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Sitemaps: []string{"https://example.com/default-sitemap.xml"},
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					Sitemaps: []string{"https://example.com/news-sitemap.xml"},
				},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if len(cfg.Sitemaps) != 1 || cfg.Sitemaps[0] != "https://example.com/news-sitemap.xml" {
			t.Errorf("expected site sitemaps, got %v", cfg.Sitemaps)
		}
	})

	t.Run("zero depth uses default", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Depth: 2,
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					SiteType: "docs", // no depth specified
				},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if cfg.Depth != 2 {
			t.Errorf("expected default depth 2, got %d", cfg.Depth)
		}
		if cfg.SiteType != "docs" {
			t.Errorf("expected site type docs, got %q", cfg.SiteType)
		}
	})

	t.Run("nil sites map", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Depth: 1,
			},
		}

		cfg := file.GetSiteConfig("any.com")
		if cfg.Depth != 1 {
			t.Errorf("expected depth 1, got %d", cfg.Depth)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.aeoscan")
		if err == nil {
			t.Fatal("expected error for non-existent file")
		}
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".aeoscan")

		content := `defaults:
  depth: 2
  siteType: "marketing"
sites:
  example.com:
    depth: 4
    siteType: "docs"
    maxPages: 25
    headers:
      Authorization: "Bearer token"
    sitemaps:
      - "https://example.com/docs-sitemap.xml"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Defaults.Depth != 2 {
			t.Errorf("expected default depth 2, got %d", cfg.Defaults.Depth)
		}
		if cfg.Defaults.SiteType != "marketing" {
			t.Errorf("expected default site type, got %q", cfg.Defaults.SiteType)
		}

		site, ok := cfg.Sites["example.com"]
		if !ok {
			t.Fatal("expected example.com in sites")
		}
		if site.Depth != 4 {
			t.Errorf("expected site depth 4, got %d", site.Depth)
		}
		if site.MaxPages != 25 {
			t.Errorf("expected site max pages 25, got %d", site.MaxPages)
		}
		if site.Headers["Authorization"] != "Bearer token" {
			t.Errorf("expected Authorization header")
		}
		if len(site.Sitemaps) != 1 {
			t.Errorf("expected 1 sitemap, got %d", len(site.Sitemaps))
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".aeoscan")

		content := `invalid: yaml: content: [}`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfigFile(configPath)
		if err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".aeoscan")

		content := `defaults:
  depth: 1
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "custom.yaml")

		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		result := FindConfigFile(configPath)
		if result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		result := FindConfigFile("/nonexistent/path/config.yaml")
		if result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("returns empty when no config found", func(_ *testing.T) {
		result := FindConfigFile("")
		// This may or may not find a config depending on the system
		// Just ensure it doesn't panic
		_ = result
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	t.Run("XDGDataDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		dir := XDGDataDir()
		if dir == "" {
			t.Error("expected non-empty XDG data dir")
		}
	})

	t.Run("XDGConfigDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		dir := XDGConfigDir()
		if dir == "" {
			t.Error("expected non-empty XDG config dir")
		}
	})

	t.Run("XDGCacheDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		dir := XDGCacheDir()
		if dir == "" {
			t.Error("expected non-empty XDG cache dir")
		}
	})
}
