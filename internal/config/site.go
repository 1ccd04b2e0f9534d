package config

// SiteConfig holds site-specific configuration for a single domain.
// This allows customizing audit behavior per site.
type SiteConfig struct {
	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth for this site.
	// If zero, the global CrawlDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// MaxPages overrides the global page limit for this site.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// SiteType overrides the global scoring profile for this site
	// (marketing, blog, docs, ecommerce).
	SiteType string `yaml:"siteType,omitempty"`

	// Sitemaps lists sitemap URLs to use instead of the ones declared
	// in robots.txt.
	Sitemaps []string `yaml:"sitemaps,omitempty"`
}

// File represents the structure of the .aeoscan configuration file.
type File struct {
	// Sites maps domains to their site-specific configurations.
	// Keys should be the bare domain (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific domain.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[domain]; ok {
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
		if siteConfig.SiteType != "" {
			result.SiteType = siteConfig.SiteType
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
		if len(siteConfig.Sitemaps) > 0 {
			result.Sitemaps = siteConfig.Sitemaps
		}
	}

	return result
}
