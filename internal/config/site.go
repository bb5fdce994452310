package config

// File is the parsed .sitelens configuration file. It carries shared
// defaults plus per-site overrides keyed by hostname, so a recurring
// multi-site crawl can live in one checked-in file instead of a shell
// script full of flags.
type File struct {
	// Defaults apply to every site that has no override of its own.
	Defaults SiteConfig `yaml:"defaults"`

	// Sites maps a hostname (without scheme) to its overrides.
	Sites map[string]SiteConfig `yaml:"sites"`
}

// SiteConfig holds the per-site crawl settings that commonly differ
// between sites. Zero values mean "inherit"; UseReader is a pointer for
// the same reason, since false is a meaningful setting.
type SiteConfig struct {
	// MaxPages overrides the discovery page cap. 0 inherits.
	MaxPages int `yaml:"max_pages"`

	// MaxDepth overrides the link-hop bound. 0 inherits.
	MaxDepth int `yaml:"max_depth"`

	// ExcludePatterns are appended to the global exclude patterns.
	ExcludePatterns []string `yaml:"exclude_patterns"`

	// UseReader overrides the extraction strategy choice. Nil inherits.
	UseReader *bool `yaml:"use_reader"`

	// Cookie is sent verbatim as the Cookie header on every request to
	// the site. Gated staging sites typically need a session cookie to
	// serve real content.
	Cookie string `yaml:"cookie"`

	// Headers are extra request headers sent to the site, keyed by
	// header name. Authorization for basic-auth-protected staging hosts
	// is the common case.
	Headers map[string]string `yaml:"headers"`
}

// For returns the effective settings for host: the file defaults with
// the host's overrides layered on top. A nil File yields the zero
// SiteConfig, which inherits everything from the CLI flags.
func (f *File) For(host string) SiteConfig {
	if f == nil {
		return SiteConfig{}
	}

	effective := f.Defaults
	site, ok := f.Sites[host]
	if !ok {
		return effective
	}

	if site.MaxPages != 0 {
		effective.MaxPages = site.MaxPages
	}
	if site.MaxDepth != 0 {
		effective.MaxDepth = site.MaxDepth
	}
	if len(site.ExcludePatterns) != 0 {
		effective.ExcludePatterns = append(effective.ExcludePatterns, site.ExcludePatterns...)
	}
	if site.UseReader != nil {
		effective.UseReader = site.UseReader
	}
	if site.Cookie != "" {
		effective.Cookie = site.Cookie
	}
	if len(site.Headers) != 0 {
		effective.Headers = mergeHeaders(effective.Headers, site.Headers)
	}

	return effective
}

// Apply layers the site settings onto a copy of the base configuration
// and returns it. The base Config is never mutated, so one parsed flag
// set can serve a whole batch of sites.
func (s SiteConfig) Apply(base *Config) *Config {
	cfg := *base

	if s.MaxPages != 0 {
		cfg.MaxPages = s.MaxPages
	}
	if s.MaxDepth != 0 {
		cfg.MaxDepth = s.MaxDepth
	}
	if len(s.ExcludePatterns) != 0 {
		merged := make([]string, 0, len(base.ExcludePatterns)+len(s.ExcludePatterns))
		merged = append(merged, base.ExcludePatterns...)
		merged = append(merged, s.ExcludePatterns...)
		cfg.ExcludePatterns = merged
	}
	if s.UseReader != nil {
		cfg.UseReader = *s.UseReader
	}
	if s.Cookie != "" {
		cfg.Cookie = s.Cookie
	}
	if len(s.Headers) != 0 {
		cfg.Headers = mergeHeaders(base.Headers, s.Headers)
	}

	return &cfg
}

// mergeHeaders layers overrides onto base without mutating either map.
func mergeHeaders(base, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
