// Package sites contains pluggable site profile (YAML/JSON) helpers. A
// profile describes where a blog listing lives and which selectors the
// crawler and researcher should use, so markup drift is a config change
// rather than a code change.
package sites

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile describes one crawlable blog listing and its research settings.
type Profile struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// ListingURL is the listing home (page 1). PagePath is a fmt template
	// appended to ListingURL for pages beyond the first, e.g. "page/%d/".
	ListingURL string `json:"listing_url" yaml:"listing_url"`
	PagePath   string `json:"page_path" yaml:"page_path"`

	// TeaserSelector matches the title anchors of article cards;
	// PaginationSelector matches the numbered pagination anchors.
	TeaserSelector     string `json:"teaser_selector" yaml:"teaser_selector"`
	PaginationSelector string `json:"pagination_selector" yaml:"pagination_selector"`

	// SearchURL is a fmt template receiving the URL-encoded query.
	// SearchResultSelector matches result anchors on the rendered page.
	SearchURL            string `json:"search_url" yaml:"search_url"`
	SearchResultSelector string `json:"search_result_selector" yaml:"search_result_selector"`

	// MobileUserAgent is sent on search renders to reduce the likelihood of
	// bot-detection interstitials.
	MobileUserAgent string `json:"mobile_user_agent" yaml:"mobile_user_agent"`

	// ExcludedDomains are substring-matched against candidate source URLs;
	// matches are dropped (the search engine itself and the blog's own domain).
	ExcludedDomains []string `json:"excluded_domains" yaml:"excluded_domains"`

	// FallbackSources are substituted verbatim when live search yields no
	// qualifying links.
	FallbackSources []string `json:"fallback_sources" yaml:"fallback_sources"`
}

// Default returns the built-in profile for the BeyondChats blog.
func Default() Profile {
	return Profile{
		ID:                   "beyondchats-blog",
		Name:                 "BeyondChats Blog",
		ListingURL:           "https://beyondchats.com/blogs/",
		PagePath:             "page/%d/",
		TeaserSelector:       ".entry-card .entry-title a",
		PaginationSelector:   "a.page-numbers",
		SearchURL:            "https://www.google.com/search?q=%s",
		SearchResultSelector: "div.g a",
		MobileUserAgent:      "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/604.1",
		ExcludedDomains:      []string{"google", "beyondchats"},
		FallbackSources: []string{
			"https://techcrunch.com/ai-trends-2025",
			"https://wired.com/future-of-chatbots",
		},
	}
}

// Load reads a profile from a YAML or JSON file. Fields left empty in the
// file fall back to the built-in defaults.
func Load(path string) (Profile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Profile{}, errors.New("site profile path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return Profile{}, fmt.Errorf("open site profile: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return Profile{}, fmt.Errorf("read site profile: %w", err)
	}

	p, err := parseProfile(raw, filepath.Ext(path))
	if err != nil {
		return Profile{}, err
	}

	p = withDefaults(p)
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func parseProfile(raw []byte, ext string) (Profile, error) {
	var p Profile
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(raw, &p); err != nil {
			return Profile{}, fmt.Errorf("decode site profile json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(raw, &p); err != nil {
			return Profile{}, fmt.Errorf("decode site profile yaml: %w", err)
		}
	}
	return p, nil
}

func withDefaults(p Profile) Profile {
	def := Default()
	if strings.TrimSpace(p.ID) == "" {
		p.ID = def.ID
	}
	if strings.TrimSpace(p.Name) == "" {
		p.Name = def.Name
	}
	if strings.TrimSpace(p.ListingURL) == "" {
		p.ListingURL = def.ListingURL
	}
	if strings.TrimSpace(p.PagePath) == "" {
		p.PagePath = def.PagePath
	}
	if strings.TrimSpace(p.TeaserSelector) == "" {
		p.TeaserSelector = def.TeaserSelector
	}
	if strings.TrimSpace(p.PaginationSelector) == "" {
		p.PaginationSelector = def.PaginationSelector
	}
	if strings.TrimSpace(p.SearchURL) == "" {
		p.SearchURL = def.SearchURL
	}
	if strings.TrimSpace(p.SearchResultSelector) == "" {
		p.SearchResultSelector = def.SearchResultSelector
	}
	if strings.TrimSpace(p.MobileUserAgent) == "" {
		p.MobileUserAgent = def.MobileUserAgent
	}
	if len(p.ExcludedDomains) == 0 {
		p.ExcludedDomains = def.ExcludedDomains
	}
	if len(p.FallbackSources) == 0 {
		p.FallbackSources = def.FallbackSources
	}
	return p
}

// Validate checks that the profile is usable by the crawler.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.ListingURL) == "" {
		return fmt.Errorf("profile %q: listing_url is empty", p.ID)
	}
	if !strings.Contains(p.PagePath, "%d") {
		return fmt.Errorf("profile %q: page_path must contain %%d", p.ID)
	}
	if !strings.Contains(p.SearchURL, "%s") {
		return fmt.Errorf("profile %q: search_url must contain %%s", p.ID)
	}
	if strings.TrimSpace(p.TeaserSelector) == "" {
		return fmt.Errorf("profile %q: teaser_selector is empty", p.ID)
	}
	if len(p.FallbackSources) == 0 {
		return fmt.Errorf("profile %q: fallback_sources is empty", p.ID)
	}
	return nil
}

// PageURL returns the listing URL for the given 1-based page number.
func (p Profile) PageURL(page int) string {
	if page <= 1 {
		return p.ListingURL
	}
	base := p.ListingURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + fmt.Sprintf(p.PagePath, page)
}

// SearchQueryURL builds the search results URL for the given query text.
func (p Profile) SearchQueryURL(query string) string {
	return fmt.Sprintf(p.SearchURL, url.QueryEscape(query))
}

// AllowsSource reports whether a candidate research URL qualifies: it must be
// absolute http(s) and must not contain any excluded domain fragment.
func (p Profile) AllowsSource(raw string) bool {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false
	}
	for _, domain := range p.ExcludedDomains {
		if domain == "" {
			continue
		}
		if strings.Contains(raw, domain) {
			return false
		}
	}
	return true
}
