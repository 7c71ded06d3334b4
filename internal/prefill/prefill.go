// Package prefill suggests contact fields from the page the user is looking at.
package prefill

import (
	"context"
	"net/url"
	"strings"
)

// Profile holds the fields a scraper could extract. A nil field was not found.
type Profile struct {
	Name    *string `json:"name,omitempty"`
	Company *string `json:"company,omitempty"`
	URL     *string `json:"url,omitempty"`
}

// PageScraper extracts contact fields from a third-party page on a best-effort basis.
type PageScraper interface {
	Scrape(ctx context.Context, pageURL string) (Profile, error)
}

// ProfileURLScraper recognizes LinkedIn profile pages by their URL and suggests the URL as the
// contact's profile link. It never reads the page itself.
type ProfileURLScraper struct{}

func (ProfileURLScraper) Scrape(_ context.Context, pageURL string) (Profile, error) {
	if !IsLinkedInProfile(pageURL) {
		return Profile{}, nil
	}
	return Profile{URL: &pageURL}, nil
}

// IsLinkedInProfile reports whether pageURL is a LinkedIn member profile.
func IsLinkedInProfile(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host == "www.linkedin.com" && strings.HasPrefix(u.Path, "/in/") && len(u.Path) > len("/in/")
}
