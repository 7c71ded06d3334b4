// Package settings keeps the user's quick links and email templates. Both are stored as single
// documents and migrated from the shapes written by older versions when they are loaded.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/kvstore"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/recordstore"
	"gitlab.com/dirk.krummacker/jobapp-helper/pkg/model"
)

// Link types offered for quick links.
const (
	LinkTypeLinkedIn = "linkedin"
	LinkTypeGitHub   = "github"
	LinkTypeWebsite  = "website"
	LinkTypeOther    = "other"
)

var linkTypes = []string{LinkTypeLinkedIn, LinkTypeGitHub, LinkTypeWebsite, LinkTypeOther}

// DefaultLinks are shown until the user saves their own links.
var DefaultLinks = []model.QuickLink{
	{ID: "link-1", Type: LinkTypeLinkedIn, URL: "https://www.linkedin.com/in/example/", Title: "LinkedIn"},
	{ID: "link-2", Type: LinkTypeWebsite, URL: "https://example.com/", Title: "Personal Website"},
	{ID: "link-3", Type: LinkTypeGitHub, URL: "https://github.com/example", Title: "GitHub"},
}

// legacyLinks is the fixed set of links stored before links became a list.
type legacyLinks struct {
	LinkedIn string `json:"linkedin"`
	Website  string `json:"website"`
	GitHub   string `json:"github"`
}

// Links loads and saves the quick links.
type Links struct {
	kv kvstore.Store
}

// NewLinks returns the quick links kept in kv.
func NewLinks(kv kvstore.Store) *Links {
	return &Links{kv: kv}
}

// Load returns the saved links, or the defaults when none were saved.
func (l *Links) Load(ctx context.Context) ([]model.QuickLink, error) {
	raw, err := l.kv.Get(ctx, kvstore.LinksKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return slices.Clone(DefaultLinks), nil
	}
	if err != nil {
		return nil, &recordstore.IoError{Op: "links load", Err: err}
	}
	links, err := MigrateLinks(raw)
	if err != nil {
		return nil, &recordstore.IoError{Op: "links decode", Err: err}
	}
	return links, nil
}

// Save replaces all links. Rows with neither title nor URL are dropped, a missing title is taken
// from the link type and a missing id is generated. It returns the stored links.
func (l *Links) Save(ctx context.Context, links []model.QuickLink) ([]model.QuickLink, error) {
	saved := make([]model.QuickLink, 0, len(links))
	for _, link := range links {
		link.Title = strings.TrimSpace(link.Title)
		link.URL = strings.TrimSpace(link.URL)
		if link.Title == "" && link.URL == "" {
			continue
		}
		if link.Type == "" {
			link.Type = LinkTypeOther
		}
		if !slices.Contains(linkTypes, link.Type) {
			return nil, &recordstore.ValidationError{Field: "type", Reason: fmt.Sprintf("must be one of %v", linkTypes)}
		}
		if link.Title == "" {
			link.Title = defaultTitle(link.Type)
		}
		if link.ID == "" {
			link.ID = "link-" + uuid.NewString()
		}
		saved = append(saved, link)
	}
	raw, err := json.Marshal(saved)
	if err != nil {
		return nil, &recordstore.IoError{Op: "links encode", Err: err}
	}
	if err := l.kv.Set(ctx, kvstore.LinksKey, raw); err != nil {
		return nil, &recordstore.IoError{Op: "links save", Err: err}
	}
	return saved, nil
}

func defaultTitle(linkType string) string {
	switch linkType {
	case LinkTypeLinkedIn:
		return "LinkedIn"
	case LinkTypeGitHub:
		return "GitHub"
	case LinkTypeWebsite:
		return "Personal Website"
	default:
		return "Link"
	}
}

// MigrateLinks decodes stored links. The legacy object of three fixed URLs becomes a list of
// the links that have a URL.
func MigrateLinks(raw []byte) ([]model.QuickLink, error) {
	var links []model.QuickLink
	if err := json.Unmarshal(raw, &links); err == nil {
		if links == nil {
			return slices.Clone(DefaultLinks), nil
		}
		return links, nil
	}
	var legacy legacyLinks
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("decode links: %w", err)
	}
	migrated := []model.QuickLink{
		{ID: "link-1", Type: LinkTypeLinkedIn, URL: legacy.LinkedIn, Title: "LinkedIn"},
		{ID: "link-2", Type: LinkTypeWebsite, URL: legacy.Website, Title: "Personal Website"},
		{ID: "link-3", Type: LinkTypeGitHub, URL: legacy.GitHub, Title: "GitHub"},
	}
	return slices.DeleteFunc(migrated, func(l model.QuickLink) bool { return l.URL == "" }), nil
}
