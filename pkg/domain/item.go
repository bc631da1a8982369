package domain

import "time"

// ItemType is the kind of content an item represents
type ItemType string

const (
	TypeNote     ItemType = "note"
	TypeArticle  ItemType = "article"
	TypeRelease  ItemType = "release"
	TypeBookmark ItemType = "bookmark"
	TypeVideo    ItemType = "video"
)

// Valid reports whether the type is one of the known item types
func (t ItemType) Valid() bool {
	switch t {
	case TypeNote, TypeArticle, TypeRelease, TypeBookmark, TypeVideo:
		return true
	}
	return false
}

// Service is the external service an item was fetched from
type Service string

const (
	ServiceGitHub    Service = "github"
	ServiceBluesky   Service = "bluesky"
	ServiceMastodon  Service = "mastodon"
	ServiceLemmy     Service = "lemmy"
	ServiceRaindrop  Service = "raindrop"
	ServiceYouTube   Service = "youtube"
	ServiceRSS       Service = "rss"
	ServiceGitLab    Service = "gitlab"
	ServiceGitea     Service = "gitea"
	ServiceBitbucket Service = "bitbucket"
)

// Valid reports whether the service is one of the known services
func (s Service) Valid() bool {
	switch s {
	case ServiceGitHub, ServiceBluesky, ServiceMastodon, ServiceLemmy, ServiceRaindrop,
		ServiceYouTube, ServiceRSS, ServiceGitLab, ServiceGitea, ServiceBitbucket:
		return true
	}
	return false
}

// Item is the canonical unit of aggregated content. All fetchers produce items
// of this shape; per-service data lives in the optional Origin and Metrics parts.
type Item struct {
	SourceName string    `json:"sourceName"`
	Type       ItemType  `json:"type"`
	Service    Service   `json:"service"`
	Date       time.Time `json:"date"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Body       string    `json:"body"`
	Image      *string   `json:"image,omitempty"`
	Tags       []string  `json:"tags"`
	Metrics    Metrics   `json:"metrics"`
	Origin     *Origin   `json:"origin,omitempty"`
}

// Metrics holds engagement counters. A nil counter means the service doesn't
// track it, which is different from zero.
type Metrics struct {
	Comments  *int `json:"comments,omitempty"`
	Reactions *int `json:"reactions,omitempty"`
	Replies   *int `json:"replies,omitempty"`
	Reposts   *int `json:"reposts,omitempty"`
	Likes     *int `json:"likes,omitempty"`
}

// Origin identifies the repository-like thing an item belongs to,
// used by forge services and syndication feeds for display and grouping
type Origin struct {
	Owner   string `json:"owner"`
	Repo    string `json:"repo"`
	Version string `json:"version,omitempty"`
}

// UniqueTags returns tags without duplicates and empty values, keeping first-seen order
func UniqueTags(tags ...string) []string {
	seen := make(map[string]struct{}, len(tags))
	res := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		res = append(res, t)
	}
	return res
}

// IntPtr returns a pointer to the given counter value
func IntPtr(v int) *int { return &v }

// StrPtr returns a pointer to s, or nil if s is empty
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
