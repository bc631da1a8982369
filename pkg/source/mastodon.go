package source

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/domain"
)

// Mastodon fetches public statuses of accounts, replies excluded
type Mastodon struct {
	client  *Client
	sources []config.MastodonSource
	policy  *bluemonday.Policy
}

// NewMastodon makes Mastodon fetcher
func NewMastodon(client *Client, sources []config.MastodonSource) *Mastodon {
	return &Mastodon{client: client, sources: sources, policy: bluemonday.StrictPolicy()}
}

// Name returns service name
func (m *Mastodon) Name() string { return string(domain.ServiceMastodon) }

type mastodonStatus struct {
	CreatedAt        string `json:"created_at"`
	URL              string `json:"url"`
	Content          string `json:"content"`
	RepliesCount     int    `json:"replies_count"`
	ReblogsCount     int    `json:"reblogs_count"`
	FavouritesCount  int    `json:"favourites_count"`
	MediaAttachments []struct {
		URL string `json:"url"`
	} `json:"media_attachments"`
}

// Fetch gets the latest statuses of every account
func (m *Mastodon) Fetch(ctx context.Context) Result {
	if len(m.sources) == 0 {
		return Result{Source: m.Name()}
	}
	lgr.Printf("[INFO] fetching mastodon")
	c := newCollector(domain.ServiceMastodon)
	for _, src := range m.sources {
		target := src.ID + "@" + src.Instance
		u := instanceURL(src.Instance) + "/api/v1/accounts/" + src.ID + "/statuses?exclude_replies=true&limit=20"
		var statuses []mastodonStatus
		if err := m.client.getJSON(ctx, request{service: m.Name(), target: target, url: u}, &statuses); err != nil {
			c.fail(err)
			continue
		}
		for _, s := range statuses {
			var image *string
			if len(s.MediaAttachments) > 0 {
				image = domain.StrPtr(s.MediaAttachments[0].URL)
			}
			c.add(domain.Item{
				SourceName: src.Name,
				Type:       domain.TypeNote,
				Date:       parseDate(s.CreatedAt),
				Body:       m.plainText(s.Content),
				URL:        s.URL,
				Image:      image,
				Tags:       []string{"notes"},
				Metrics: domain.Metrics{
					Replies: domain.IntPtr(s.RepliesCount),
					Reposts: domain.IntPtr(s.ReblogsCount),
					Likes:   domain.IntPtr(s.FavouritesCount),
				},
			})
		}
	}
	return c.result()
}

var (
	paragraphRe = regexp.MustCompile(`(?i)</p>\s*<p[^>]*>`)
	lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>`)
)

// plainText strips status html, keeping paragraphs and line breaks as newlines
func (m *Mastodon) plainText(content string) string {
	content = paragraphRe.ReplaceAllString(content, "\n\n")
	content = lineBreakRe.ReplaceAllString(content, "\n")
	return strings.TrimSpace(html.UnescapeString(m.policy.Sanitize(content)))
}
