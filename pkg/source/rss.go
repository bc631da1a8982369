package source

import (
	"context"
	"html"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/content"
	"github.com/umputun/lifestream/pkg/domain"
	"github.com/umputun/lifestream/pkg/taxonomy"
)

// maxEnrichedItems caps page metadata lookups per feed
const maxEnrichedItems = 10

//go:generate moq -out mocks/meta_lookup.go -pkg mocks -skip-ensure -fmt goimports . MetaLookup

// MetaLookup finds page metadata for a link
type MetaLookup interface {
	Lookup(ctx context.Context, url string) content.Meta
}

// RSS reads generic feeds, decorating items with the image of the linked page
type RSS struct {
	client *Client
	meta   MetaLookup
	cfg    config.RSSConfig
	policy *bluemonday.Policy
}

// NewRSS makes RSS fetcher
func NewRSS(client *Client, meta MetaLookup, cfg config.RSSConfig) *RSS {
	return &RSS{client: client, meta: meta, cfg: cfg, policy: bluemonday.StrictPolicy()}
}

// Name returns service name
func (r *RSS) Name() string { return string(domain.ServiceRSS) }

// Fetch reads every feed, taking the first items up to the limit, never more
// than maxEnrichedItems. Metadata lookups are made one by one, to be gentle
// with the linked sites.
func (r *RSS) Fetch(ctx context.Context) Result {
	if len(r.cfg.Sources) == 0 {
		return Result{Source: r.Name()}
	}
	lgr.Printf("[INFO] fetching rss")
	limit := r.cfg.Limit
	if limit <= 0 || limit > maxEnrichedItems {
		limit = maxEnrichedItems
	}
	c := newCollector(domain.ServiceRSS)
	for _, src := range r.cfg.Sources {
		feed, err := r.client.readFeed(ctx, r.Name(), src.Name, src.URL)
		if err != nil {
			c.fail(err)
			continue
		}

		slug := taxonomy.Slugify(src.Name)
		c.name(slug, src.Name)
		items := feed.Items
		if len(items) > limit {
			items = items[:limit]
		}
		for _, it := range items {
			var image *string
			if it.Link != "" && r.meta != nil {
				image = r.meta.Lookup(ctx, it.Link).Image
			}
			body := it.Content
			if body == "" {
				body = it.Description
			}
			c.add(domain.Item{
				SourceName: src.Name,
				Type:       domain.TypeArticle,
				Date:       feedItemDate(it),
				Title:      it.Title,
				URL:        it.Link,
				Body:       strings.TrimSpace(html.UnescapeString(r.policy.Sanitize(body))),
				Image:      image,
				Tags:       []string{"rss", slug},
				Origin:     &domain.Origin{Owner: src.Name, Repo: "feed"},
			})
		}
	}
	return c.result()
}
