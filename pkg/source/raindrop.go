package source

import (
	"context"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/domain"
	"github.com/umputun/lifestream/pkg/taxonomy"
)

// Raindrop fetches bookmarks of a single collection
type Raindrop struct {
	client   *Client
	endpoint string
	cfg      config.RaindropConfig
}

// NewRaindrop makes Raindrop fetcher
func NewRaindrop(client *Client, cfg config.RaindropConfig, endpoint string) *Raindrop {
	return &Raindrop{client: client, cfg: cfg, endpoint: strings.TrimRight(endpoint, "/")}
}

// Name returns service name
func (r *Raindrop) Name() string { return string(domain.ServiceRaindrop) }

// Fetch gets bookmarks of the collection, skipped if collection or token is not set
func (r *Raindrop) Fetch(ctx context.Context) Result {
	if r.cfg.CollectionID == "" {
		return Result{Source: r.Name()}
	}
	if r.cfg.Token == "" {
		lgr.Printf("[INFO] raindrop: no token, skipping")
		return Result{Source: r.Name()}
	}

	lgr.Printf("[INFO] fetching raindrop")
	c := newCollector(domain.ServiceRaindrop)
	var resp struct {
		Items *[]struct {
			Title   string   `json:"title"`
			Link    string   `json:"link"`
			Note    string   `json:"note"`
			Cover   string   `json:"cover"`
			Created string   `json:"created"`
			Tags    []string `json:"tags"`
		} `json:"items"`
	}
	req := request{
		service: r.Name(),
		target:  "collection " + r.cfg.CollectionID,
		url:     r.endpoint + "/rest/v1/raindrops/" + r.cfg.CollectionID,
		headers: map[string]string{"Authorization": "Bearer " + r.cfg.Token},
	}
	if err := r.client.getJSON(ctx, req, &resp); err != nil {
		c.fail(err)
		return c.result()
	}
	if resp.Items == nil {
		c.fail(&UpstreamDataError{Service: r.Name(), Target: req.target, Reason: "no items in response"})
		return c.result()
	}

	for _, it := range *resp.Items {
		tags := []string{"bookmark"}
		for _, t := range it.Tags {
			slug := taxonomy.Slugify(t)
			tags = append(tags, slug)
			c.name(slug, t)
		}
		c.add(domain.Item{
			SourceName: r.cfg.Name,
			Type:       domain.TypeBookmark,
			Date:       parseDate(it.Created),
			Title:      it.Title,
			URL:        it.Link,
			Body:       it.Note,
			Image:      domain.StrPtr(it.Cover),
			Tags:       tags,
		})
	}
	return c.result()
}
