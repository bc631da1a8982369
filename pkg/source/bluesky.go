package source

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/domain"
)

const blueskyLimit = "20"

// Bluesky fetches author feeds or custom feeds from the public AppView
type Bluesky struct {
	client   *Client
	endpoint string
	sources  []config.BlueskySource
}

// NewBluesky makes Bluesky fetcher
func NewBluesky(client *Client, sources []config.BlueskySource, endpoint string) *Bluesky {
	return &Bluesky{client: client, sources: sources, endpoint: strings.TrimRight(endpoint, "/")}
}

// Name returns service name
func (b *Bluesky) Name() string { return string(domain.ServiceBluesky) }

type blueskyFeed struct {
	Feed *[]struct {
		Post struct {
			URI    string `json:"uri"`
			Author struct {
				Handle string `json:"handle"`
			} `json:"author"`
			Record struct {
				Text      string `json:"text"`
				CreatedAt string `json:"createdAt"`
			} `json:"record"`
			Embed *struct {
				Images []struct {
					Fullsize string `json:"fullsize"`
				} `json:"images"`
			} `json:"embed"`
			ReplyCount  int `json:"replyCount"`
			RepostCount int `json:"repostCount"`
			LikeCount   int `json:"likeCount"`
		} `json:"post"`
	} `json:"feed"`
}

// Fetch gets the latest posts of every source
func (b *Bluesky) Fetch(ctx context.Context) Result {
	if len(b.sources) == 0 {
		return Result{Source: b.Name()}
	}
	lgr.Printf("[INFO] fetching bluesky")
	c := newCollector(domain.ServiceBluesky)
	for _, src := range b.sources {
		b.fetchSource(ctx, c, src)
	}
	return c.result()
}

func (b *Bluesky) fetchSource(ctx context.Context, c *collector, src config.BlueskySource) {
	target, u := src.Handle, b.endpoint+"/xrpc/app.bsky.feed.getAuthorFeed?"+url.Values{
		"actor": {src.Handle}, "filter": {"posts_no_replies"}, "limit": {blueskyLimit}}.Encode()
	if src.Feed != "" {
		target, u = src.Feed, b.endpoint+"/xrpc/app.bsky.feed.getFeed?"+url.Values{
			"feed": {src.Feed}, "limit": {blueskyLimit}}.Encode()
	}

	var resp blueskyFeed
	if err := b.client.getJSON(ctx, request{service: b.Name(), target: target, url: u}, &resp); err != nil {
		c.fail(err)
		return
	}
	if resp.Feed == nil {
		c.fail(&UpstreamDataError{Service: b.Name(), Target: target, Reason: "no feed in response"})
		return
	}

	for _, entry := range *resp.Feed {
		p := entry.Post
		var image *string
		if p.Embed != nil && len(p.Embed.Images) > 0 {
			image = domain.StrPtr(p.Embed.Images[0].Fullsize)
		}
		c.add(domain.Item{
			SourceName: src.Name,
			Type:       domain.TypeNote,
			Date:       parseDate(p.Record.CreatedAt),
			Body:       p.Record.Text,
			URL:        "https://bsky.app/profile/" + p.Author.Handle + "/post/" + p.URI[strings.LastIndex(p.URI, "/")+1:],
			Image:      image,
			Tags:       []string{"notes"},
			Metrics: domain.Metrics{
				Replies: domain.IntPtr(p.ReplyCount),
				Reposts: domain.IntPtr(p.RepostCount),
				Likes:   domain.IntPtr(p.LikeCount),
			},
		})
	}
}
