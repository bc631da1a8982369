package source

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/mmcdole/gofeed"

	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/domain"
)

// YouTube reads channel video feeds
type YouTube struct {
	client   *Client
	endpoint string
	sources  []config.YouTubeSource
}

// NewYouTube makes YouTube fetcher
func NewYouTube(client *Client, sources []config.YouTubeSource, endpoint string) *YouTube {
	return &YouTube{client: client, sources: sources, endpoint: strings.TrimRight(endpoint, "/")}
}

// Name returns service name
func (y *YouTube) Name() string { return string(domain.ServiceYouTube) }

// Fetch reads the feed of every channel
func (y *YouTube) Fetch(ctx context.Context) Result {
	if len(y.sources) == 0 {
		return Result{Source: y.Name()}
	}
	lgr.Printf("[INFO] fetching youtube")
	c := newCollector(domain.ServiceYouTube)
	for _, src := range y.sources {
		u := y.endpoint + "/feeds/videos.xml?" + url.Values{"channel_id": {src.ChannelID}}.Encode()
		feed, err := y.client.readFeed(ctx, y.Name(), src.ChannelID, u)
		if err != nil {
			c.fail(err)
			continue
		}
		for _, it := range feed.Items {
			c.add(domain.Item{
				SourceName: src.Name,
				Type:       domain.TypeVideo,
				Date:       feedItemDate(it),
				Title:      it.Title,
				URL:        it.Link,
				Image:      thumbnail(it),
				Tags:       []string{"video"},
			})
		}
	}
	return c.result()
}

// thumbnail returns url of media:group/media:thumbnail, or item image if set
func thumbnail(it *gofeed.Item) *string {
	for _, group := range it.Extensions["media"]["group"] {
		for _, th := range group.Children["thumbnail"] {
			if u := th.Attrs["url"]; u != "" {
				return &u
			}
		}
	}
	if it.Image != nil {
		return domain.StrPtr(it.Image.URL)
	}
	return nil
}
