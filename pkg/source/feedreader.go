package source

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// acceptLanguages contains common browser Accept-Language values
var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-GB,en;q=0.9",
	"en-US,en;q=0.9,de;q=0.8",
}

// readFeed fetches and parses a RSS/Atom feed. Feed hosts often sit behind the
// same bot protection as sites, so requests carry browser-like headers.
func (c *Client) readFeed(ctx context.Context, service, target, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &TransportError{Service: service, Target: target, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,text/xml;q=0.8,*/*;q=0.5")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept-Language", acceptLanguages[rand.Intn(len(acceptLanguages))]) //nolint:gosec // non-cryptographic randomness is fine for header variation

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Service: service, Target: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Service: service, Target: target, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, &UpstreamDataError{Service: service, Target: target, Reason: "parse feed", Err: err}
	}
	return feed, nil
}

// feedItemDate returns published time of the feed item, updated time if not published
func feedItemDate(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed
	}
	return time.Time{}
}
