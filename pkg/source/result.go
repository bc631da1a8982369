// Package source implements fetchers turning service payloads into domain items.
// Fetchers never fail the caller: errors are logged and reported in Result.
package source

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/lifestream/pkg/domain"
)

// Result is the outcome of one fetcher run. Err is nil on success; with
// items present it means a partial result.
type Result struct {
	Source   string
	Items    []domain.Item
	Err      error
	TagNames map[string]string // natural display names for tags, slug -> name

	// set by the github fetcher only
	Status *domain.Status
	Now    *domain.NowPost
}

// Partial reports whether the fetcher returned items despite errors
func (r Result) Partial() bool { return r.Err != nil && len(r.Items) > 0 }

// Fetcher produces items of a single service
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) Result
}

// collector accumulates items, errors and tag names during one fetch
type collector struct {
	service domain.Service
	items   []domain.Item
	errs    []error
	names   map[string]string
}

func newCollector(service domain.Service) *collector {
	return &collector{service: service, names: map[string]string{}}
}

// add appends item after normalizing tags. Items without a date are skipped.
func (c *collector) add(item domain.Item) {
	if item.Date.IsZero() {
		lgr.Printf("[WARN] %s: skipping item without date, %q %s", c.service, item.Title, item.URL)
		return
	}
	item.Service = c.service
	item.Tags = domain.UniqueTags(item.Tags...)
	c.items = append(c.items, item)
}

// fail records error, logging it with service context
func (c *collector) fail(err error) {
	if err == nil {
		return
	}
	lgr.Printf("[WARN] %s: %v", c.service, err)
	c.errs = append(c.errs, err)
}

// name sets a display name for tag if not known yet
func (c *collector) name(tag, name string) {
	if tag == "" || name == "" {
		return
	}
	if _, ok := c.names[tag]; !ok {
		c.names[tag] = name
	}
}

func (c *collector) result() Result {
	lgr.Printf("[DEBUG] %s: collected %d items, %d errors", c.service, len(c.items), len(c.errs))
	return Result{Source: string(c.service), Items: c.items, Err: errors.Join(c.errs...), TagNames: c.names}
}

// parseTime parses service timestamps, RFC 3339 first and a few zone-less
// layouts used by some APIs, which are taken as UTC
func parseTime(s string) (time.Time, bool) {
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02 15:04:05"}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseDate is parseTime returning zero time on failure, which makes collector skip the item
func parseDate(s string) time.Time {
	t, _ := parseTime(s)
	return t
}

// instanceURL turns an instance host into base URL, values with scheme are kept as is
func instanceURL(instance string) string {
	instance = strings.TrimRight(instance, "/")
	if strings.Contains(instance, "://") {
		return instance
	}
	return "https://" + instance
}
