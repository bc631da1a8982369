// Package timeline groups ordered items into year buckets and adds the
// display fields used by the page.
package timeline

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/umputun/lifestream/pkg/domain"
)

var cssUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Assemble buckets items by year of their date in UTC, newest year first.
// Items must be ordered already, the order within a year is kept.
func Assemble(items []domain.Item) []domain.YearBucket {
	var res []domain.YearBucket
	for i, item := range items {
		date := item.Date.UTC()
		year := date.Year()
		if len(res) == 0 || res[len(res)-1].Year != year {
			res = append(res, domain.YearBucket{Year: year})
		}
		last := &res[len(res)-1]
		last.Items = append(last.Items, domain.Entry{
			Item:        item,
			ID:          fmt.Sprintf("entry-%s-%d", date.Format("2006-01-02"), i),
			TagClasses:  TagClasses(item.Tags),
			SourceLabel: SourceLabel(item),
			Summary:     Summary(item),
		})
	}
	return merge(res)
}

// merge joins buckets of the same year, only possible with unordered input
func merge(buckets []domain.YearBucket) []domain.YearBucket {
	res := make([]domain.YearBucket, 0, len(buckets))
	idx := map[int]int{}
	for _, b := range buckets {
		if i, ok := idx[b.Year]; ok {
			res[i].Items = append(res[i].Items, b.Items...)
			continue
		}
		idx[b.Year] = len(res)
		res = append(res, b)
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Year > res[j].Year })
	return res
}

// TagClasses returns "tag-<tag>" css classes joined by spaces
func TagClasses(tags []string) string {
	classes := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = cssUnsafe.ReplaceAllString(t, "-"); t != "" {
			classes = append(classes, "tag-"+t)
		}
	}
	return strings.Join(classes, " ")
}

// SourceLabel is the short origin shown next to an entry
func SourceLabel(item domain.Item) string {
	switch {
	case item.Service == domain.ServiceBluesky:
		return "Bluesky"
	case item.Service == domain.ServiceMastodon:
		return "Mastodon"
	case item.Origin != nil && item.Origin.Repo != "":
		return item.Origin.Repo
	}
	return "Note"
}

// Summary returns the first line of an article body with visible text that
// is not a markdown heading. Markup is kept as is.
func Summary(item domain.Item) string {
	if item.Type != domain.TypeArticle || item.Body == "" {
		return ""
	}
	for _, line := range strings.Split(item.Body, "\n") {
		l := strings.TrimSpace(line)
		if l != "" && !strings.HasPrefix(l, "#") {
			return l
		}
	}
	return ""
}
