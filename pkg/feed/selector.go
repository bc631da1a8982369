// Package feed selects items for output feeds and serializes them as RSS.
package feed

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/domain"
)

// MaxItems is the number of most recent items published in each feed
const MaxItems = 20

// guidNamespace is used for deterministic guids of items without URL
var guidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/umputun/lifestream"))

// Selection is the content of one output feed
type Selection struct {
	File  string
	Def   config.FeedDef
	Items []domain.FeedItem
}

// Select picks items for every feed definition, feeds ordered by file name.
// Items must be ordered newest first; a feed gets the first MaxItems of those
// coming from its sources, or from all sources with "*".
func Select(items []domain.Item, defs map[string]config.FeedDef) []Selection {
	files := make([]string, 0, len(defs))
	for f := range defs {
		files = append(files, f)
	}
	sort.Strings(files)

	res := make([]Selection, 0, len(files))
	for _, file := range files {
		def := defs[file]
		sources := map[string]bool{}
		for _, s := range def.Sources {
			sources[s] = true
		}

		sel := Selection{File: file, Def: def, Items: []domain.FeedItem{}}
		for _, item := range items {
			if len(sel.Items) >= MaxItems {
				break
			}
			if !def.AllSources() && !sources[item.SourceName] {
				continue
			}
			sel.Items = append(sel.Items, toFeedItem(item))
		}
		res = append(res, sel)
	}
	return res
}

func toFeedItem(item domain.Item) domain.FeedItem {
	title := item.Title
	if title == "" {
		title = "Note"
	}
	return domain.FeedItem{Title: title, Body: item.Body, URL: item.URL, Date: item.Date, GUID: GUID(item)}
}

// GUID is the item URL, or a name-based uuid of source, date and title if URL is empty
func GUID(item domain.Item) string {
	if item.URL != "" {
		return item.URL
	}
	name := item.SourceName + "|" + item.Date.UTC().Format(time.RFC3339Nano) + "|" + item.Title
	return "urn:uuid:" + uuid.NewSHA1(guidNamespace, []byte(name)).String()
}
