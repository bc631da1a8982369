package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/umputun/lifestream/pkg/domain"
)

// Generator creates RSS feeds for the page owner
type Generator struct {
	profile domain.Profile
	baseURL string
}

// NewGenerator creates a new feed generator, channel metadata comes from the profile
func NewGenerator(profile domain.Profile) *Generator {
	return &Generator{profile: profile, baseURL: strings.TrimRight(profile.URL, "/")}
}

// GenerateRSS creates an RSS 2.0 feed for the selection. Atom feeds are
// published with RSS content too, only the announced type differs.
func (g *Generator) GenerateRSS(sel Selection) ([]byte, error) {
	title := sel.Def.Title
	if title == "" {
		title = g.profile.Name
	}

	rssItems := make([]*RSSItem, 0, len(sel.Items))
	for _, item := range sel.Items {
		rssItems = append(rssItems, convertToRSSItem(item))
	}

	// build date follows the newest item, so unchanged content gives the same feed
	lastBuild := time.Now()
	if len(sel.Items) > 0 {
		lastBuild = sel.Items[0].Date
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         title,
			Link:          g.baseURL + "/",
			Description:   g.profile.Tagline,
			AtomLink:      &AtomLink{Href: g.baseURL + "/" + sel.File, Rel: "self", Type: sel.Def.Mime()},
			Generator:     "lifestream",
			LastBuildDate: lastBuild.UTC().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal RSS: %w", err)
	}

	return append([]byte(xml.Header), output...), nil
}

func convertToRSSItem(item domain.FeedItem) *RSSItem {
	return &RSSItem{
		Title:       item.Title,
		Link:        item.URL,
		GUID:        &RSSGUID{Value: item.GUID, IsPermaLink: item.URL != "" && item.GUID == item.URL},
		Description: item.Body,
		PubDate:     item.Date.UTC().Format(time.RFC1123Z),
	}
}
