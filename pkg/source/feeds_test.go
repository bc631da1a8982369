package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/content"
	"github.com/umputun/lifestream/pkg/domain"
	"github.com/umputun/lifestream/pkg/source/mocks"
)

func TestYouTube_Fetch(t *testing.T) {
	atom := `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
	<title>Channel</title>
	<entry>
		<id>yt:video:abc</id>
		<title>Radio-T 900</title>
		<link rel="alternate" href="https://www.youtube.com/watch?v=abc"/>
		<published>2024-04-05T18:00:00+00:00</published>
		<updated>2024-04-06T18:00:00+00:00</updated>
		<media:group>
			<media:title>Radio-T 900</media:title>
			<media:thumbnail url="https://i1.ytimg.com/vi/abc/hqdefault.jpg" width="480" height="360"/>
		</media:group>
	</entry>
	<entry>
		<id>yt:video:def</id>
		<title>No thumb</title>
		<link rel="alternate" href="https://www.youtube.com/watch?v=def"/>
		<published>2024-04-01T18:00:00+00:00</published>
	</entry>
</feed>`

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feeds/videos.xml", r.URL.Path)
		if r.URL.Query().Get("channel_id") != "UC123" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, atom)
	}))
	defer ts.Close()

	y := NewYouTube(testClient(), []config.YouTubeSource{{Name: "radiot", ChannelID: "UC123"}, {Name: "gone", ChannelID: "UC404"}}, ts.URL)
	res := y.Fetch(context.Background())
	assert.True(t, res.Partial())
	require.Len(t, res.Items, 2)

	it := res.Items[0]
	assert.Equal(t, domain.TypeVideo, it.Type)
	assert.Equal(t, "radiot", it.SourceName)
	assert.Equal(t, "Radio-T 900", it.Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", it.URL)
	assert.Equal(t, []string{"video"}, it.Tags)
	require.NotNil(t, it.Image)
	assert.Equal(t, "https://i1.ytimg.com/vi/abc/hqdefault.jpg", *it.Image)
	assert.Equal(t, 5, it.Date.Day())
	assert.Nil(t, res.Items[1].Image)
}

func TestRSS_Fetch(t *testing.T) {
	var items strings.Builder
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&items, `<item><title>Post %d</title><link>https://blog.example.com/%d</link>
			<description><![CDATA[<p>Body <b>%d</b> &amp; more</p>]]></description>
			<pubDate>Mon, %02d Jan 2024 10:00:00 +0000</pubDate></item>`, i, i, i, i)
	}
	rss := `<?xml version="1.0"?><rss version="2.0"><channel><title>Blog</title>` + items.String() + `</channel></rss>`

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rss.xml":
			assert.Contains(t, r.Header.Get("Accept"), "application/rss+xml")
			fmt.Fprint(w, rss)
		case "/broken.xml":
			fmt.Fprint(w, "this is not a feed")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	meta := &mocks.MetaLookupMock{LookupFunc: func(_ context.Context, url string) content.Meta {
		if strings.HasSuffix(url, "/1") {
			img := "https://blog.example.com/cover1.png"
			return content.Meta{Image: &img}
		}
		return content.Meta{}
	}}

	t.Run("limited and enriched", func(t *testing.T) {
		cfg := config.RSSConfig{Limit: 10, Sources: []config.RSSSource{{Name: "My Blog", URL: ts.URL + "/rss.xml"}}}
		res := NewRSS(testClient(), meta, cfg).Fetch(context.Background())
		require.NoError(t, res.Err)
		require.Len(t, res.Items, 10)
		assert.Len(t, meta.LookupCalls(), 10)

		it := res.Items[0]
		assert.Equal(t, domain.TypeArticle, it.Type)
		assert.Equal(t, domain.ServiceRSS, it.Service)
		assert.Equal(t, "Post 1", it.Title)
		assert.Equal(t, "Body 1 & more", it.Body)
		assert.Equal(t, []string{"rss", "my-blog"}, it.Tags)
		assert.Equal(t, &domain.Origin{Owner: "My Blog", Repo: "feed"}, it.Origin)
		require.NotNil(t, it.Image)
		assert.Equal(t, "https://blog.example.com/cover1.png", *it.Image)
		assert.Nil(t, res.Items[1].Image)
		assert.Equal(t, "My Blog", res.TagNames["my-blog"])
	})

	t.Run("limit above cap is clamped", func(t *testing.T) {
		lookups := &mocks.MetaLookupMock{LookupFunc: func(context.Context, string) content.Meta { return content.Meta{} }}
		cfg := config.RSSConfig{Limit: 30, Sources: []config.RSSSource{{Name: "My Blog", URL: ts.URL + "/rss.xml"}}}
		res := NewRSS(testClient(), lookups, cfg).Fetch(context.Background())
		require.NoError(t, res.Err)
		assert.Len(t, res.Items, maxEnrichedItems)
		assert.Len(t, lookups.LookupCalls(), maxEnrichedItems)
	})

	t.Run("failing feeds don't stop others", func(t *testing.T) {
		cfg := config.RSSConfig{Limit: 2, Sources: []config.RSSSource{
			{Name: "missing", URL: ts.URL + "/missing.xml"},
			{Name: "broken", URL: ts.URL + "/broken.xml"},
			{Name: "blog", URL: ts.URL + "/rss.xml"},
		}}
		res := NewRSS(testClient(), nil, cfg).Fetch(context.Background())
		assert.True(t, res.Partial())
		assert.Len(t, res.Items, 2)
		var te *TransportError
		assert.ErrorAs(t, res.Err, &te)
		var ue *UpstreamDataError
		require.ErrorAs(t, res.Err, &ue)
		assert.Equal(t, "parse feed", ue.Reason)
	})
}
