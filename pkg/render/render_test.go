package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/domain"
)

func TestRenderer_Markdown(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	tbl := []struct {
		name, in, want string
	}{
		{"emphasis", "some **bold** text", "<p>some <strong>bold</strong> text</p>"},
		{"emoji", "hi :coffee:", "☕"},
		{"linkify", "see https://example.com now", `<a href="https://example.com">https://example.com</a>`},
		{"raw html kept", `<span class="x">raw</span>`, `<span class="x">raw</span>`},
		{"strikethrough", "~~old~~", "<del>old</del>"},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Markdown(tt.in)
			require.NoError(t, err)
			assert.Contains(t, res, tt.want)
		})
	}

	assert.Equal(t, "☕", r.MarkdownInline(":coffee:"))
	assert.Equal(t, "<em>a</em>", r.MarkdownInline("*a*"))
	assert.Equal(t, "", r.MarkdownInline(""))
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "1 comment", Pluralize(1, "comment"))
	assert.Equal(t, "0 comments", Pluralize(0, "comment"))
	assert.Equal(t, "3 replies", Pluralize(3, "reply", "replies"))
	assert.Equal(t, "1 reply", Pluralize(1, "reply", "replies"))
}

func TestYearRange(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2019–2026", YearRange(2019, now))
	assert.Equal(t, "2026", YearRange(2026, now))
	assert.Equal(t, "2026", YearRange(0, now))
}

func TestFeedLinks(t *testing.T) {
	links := FeedLinks(map[string]config.FeedDef{
		"rss.xml":  {Title: "All", Type: "rss"},
		"atom.xml": {Type: "atom"},
	})
	assert.Equal(t, []domain.FeedLink{
		{File: "atom.xml", Type: "atom", Mime: "application/atom+xml"},
		{File: "rss.xml", Title: "All", Type: "rss", Mime: "application/rss+xml"},
	}, links)
	assert.Empty(t, FeedLinks(nil))
}

func TestRenderer_Data(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	now := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)
	in := Input{
		Profile:   domain.Profile{Name: "U", CopyrightStart: 2020},
		Feeds:     map[string]config.FeedDef{"rss.xml": {Type: "rss"}},
		Tags:      []string{"notes", "blog"},
		Status:    &domain.Status{Message: "busy", LimitedAvailability: true},
		BuildTime: now,
	}
	data := r.Data(in)
	assert.Equal(t, "2020–2025", data.YearRange)
	assert.Equal(t, []string{"notes", "blog"}, data.Filters)
	require.Len(t, data.Feeds, 1)
	require.NotNil(t, data.Status)
	assert.Equal(t, "💭", data.Status.Emoji)
	assert.Equal(t, "status-busy", data.Status.BusyClass)
	assert.NotNil(t, data.Timeline)

	in.Status = &domain.Status{Emoji: ":rocket:", Message: "shipping"}
	data = r.Data(in)
	assert.Equal(t, "🚀", data.Status.Emoji)
	assert.Empty(t, data.Status.BusyClass)

	in.Status = nil
	assert.Nil(t, r.Data(in).Status)
}

func TestRenderer_Render(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	d := time.Date(2024, 2, 3, 10, 0, 0, 0, time.UTC)
	img := "https://img.example.com/1.png"
	data := r.Data(Input{
		Profile:  domain.Profile{Name: "Umputun", Tagline: "code & notes", URL: "https://example.com", CopyrightStart: 2020},
		Feeds:    map[string]config.FeedDef{"feed.xml": {Title: "Everything", Type: "rss"}},
		Tags:     []string{"notes"},
		Sections: []domain.TagSection{{Category: domain.CategoryType, Tags: []domain.Tag{{ID: "notes", Name: "Notes", Category: domain.CategoryType, Color: "--c-accent"}}}},
		Timeline: []domain.YearBucket{{Year: 2024, Items: []domain.Entry{
			{Item: domain.Item{Type: domain.TypeArticle, Title: "Hello <world>", URL: "https://example.com/hello", Date: d,
				Body: "# Head\nfirst **para**", Image: &img, Metrics: domain.Metrics{Comments: domain.IntPtr(1), Reactions: domain.IntPtr(4)}},
				ID: "entry-2024-02-03-0", TagClasses: "tag-notes", SourceLabel: "blog", Summary: "first **para**"},
		}}},
		Status:    &domain.Status{Emoji: ":coffee:", Message: "brewing"},
		Now:       &domain.NowPost{Body: "working on *things*", Date: d},
		BuildTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	out, err := r.Render(data)
	require.NoError(t, err)
	page := string(out)

	assert.Contains(t, page, `<title>Umputun</title>`)
	assert.Contains(t, page, `title="Everything" href="feed.xml">`)
	assert.Contains(t, page, `Hello &lt;world&gt;`)
	assert.Contains(t, page, `id="entry-2024-02-03-0"`)
	assert.Contains(t, page, `class="entry tag-notes"`)
	assert.Contains(t, page, `first <strong>para</strong>`)
	assert.Contains(t, page, `working on <em>things</em>`)
	assert.Contains(t, page, `☕ brewing`)
	assert.Contains(t, page, `<span>1 comment</span>`)
	assert.Contains(t, page, `<span>4 reactions</span>`)
	assert.Contains(t, page, `src="https://img.example.com/1.png"`)
	assert.Contains(t, page, `data-filter="notes"`)
	assert.Contains(t, page, `© 2020–2025 Umputun`)
	assert.NotContains(t, page, "<no value>")
}

func TestNew_CustomTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.html")
	require.NoError(t, os.WriteFile(path, []byte(`<h1>{{.Profile.Name}}</h1>{{range .Filters}}[{{.}}]{{end}} {{pluralize 2 "item"}}`), 0o600))

	r, err := New(path)
	require.NoError(t, err)
	out, err := r.Render(domain.RenderData{Profile: domain.Profile{Name: "X"}, Filters: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "<h1>X</h1>[a][b] 2 items", string(out))

	t.Run("missing file", func(t *testing.T) {
		_, err := New(filepath.Join(dir, "nope.html"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read template")
	})

	t.Run("broken template", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.html")
		require.NoError(t, os.WriteFile(bad, []byte(`{{.Profile.Name`), 0o600))
		_, err := New(bad)
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "parse template"))
	})
}
