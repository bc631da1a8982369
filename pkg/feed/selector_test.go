package feed

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/domain"
)

func TestSelect(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var items []domain.Item
	for i := range 25 {
		src := "blog"
		if i%2 == 1 {
			src = "sky"
		}
		items = append(items, domain.Item{SourceName: src, Title: fmt.Sprintf("item %d", i),
			URL: fmt.Sprintf("https://example.com/%d", i), Date: base.Add(-time.Duration(i) * time.Hour)})
	}
	items[1].Title = ""

	defs := map[string]config.FeedDef{
		"z-all.xml":   {Sources: []string{"*"}},
		"a-notes.xml": {Sources: []string{"sky"}, Type: "atom"},
		"m-none.xml":  {Sources: []string{"unknown"}},
	}

	res := Select(items, defs)
	require.Len(t, res, 3)
	assert.Equal(t, "a-notes.xml", res[0].File)
	assert.Equal(t, "m-none.xml", res[1].File)
	assert.Equal(t, "z-all.xml", res[2].File)

	all := res[2].Items
	require.Len(t, all, MaxItems, "25 items capped to 20")
	assert.Equal(t, "item 0", all[0].Title)
	assert.Equal(t, "Note", all[1].Title, "empty title defaults to Note")
	assert.Equal(t, "item 19", all[19].Title)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].Date.After(all[i].Date))
	}

	notes := res[0].Items
	require.Len(t, notes, 12)
	for _, it := range notes {
		assert.Equal(t, it.URL, it.GUID)
	}
	assert.Equal(t, "atom", res[0].Def.Type)

	assert.NotNil(t, res[1].Items)
	assert.Empty(t, res[1].Items)
	assert.Empty(t, Select(items, nil))
}

func TestGUID(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "https://x", GUID(domain.Item{URL: "https://x"}))

	g1 := GUID(domain.Item{SourceName: "s", Date: d, Title: "t"})
	g2 := GUID(domain.Item{SourceName: "s", Date: d, Title: "t"})
	g3 := GUID(domain.Item{SourceName: "s", Date: d, Title: "other"})
	assert.Equal(t, g1, g2, "deterministic")
	assert.NotEqual(t, g1, g3)
	assert.True(t, strings.HasPrefix(g1, "urn:uuid:"))
}
