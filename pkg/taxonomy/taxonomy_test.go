package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/lifestream/pkg/domain"
)

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"notes", "notes"},
		{"My Repo", "my-repo"},
		{"go-pkgz/lgr", "go-pkgz-lgr"},
		{"C++", "c-"},
		{"Hello,  World!", "hello-world-"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "enh", Truncate("enhancement", 3))
	assert.Equal(t, "go", Truncate("go", 3))
	assert.Equal(t, "привет"[:6], Truncate("привет", 3))
}

func TestGroups_For(t *testing.T) {
	g := Groups{
		"My Group": {"jane/my-repo", "other"},
		"All":      {"my-repo"},
		"Nope":     {"bob/my-repo"},
	}
	matches := g.For("jane", "my-repo")
	require.Len(t, matches, 2)
	assert.Equal(t, Match{Name: "All", Slug: "all"}, matches[0])
	assert.Equal(t, Match{Name: "My Group", Slug: "my-group"}, matches[1])

	assert.Empty(t, g.For("jane", "unknown"))
	assert.Len(t, g.For("alice", "other"), 1, "bare names match any owner")
	assert.Equal(t, []string{"all", "my-group", "nope"}, g.Slugs())
}

func TestApply(t *testing.T) {
	t.Run("no groups keeps repo tag", func(t *testing.T) {
		assert.Equal(t, []string{"my-repo", "fea"}, Apply([]string{"my-repo", "fea"}, "my-repo", nil))
	})

	t.Run("group suppresses repo tag", func(t *testing.T) {
		got := Apply([]string{"my-repo", "fea"}, "my-repo", []Match{{Name: "My Group", Slug: "my-group"}})
		assert.Equal(t, []string{"fea", "my-group"}, got)
	})

	t.Run("group with same slug as repo", func(t *testing.T) {
		got := Apply([]string{"my-repo", "commits"}, "my-repo", []Match{{Name: "my-repo", Slug: "my-repo"}})
		assert.Equal(t, []string{"my-repo", "commits"}, got)
	})

	t.Run("duplicates removed", func(t *testing.T) {
		got := Apply([]string{"commits", "commits", "x"}, "x", []Match{{Slug: "g"}, {Slug: "g"}})
		assert.Equal(t, []string{"commits", "g"}, got)
	})
}

func TestBuilder_Build(t *testing.T) {
	b := Builder{
		Overrides: map[string]string{"fea": "Features"},
		Names:     map[string]string{"my-repo": "My Repo", "my-group": "My Group", "fea": "FEA", "bug": "BUG"},
		Groups:    []string{"my-group"},
		Repos:     []string{"my-repo", "zed"},
	}

	sections := b.Build([]string{"zed", "rss", "bug", "my-group", "notes", "fea", "my-repo", "notes", "commits", "alpha"})
	require.Len(t, sections, 4)

	assert.Equal(t, domain.CategoryType, sections[0].Category)
	assert.Equal(t, []domain.Tag{
		{ID: "notes", Name: "Notes", Category: domain.CategoryType, Color: "--c-accent"},
		{ID: "commits", Name: "Commits", Category: domain.CategoryType, Color: "--c-accent"},
		{ID: "rss", Name: "RSS", Category: domain.CategoryType, Color: "--c-accent"},
	}, sections[0].Tags)

	assert.Equal(t, domain.CategoryGroup, sections[1].Category)
	assert.Equal(t, []domain.Tag{{ID: "my-group", Name: "My Group", Category: domain.CategoryGroup}}, sections[1].Tags)

	assert.Equal(t, domain.CategoryRepo, sections[2].Category)
	assert.Equal(t, []string{"my-repo", "zed"}, ids(sections[2].Tags))

	assert.Equal(t, domain.CategoryTopic, sections[3].Category)
	assert.Equal(t, []string{"alpha", "bug", "fea"}, ids(sections[3].Tags))
	assert.Equal(t, "Features", sections[3].Tags[2].Name, "override wins over service name")
}

func TestBuilder_Category(t *testing.T) {
	b := Builder{Groups: []string{"my-group", "both"}, Repos: []string{"my-repo", "both", "notes"}}
	assert.Equal(t, domain.CategoryType, b.Category("notes"), "types win over repos")
	assert.Equal(t, domain.CategoryGroup, b.Category("my-group"))
	assert.Equal(t, domain.CategoryGroup, b.Category("both"), "groups win over repos")
	assert.Equal(t, domain.CategoryRepo, b.Category("my-repo"))
	assert.Equal(t, domain.CategoryTopic, b.Category("something"))
}

func TestBuilder_Name(t *testing.T) {
	b := Builder{Overrides: map[string]string{"notes": "Posts"}, Names: map[string]string{"bookmark": "Bookmarks", "x": "X-Name"}}
	assert.Equal(t, "Posts", b.Name("notes"))
	assert.Equal(t, "Reading", b.Name("bookmark"), "default names win over service names")
	assert.Equal(t, "X-Name", b.Name("x"))
	assert.Equal(t, "plain", b.Name("plain"))
}

func TestBuilder_BuildEmpty(t *testing.T) {
	assert.Empty(t, Builder{}.Build(nil))
	sections := Builder{}.Build([]string{"go"})
	require.Len(t, sections, 1)
	assert.Equal(t, domain.CategoryTopic, sections[0].Category)
}

func TestCollectTags(t *testing.T) {
	items := []domain.Item{{Tags: []string{"a", "b"}}, {Tags: []string{"b", "c"}}, {}}
	assert.Equal(t, []string{"a", "b", "c"}, CollectTags(items))
}

func ids(tags []domain.Tag) []string {
	res := make([]string, 0, len(tags))
	for _, t := range tags {
		res = append(res, t.ID)
	}
	return res
}
