// Package taxonomy classifies tags into filter sections for the page.
package taxonomy

import (
	"sort"
	"strings"

	"github.com/umputun/lifestream/pkg/domain"
)

// TypeTags are built-in type tags, in display order
var TypeTags = []string{"notes", "commits", "video", "bookmark", "rss"}

// DefaultNames are display names for well-known tags
var DefaultNames = map[string]string{
	"notes":    "Notes",
	"commits":  "Commits",
	"bluesky":  "Bluesky",
	"video":    "Video",
	"bookmark": "Reading",
	"social":   "Social",
	"rss":      "RSS",
	"mastodon": "Mastodon",
	"lemmy":    "Lemmy",
}

const typeColor = "--c-accent"

// Builder classifies tags. Overrides win over everything, then default names,
// then names reported by services; a tag without a name is shown as is.
type Builder struct {
	Overrides map[string]string // explicit slug -> display name
	Names     map[string]string // service-provided natural names
	Groups    []string          // known group slugs
	Repos     []string          // known repo slugs
}

// Name resolves the display name of a tag
func (b Builder) Name(tag string) string {
	if n, ok := b.Overrides[tag]; ok && n != "" {
		return n
	}
	if n, ok := DefaultNames[tag]; ok {
		return n
	}
	if n, ok := b.Names[tag]; ok && n != "" {
		return n
	}
	return tag
}

// Category classifies a tag, first match wins: type, group, repo, topic
func (b Builder) Category(tag string) domain.TagCategory {
	switch {
	case contains(TypeTags, tag):
		return domain.CategoryType
	case contains(b.Groups, tag):
		return domain.CategoryGroup
	case contains(b.Repos, tag):
		return domain.CategoryRepo
	default:
		return domain.CategoryTopic
	}
}

// Build returns non-empty filter sections in order types, groups, repos, topics.
// Types keep the fixed TypeTags order, other sections are sorted by display name.
func (b Builder) Build(tags []string) []domain.TagSection {
	byCat := map[domain.TagCategory][]domain.Tag{}
	for _, t := range uniq(tags) {
		cat := b.Category(t)
		tag := domain.Tag{ID: t, Name: b.Name(t), Category: cat}
		if cat == domain.CategoryType {
			tag.Color = typeColor
		}
		byCat[cat] = append(byCat[cat], tag)
	}

	types := byCat[domain.CategoryType]
	sort.SliceStable(types, func(i, j int) bool { return indexOf(TypeTags, types[i].ID) < indexOf(TypeTags, types[j].ID) })

	res := make([]domain.TagSection, 0, 4)
	if len(types) > 0 {
		res = append(res, domain.TagSection{Category: domain.CategoryType, Tags: types})
	}
	for _, cat := range []domain.TagCategory{domain.CategoryGroup, domain.CategoryRepo, domain.CategoryTopic} {
		section := byCat[cat]
		if len(section) == 0 {
			continue
		}
		sort.SliceStable(section, func(i, j int) bool {
			ni, nj := strings.ToLower(section[i].Name), strings.ToLower(section[j].Name)
			if ni != nj {
				return ni < nj
			}
			return section[i].ID < section[j].ID
		})
		res = append(res, domain.TagSection{Category: cat, Tags: section})
	}
	return res
}

// CollectTags returns distinct tags of all items in first-seen order
func CollectTags(items []domain.Item) []string {
	var all []string
	for _, it := range items {
		all = append(all, it.Tags...)
	}
	return uniq(all)
}

func contains(list []string, s string) bool { return indexOf(list, s) >= 0 }

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
