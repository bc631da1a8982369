package taxonomy

import "sort"

// Groups maps a group name to its member repositories. A member is either
// "owner/repo" or a bare repo name matching any owner.
type Groups map[string][]string

// Match is a group a repository belongs to
type Match struct {
	Name string
	Slug string
}

// For returns groups the repository belongs to, ordered by group name
func (g Groups) For(owner, repo string) []Match {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)

	full := owner + "/" + repo
	var res []Match
	for _, name := range names {
		for _, member := range g[name] {
			if member == full || member == repo {
				res = append(res, Match{Name: name, Slug: Slugify(name)})
				break
			}
		}
	}
	return res
}

// Slugs returns slugs of all configured groups
func (g Groups) Slugs() []string {
	res := make([]string, 0, len(g))
	for name := range g {
		res = append(res, Slugify(name))
	}
	sort.Strings(res)
	return res
}

// Apply adds group slugs to tags. Groups act as a categorical overlay: once a
// repository belongs to any group its own repo tag is dropped, unless one of
// the group slugs is the same as the repo slug. The result has no duplicates.
func Apply(tags []string, repoSlug string, groups []Match) []string {
	res := make([]string, 0, len(tags)+len(groups))
	res = append(res, tags...)
	keepRepo := len(groups) == 0
	for _, m := range groups {
		res = append(res, m.Slug)
		if m.Slug == repoSlug {
			keepRepo = true
		}
	}
	if !keepRepo {
		filtered := res[:0]
		for _, t := range res {
			if t != repoSlug {
				filtered = append(filtered, t)
			}
		}
		res = filtered
	}
	return uniq(res)
}

func uniq(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	res := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok || t == "" {
			continue
		}
		seen[t] = struct{}{}
		res = append(res, t)
	}
	return res
}
