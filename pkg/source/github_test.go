package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/domain"
)

// fakeGraphQL serves status and repository queries; repos maps "owner/name" to pages
// keyed by the "after" cursor ("" for the first page)
type fakeGraphQL struct {
	mu      sync.Mutex
	status  string
	repos   map[string]map[string]string
	calls   []string
	authHdr string
}

func (f *fakeGraphQL) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.authHdr = r.Header.Get("Authorization")

	if strings.Contains(req.Query, "user(login:") {
		f.calls = append(f.calls, "status")
		if f.status == "" {
			fmt.Fprint(w, `{"data":{"user":{"status":null}}}`)
			return
		}
		fmt.Fprint(w, f.status)
		return
	}

	repo := fmt.Sprintf("%v/%v", req.Variables["owner"], req.Variables["name"])
	after, _ := req.Variables["after"].(string)
	f.calls = append(f.calls, repo+"@"+after)
	pages, ok := f.repos[repo]
	if !ok {
		fmt.Fprint(w, `{"data":{"repository":null},"errors":[{"message":"Could not resolve to a Repository"}]}`)
		return
	}
	page, ok := pages[after]
	if !ok {
		http.Error(w, "unknown cursor", http.StatusBadGateway)
		return
	}
	fmt.Fprint(w, page)
}

func discussionJSON(title, category, date string, labels ...string) string {
	ll := make([]string, 0, len(labels))
	for _, l := range labels {
		ll = append(ll, fmt.Sprintf(`{"name":%q}`, l))
	}
	return fmt.Sprintf(`{"title":%q,"url":"https://github.com/x/%s","createdAt":%q,"body":"body of %s",
		"category":{"name":%q},"labels":{"nodes":[%s]},"comments":{"totalCount":2},"reactions":{"totalCount":5}}`,
		title, strings.ReplaceAll(title, " ", "-"), date, title, category, strings.Join(ll, ","))
}

func repoJSON(discussions []string, hasNext bool, cursor string, issues, releases []string) string {
	return fmt.Sprintf(`{"data":{"repository":{
		"discussions":{"pageInfo":{"hasNextPage":%t,"endCursor":%q},"nodes":[%s]},
		"issues":{"nodes":[%s]},
		"releases":{"nodes":[%s]}}}}`,
		hasNext, cursor, strings.Join(discussions, ","), strings.Join(issues, ","), strings.Join(releases, ","))
}

func newTestGitHub(t *testing.T, f *fakeGraphQL, cfg config.GitHubConfig, profile domain.Profile) *GitHub {
	t.Helper()
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)
	return NewGitHub(NewClient(5*time.Second, "test"), cfg, profile, ts.URL)
}

func TestGitHub_Fetch(t *testing.T) {
	f := &fakeGraphQL{
		status: `{"data":{"user":{"status":{"emoji":":coffee:","message":"brewing","indicatesLimitedAvailability":true}}}}`,
		repos: map[string]map[string]string{
			"umputun/blog": {
				"": repoJSON([]string{
					discussionJSON("first note", "Notes", "2024-03-02T10:00:00Z", "Golang", "tips"),
					discussionJSON("draft thing", "Drafts", "2024-03-01T10:00:00Z"),
					discussionJSON("now one", "Now", "2024-02-01T10:00:00Z"),
				}, true, "c2",
					[]string{`{"title":"bug","url":"https://github.com/x/i1","createdAt":"2024-01-05T00:00:00Z","body":"b",
						"labels":{"nodes":[{"name":"bug"}]},"comments":{"totalCount":1},"reactions":{"totalCount":0}}`},
					[]string{`{"tagName":"v1.2.0","url":"https://github.com/x/r1","publishedAt":"2024-01-10T00:00:00Z","description":"notes","name":""}`}),
				"c2": repoJSON([]string{
					discussionJSON("old article", "General", "2023-05-01T10:00:00Z"),
					discussionJSON("now two", "Now", "2024-02-10T10:00:00Z"),
				}, false, "", nil, nil),
			},
		},
	}
	cfg := config.GitHubConfig{
		Token:   "secret",
		Sources: []config.GitHubSource{{Name: "umputun", Owner: "umputun", Repos: []string{"blog"}, Issues: true}},
	}
	gh := newTestGitHub(t, f, cfg, domain.Profile{GitHubUsername: "umputun"})

	res := gh.Fetch(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, "github", res.Source)
	assert.Equal(t, "bearer secret", f.authHdr)
	assert.Equal(t, []string{"status", "umputun/blog@", "umputun/blog@c2"}, f.calls)

	require.NotNil(t, res.Status)
	assert.Equal(t, domain.Status{Emoji: ":coffee:", Message: "brewing", LimitedAvailability: true}, *res.Status)

	require.NotNil(t, res.Now)
	assert.Equal(t, "body of now two", res.Now.Body, "latest now post wins across pages")

	require.Len(t, res.Items, 4, "draft and now posts are not items")
	byTitle := map[string]domain.Item{}
	for _, it := range res.Items {
		byTitle[it.Title] = it
		assert.Equal(t, domain.ServiceGitHub, it.Service)
		assert.Equal(t, "umputun", it.SourceName)
		require.NotNil(t, it.Origin)
		assert.Equal(t, "blog", it.Origin.Repo)
	}

	note := byTitle["first note"]
	assert.Equal(t, domain.TypeNote, note.Type)
	assert.Equal(t, []string{"blog", "gol", "tip"}, note.Tags)
	assert.Equal(t, 2, *note.Metrics.Comments)
	assert.Equal(t, 5, *note.Metrics.Reactions)

	assert.Equal(t, domain.TypeArticle, byTitle["old article"].Type)

	issue := byTitle["bug"]
	assert.Equal(t, domain.TypeArticle, issue.Type)
	assert.Equal(t, []string{"blog", "issue", "bug"}, issue.Tags)

	rel := byTitle["v1.2.0"]
	assert.Equal(t, domain.TypeRelease, rel.Type)
	assert.Equal(t, "v1.2.0", rel.Origin.Version)
	assert.Equal(t, []string{"commits", "blog"}, rel.Tags)
	assert.Nil(t, rel.Metrics.Comments)

	assert.Equal(t, "blog", res.TagNames["blog"])
	assert.Equal(t, "GOL", res.TagNames["gol"])
	assert.Equal(t, "TIP", res.TagNames["tip"])
}

func TestGitHub_FetchGroupsAndPagesRepo(t *testing.T) {
	f := &fakeGraphQL{
		repos: map[string]map[string]string{
			"umputun/umputun.github.io": {"": repoJSON([]string{
				discussionJSON("hello", "Announcements", "2024-04-01T00:00:00Z"),
			}, false, "", nil, nil)},
			"umputun/remark": {"": repoJSON(nil, false, "", nil,
				[]string{`{"tagName":"v2","url":"u","publishedAt":"2024-01-01T00:00:00Z","description":"","name":"Release 2"}`})},
		},
	}
	cfg := config.GitHubConfig{
		Token: "t",
		Sources: []config.GitHubSource{
			{Name: "umputun", Owner: "umputun", Repos: []string{"umputun.github.io", "remark"}},
		},
		Groups: map[string][]string{"Comments Engine": {"umputun/remark"}},
	}
	gh := newTestGitHub(t, f, cfg, domain.Profile{Socials: []domain.Social{{Name: "GitHub", URL: "https://github.com/umputun/"}}})

	res := gh.Fetch(context.Background())
	require.NoError(t, res.Err)
	require.NotNil(t, res.Now)
	assert.Equal(t, "body of hello", res.Now.Body)
	assert.Nil(t, res.Status)

	require.Len(t, res.Items, 1)
	assert.Equal(t, "Release 2", res.Items[0].Title)
	assert.Equal(t, []string{"commits", "comments-engine"}, res.Items[0].Tags, "repo slug replaced by group")
	assert.Equal(t, "Comments Engine", res.TagNames["comments-engine"])
}

func TestGitHub_FetchRepoErrorIsolated(t *testing.T) {
	f := &fakeGraphQL{
		repos: map[string]map[string]string{
			"o/good": {"": repoJSON([]string{discussionJSON("ok", "General", "2024-01-01T00:00:00Z")}, false, "", nil, nil)},
		},
	}
	cfg := config.GitHubConfig{Token: "t", Sources: []config.GitHubSource{{Name: "o", Owner: "o", Repos: []string{"missing", "good"}}}}
	gh := newTestGitHub(t, f, cfg, domain.Profile{})

	res := gh.Fetch(context.Background())
	require.Error(t, res.Err)
	assert.True(t, res.Partial())
	assert.Contains(t, res.Err.Error(), "repository not found or access denied")
	assert.Contains(t, res.Err.Error(), "Could not resolve to a Repository")
	require.Len(t, res.Items, 1)
	assert.Equal(t, "ok", res.Items[0].Title)
}

func TestGitHub_FetchDisabledParts(t *testing.T) {
	off := false
	f := &fakeGraphQL{
		repos: map[string]map[string]string{
			"o/r": {"": repoJSON([]string{discussionJSON("d", "General", "2024-01-01T00:00:00Z")}, true, "next",
				[]string{`{"title":"i","url":"u","createdAt":"2024-01-01T00:00:00Z","body":"","labels":{"nodes":[]},"comments":{"totalCount":0},"reactions":{"totalCount":0}}`},
				[]string{`{"tagName":"v1","url":"u","publishedAt":"2024-01-01T00:00:00Z"}`})},
		},
	}
	cfg := config.GitHubConfig{Token: "t", Sources: []config.GitHubSource{
		{Name: "o", Owner: "o", Repos: []string{"r"}, Discussions: &off, Releases: &off},
	}}
	gh := newTestGitHub(t, f, cfg, domain.Profile{})

	res := gh.Fetch(context.Background())
	require.NoError(t, res.Err)
	assert.Empty(t, res.Items, "issues are opt-in, discussions and releases disabled")
	assert.Equal(t, []string{"o/r@"}, f.calls, "no paging with discussions disabled")
}

func TestGitHub_FetchSkips(t *testing.T) {
	f := &fakeGraphQL{}
	t.Run("no token", func(t *testing.T) {
		gh := newTestGitHub(t, f, config.GitHubConfig{Sources: []config.GitHubSource{{Owner: "o", Repos: []string{"r"}}}}, domain.Profile{})
		res := gh.Fetch(context.Background())
		assert.NoError(t, res.Err)
		assert.Empty(t, res.Items)
	})
	t.Run("no sources", func(t *testing.T) {
		gh := newTestGitHub(t, f, config.GitHubConfig{Token: "t"}, domain.Profile{})
		res := gh.Fetch(context.Background())
		assert.NoError(t, res.Err)
		assert.Empty(t, res.Items)
	})
	assert.Empty(t, f.calls)
}

func TestClassifyDiscussion(t *testing.T) {
	tbl := []struct {
		category, repo string
		want           discussionKind
	}{
		{"now", "a/b", kindNow},
		{"announcements", "u/u.github.io", kindNow},
		{"announcements", "a/b", kindArticle},
		{"drafts", "a/b", kindDraft},
		{"notes", "a/b", kindNote},
		{"general", "a/b", kindArticle},
		{"", "a/b", kindArticle},
	}
	for _, tt := range tbl {
		t.Run(tt.category+"@"+tt.repo, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyDiscussion(tt.category, tt.repo, "u/u.github.io"))
		})
	}
}
