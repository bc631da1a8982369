package source

import (
	"context"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/domain"
	"github.com/umputun/lifestream/pkg/taxonomy"
)

const repoQuery = `query($owner: String!, $name: String!, $after: String) {
  repository(owner: $owner, name: $name) {
    discussions(first: 100, orderBy: {field: CREATED_AT, direction: DESC}, after: $after) {
      pageInfo { hasNextPage, endCursor }
      nodes { title, url, createdAt, body, author { login }, category { name }, labels(first: 5) { nodes { name } }, comments { totalCount }, reactions { totalCount } }
    }
    issues(first: 10, orderBy: {field: CREATED_AT, direction: DESC}) { nodes { title, url, createdAt, body, author { login }, labels(first: 5) { nodes { name } }, comments { totalCount }, reactions { totalCount } } }
    releases(first: 5, orderBy: {field: CREATED_AT, direction: DESC}) { nodes { tagName, url, publishedAt, description, name } }
  }
}`

const statusQuery = `query($user: String!) { user(login: $user) { status { emoji, message, indicatesLimitedAvailability } } }`

const labelSlugLen = 3

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type repositoryNode struct {
	Discussions *discussionConnection `json:"discussions"`
	Issues      *issueConnection      `json:"issues"`
	Releases    *releaseConnection    `json:"releases"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type discussionConnection struct {
	PageInfo pageInfo         `json:"pageInfo"`
	Nodes    []discussionNode `json:"nodes"`
}

type issueConnection struct {
	Nodes []discussionNode `json:"nodes"`
}

type releaseConnection struct {
	Nodes []releaseNode `json:"nodes"`
}

type totalCount struct {
	TotalCount int `json:"totalCount"`
}

type labelConnection struct {
	Nodes []struct {
		Name string `json:"name"`
	} `json:"nodes"`
}

// discussionNode is shared by discussions and issues, issues have no category
type discussionNode struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	CreatedAt string `json:"createdAt"`
	Body      string `json:"body"`
	Category  *struct {
		Name string `json:"name"`
	} `json:"category"`
	Labels    labelConnection `json:"labels"`
	Comments  totalCount      `json:"comments"`
	Reactions totalCount      `json:"reactions"`
}

func (d discussionNode) category() string {
	if d.Category == nil {
		return ""
	}
	return strings.ToLower(d.Category.Name)
}

type releaseNode struct {
	TagName     string `json:"tagName"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Description string `json:"description"`
	Name        string `json:"name"`
}

// discussionKind is what a discussion turns into
type discussionKind int

const (
	kindArticle discussionKind = iota
	kindNote
	kindNow
	kindDraft
)

// classifyDiscussion decides what to do with a discussion of the given repository.
// "now" discussions anywhere, and announcements in the pages repo, feed the now post.
func classifyDiscussion(category, fullRepo, pagesRepo string) discussionKind {
	switch {
	case pagesRepo != "" && strings.EqualFold(fullRepo, pagesRepo) && category == "announcements":
		return kindNow
	case category == "now":
		return kindNow
	case category == "drafts":
		return kindDraft
	case category == "notes":
		return kindNote
	}
	return kindArticle
}

// GitHub fetches discussions, issues and releases via GraphQL, and the profile status
type GitHub struct {
	client   *Client
	endpoint string
	cfg      config.GitHubConfig
	user     string
	pages    string
}

// NewGitHub makes GitHub fetcher. Profile defines the primary user for status and the pages repo.
func NewGitHub(client *Client, cfg config.GitHubConfig, profile domain.Profile, endpoint string) *GitHub {
	return &GitHub{client: client, endpoint: endpoint, cfg: cfg, user: profile.PrimaryGitHubUser(), pages: profile.PagesRepo()}
}

// Name returns service name
func (g *GitHub) Name() string { return string(domain.ServiceGitHub) }

// Fetch collects all configured repositories one by one. Each repository is paginated
// sequentially; a failing repository is logged and doesn't affect others.
func (g *GitHub) Fetch(ctx context.Context) Result {
	if len(g.cfg.Sources) == 0 {
		return Result{Source: g.Name()}
	}
	if g.cfg.Token == "" {
		lgr.Printf("[INFO] github: no token, skipping")
		return Result{Source: g.Name()}
	}

	lgr.Printf("[INFO] fetching github")
	c := newCollector(domain.ServiceGitHub)
	status := g.fetchStatus(ctx, c)

	var now *domain.NowPost
	for _, src := range g.cfg.Sources {
		for _, repo := range src.Repos {
			now = g.fetchRepo(ctx, c, src, repo, now)
		}
	}

	res := c.result()
	res.Status = status
	res.Now = now
	return res
}

// fetchRepo paginates a single repository and returns the now post, updated if
// the repository had a newer one
func (g *GitHub) fetchRepo(ctx context.Context, c *collector, src config.GitHubSource, repo string, now *domain.NowPost) *domain.NowPost {
	fullRepo := src.Owner + "/" + repo
	repoSlug := taxonomy.Slugify(repo)
	c.name(repoSlug, repo)

	groups := taxonomy.Groups(g.cfg.Groups).For(src.Owner, repo)
	for _, m := range groups {
		c.name(m.Slug, m.Name)
	}

	emit := func(item domain.Item) {
		item.SourceName = src.Name
		origin := domain.Origin{Owner: src.Owner, Repo: repo}
		if item.Origin != nil {
			origin.Version = item.Origin.Version
		}
		item.Origin = &origin
		item.Tags = taxonomy.Apply(item.Tags, repoSlug, groups)
		c.add(item)
		lgr.Printf("[DEBUG] collected: %s from %s", item.Type, repo)
	}

	consume := func(page Page, first bool) {
		r := page.Repository
		if r.Discussions != nil {
			for _, d := range r.Discussions.Nodes {
				switch classifyDiscussion(d.category(), fullRepo, g.pages) {
				case kindNow:
					now = newerNow(now, d)
				case kindDraft:
					continue
				case kindNote:
					emit(g.discussionItem(c, d, domain.TypeNote, repoSlug))
				default:
					emit(g.discussionItem(c, d, domain.TypeArticle, repoSlug))
				}
			}
		}

		// issues and releases are not paged, taken from the first page only
		if !first {
			return
		}
		if src.Issues && r.Issues != nil {
			for _, i := range r.Issues.Nodes {
				emit(g.discussionItem(c, i, domain.TypeArticle, repoSlug, "issue"))
			}
		}
		if src.ReleasesEnabled() && r.Releases != nil {
			for _, rel := range r.Releases.Nodes {
				emit(releaseItem(rel, repoSlug))
			}
		}
	}

	st := Paginate(func(cursor *string) Page { return g.queryPage(ctx, src, repo, cursor) }, consume)
	if st.Err != nil {
		c.fail(st.Err)
	}
	lgr.Printf("[DEBUG] github %s: %d pages, %s", fullRepo, st.Pages, st.Phase)
	return now
}

// queryPage requests one page of repository data
func (g *GitHub) queryPage(ctx context.Context, src config.GitHubSource, repo string, cursor *string) Page {
	target := src.Owner + "/" + repo
	var resp struct {
		Data *struct {
			Repository *repositoryNode `json:"repository"`
		} `json:"data"`
		Errors []graphqlError `json:"errors"`
	}

	req := request{
		service: g.Name(),
		target:  target,
		url:     g.endpoint,
		headers: map[string]string{"Authorization": "bearer " + g.cfg.Token},
		body: graphqlRequest{Query: repoQuery, Variables: map[string]any{
			"owner": src.Owner,
			"name":  repo,
			"after": cursor,
		}},
	}
	if err := g.client.postJSON(ctx, req, &resp); err != nil {
		return Page{Target: target, Err: err}
	}

	page := Page{Target: target}
	for _, e := range resp.Errors {
		page.Errors = append(page.Errors, e.Message)
	}
	if resp.Data != nil {
		page.HasData = true
		page.Repository = resp.Data.Repository
	}
	if page.Repository != nil && !src.DiscussionsEnabled() {
		page.Repository.Discussions = nil
	}
	return page
}

// fetchStatus gets profile status of the primary user, nil if not set
func (g *GitHub) fetchStatus(ctx context.Context, c *collector) *domain.Status {
	if g.user == "" {
		return nil
	}

	var resp struct {
		Data *struct {
			User *struct {
				Status *struct {
					Emoji                        string `json:"emoji"`
					Message                      string `json:"message"`
					IndicatesLimitedAvailability bool   `json:"indicatesLimitedAvailability"`
				} `json:"status"`
			} `json:"user"`
		} `json:"data"`
	}
	req := request{
		service: g.Name(),
		target:  "status of " + g.user,
		url:     g.endpoint,
		headers: map[string]string{"Authorization": "bearer " + g.cfg.Token},
		body:    graphqlRequest{Query: statusQuery, Variables: map[string]any{"user": g.user}},
	}
	if err := g.client.postJSON(ctx, req, &resp); err != nil {
		c.fail(err)
		return nil
	}
	if resp.Data == nil || resp.Data.User == nil || resp.Data.User.Status == nil {
		lgr.Printf("[DEBUG] github: no status for %s", g.user)
		return nil
	}
	s := resp.Data.User.Status
	return &domain.Status{Emoji: s.Emoji, Message: s.Message, LimitedAvailability: s.IndicatesLimitedAvailability}
}

// discussionItem makes item from a discussion or issue. Labels become 3-letter tags
// with uppercase names.
func (g *GitHub) discussionItem(c *collector, d discussionNode, typ domain.ItemType, repoSlug string, extra ...string) domain.Item {
	tags := append([]string{repoSlug}, extra...)
	for _, l := range d.Labels.Nodes {
		slug := taxonomy.Truncate(taxonomy.Slugify(l.Name), labelSlugLen)
		tags = append(tags, slug)
		c.name(slug, strings.ToUpper(taxonomy.Truncate(l.Name, labelSlugLen)))
	}
	return domain.Item{
		Type:  typ,
		Date:  parseDate(d.CreatedAt),
		Title: d.Title,
		URL:   d.URL,
		Body:  d.Body,
		Tags:  tags,
		Metrics: domain.Metrics{
			Comments:  domain.IntPtr(d.Comments.TotalCount),
			Reactions: domain.IntPtr(d.Reactions.TotalCount),
		},
	}
}

func releaseItem(r releaseNode, repoSlug string) domain.Item {
	title := r.Name
	if title == "" {
		title = r.TagName
	}
	return domain.Item{
		Type:   domain.TypeRelease,
		Date:   parseDate(r.PublishedAt),
		Title:  title,
		URL:    r.URL,
		Body:   r.Description,
		Tags:   []string{"commits", repoSlug},
		Origin: &domain.Origin{Version: r.TagName},
	}
}

// newerNow returns the later of the current now post and the discussion
func newerNow(cur *domain.NowPost, d discussionNode) *domain.NowPost {
	date, ok := parseTime(d.CreatedAt)
	if !ok {
		lgr.Printf("[WARN] github: now post %q without valid date, ignored", d.Title)
		return cur
	}
	if cur != nil && !date.After(cur.Date) {
		lgr.Printf("[DEBUG] github: now post %q is older than current one, ignored", d.Title)
		return cur
	}
	if cur != nil {
		lgr.Printf("[DEBUG] github: now post from %s replaced by %q", cur.Date.Format("2006-01-02"), d.Title)
	}
	return &domain.NowPost{Body: d.Body, Date: date}
}
