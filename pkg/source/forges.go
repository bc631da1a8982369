package source

import (
	"context"
	"encoding/base64"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/domain"
	"github.com/umputun/lifestream/pkg/taxonomy"
)

const bitbucketTagsLimit = 5

// GitLab fetches project releases
type GitLab struct {
	client *Client
	cfg    config.GitLabConfig
}

// NewGitLab makes GitLab fetcher. Token is optional, public projects don't need it.
func NewGitLab(client *Client, cfg config.GitLabConfig) *GitLab {
	return &GitLab{client: client, cfg: cfg}
}

// Name returns service name
func (g *GitLab) Name() string { return string(domain.ServiceGitLab) }

// Fetch gets releases of every project
func (g *GitLab) Fetch(ctx context.Context) Result {
	if len(g.cfg.Sources) == 0 {
		return Result{Source: g.Name()}
	}
	lgr.Printf("[INFO] fetching gitlab")
	c := newCollector(domain.ServiceGitLab)
	var headers map[string]string
	if g.cfg.Token != "" {
		headers = map[string]string{"PRIVATE-TOKEN": g.cfg.Token}
	}

	for _, src := range g.cfg.Sources {
		var releases []struct {
			Name        string `json:"name"`
			TagName     string `json:"tag_name"`
			Description string `json:"description"`
			ReleasedAt  string `json:"released_at"`
			Links       struct {
				Self string `json:"self"`
			} `json:"_links"`
		}
		req := request{
			service: g.Name(),
			target:  src.ID,
			url:     instanceURL(g.cfg.Instance) + "/api/v4/projects/" + projectID(src.ID) + "/releases",
			headers: copyHeaders(headers),
		}
		if err := g.client.getJSON(ctx, req, &releases); err != nil {
			c.fail(err)
			continue
		}
		for _, r := range releases {
			c.add(domain.Item{
				SourceName: src.Name,
				Type:       domain.TypeRelease,
				Date:       parseDate(r.ReleasedAt),
				Title:      firstNonEmpty(r.Name, r.TagName),
				URL:        r.Links.Self,
				Body:       r.Description,
				Tags:       []string{"commits"},
				Origin:     &domain.Origin{Owner: "gitlab", Repo: projectName(src), Version: r.TagName},
			})
		}
	}
	return c.result()
}

// projectID escapes a project path, numeric and already escaped ids are kept
func projectID(id string) string {
	if strings.Contains(id, "%") {
		return id
	}
	return url.PathEscape(id)
}

// projectName is the last segment of project path, or source name for numeric ids
func projectName(src config.GitLabSource) string {
	id, err := url.PathUnescape(src.ID)
	if err != nil {
		id = src.ID
	}
	if _, err := strconv.Atoi(id); err == nil && src.Name != "" {
		return src.Name
	}
	return id[strings.LastIndex(id, "/")+1:]
}

// Gitea fetches repository releases from a Gitea or Forgejo instance
type Gitea struct {
	client *Client
	cfg    config.GiteaConfig
}

// NewGitea makes Gitea fetcher
func NewGitea(client *Client, cfg config.GiteaConfig) *Gitea {
	return &Gitea{client: client, cfg: cfg}
}

// Name returns service name
func (g *Gitea) Name() string { return string(domain.ServiceGitea) }

// Fetch gets the latest releases of every repository
func (g *Gitea) Fetch(ctx context.Context) Result {
	if len(g.cfg.Sources) == 0 {
		return Result{Source: g.Name()}
	}
	lgr.Printf("[INFO] fetching gitea")
	c := newCollector(domain.ServiceGitea)
	var headers map[string]string
	if g.cfg.Token != "" {
		headers = map[string]string{"Authorization": "token " + g.cfg.Token}
	}

	for _, src := range g.cfg.Sources {
		var releases []struct {
			Name        string `json:"name"`
			TagName     string `json:"tag_name"`
			Body        string `json:"body"`
			HTMLURL     string `json:"html_url"`
			PublishedAt string `json:"published_at"`
		}
		req := request{
			service: g.Name(),
			target:  src.Owner + "/" + src.Repo,
			url:     instanceURL(g.cfg.Instance) + "/api/v1/repos/" + url.PathEscape(src.Owner) + "/" + url.PathEscape(src.Repo) + "/releases?limit=5",
			headers: copyHeaders(headers),
		}
		if err := g.client.getJSON(ctx, req, &releases); err != nil {
			c.fail(err)
			continue
		}
		slug := taxonomy.Slugify(src.Repo)
		c.name(slug, src.Repo)
		for _, r := range releases {
			c.add(domain.Item{
				SourceName: src.Name,
				Type:       domain.TypeRelease,
				Date:       parseDate(r.PublishedAt),
				Title:      firstNonEmpty(r.Name, r.TagName),
				URL:        r.HTMLURL,
				Body:       r.Body,
				Tags:       []string{"commits", slug},
				Origin:     &domain.Origin{Owner: src.Owner, Repo: src.Repo, Version: r.TagName},
			})
		}
	}
	return c.result()
}

// Bitbucket fetches repository tags, the newest first
type Bitbucket struct {
	client   *Client
	endpoint string
	cfg      config.BitbucketConfig
}

// NewBitbucket makes Bitbucket fetcher. Credentials are optional, public repositories don't need them.
func NewBitbucket(client *Client, cfg config.BitbucketConfig, endpoint string) *Bitbucket {
	return &Bitbucket{client: client, cfg: cfg, endpoint: strings.TrimRight(endpoint, "/")}
}

// Name returns service name
func (b *Bitbucket) Name() string { return string(domain.ServiceBitbucket) }

// Fetch gets the latest tags of every repository
func (b *Bitbucket) Fetch(ctx context.Context) Result {
	if len(b.cfg.Sources) == 0 {
		return Result{Source: b.Name()}
	}
	lgr.Printf("[INFO] fetching bitbucket")
	c := newCollector(domain.ServiceBitbucket)
	var headers map[string]string
	if b.cfg.AppPassword != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(b.cfg.Username + ":" + b.cfg.AppPassword))
		headers = map[string]string{"Authorization": "Basic " + auth}
	}

	for _, src := range b.cfg.Sources {
		var resp struct {
			Values *[]struct {
				Name    string `json:"name"`
				Message string `json:"message"`
				Target  struct {
					Date string `json:"date"`
				} `json:"target"`
				Links struct {
					HTML struct {
						Href string `json:"href"`
					} `json:"html"`
				} `json:"links"`
			} `json:"values"`
		}
		target := src.Workspace + "/" + src.RepoSlug
		req := request{
			service: b.Name(),
			target:  target,
			url:     b.endpoint + "/2.0/repositories/" + target + "/refs/tags?sort=-target.date",
			headers: copyHeaders(headers),
		}
		if err := b.client.getJSON(ctx, req, &resp); err != nil {
			c.fail(err)
			continue
		}
		if resp.Values == nil {
			c.fail(&UpstreamDataError{Service: b.Name(), Target: target, Reason: "no values in response"})
			continue
		}

		slug := taxonomy.Slugify(src.RepoSlug)
		c.name(slug, src.RepoSlug)
		tags := *resp.Values
		if len(tags) > bitbucketTagsLimit {
			tags = tags[:bitbucketTagsLimit]
		}
		for _, t := range tags {
			c.add(domain.Item{
				SourceName: src.Name,
				Type:       domain.TypeRelease,
				Date:       parseDate(t.Target.Date),
				Title:      t.Name,
				URL:        t.Links.HTML.Href,
				Body:       firstNonEmpty(strings.TrimSpace(t.Message), "Tag release"),
				Tags:       []string{"commits", slug},
				Origin:     &domain.Origin{Owner: src.Workspace, Repo: src.RepoSlug, Version: t.Name},
			})
		}
	}
	return c.result()
}

// copyHeaders returns a copy, as request mutates headers it gets
func copyHeaders(h map[string]string) map[string]string {
	res := make(map[string]string, len(h)+1)
	for k, v := range h {
		res[k] = v
	}
	return res
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
