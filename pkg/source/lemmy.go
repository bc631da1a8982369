package source

import (
	"context"
	"net/url"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/domain"
)

// Lemmy fetches posts of users
type Lemmy struct {
	client  *Client
	sources []config.LemmySource
}

// NewLemmy makes Lemmy fetcher
func NewLemmy(client *Client, sources []config.LemmySource) *Lemmy {
	return &Lemmy{client: client, sources: sources}
}

// Name returns service name
func (l *Lemmy) Name() string { return string(domain.ServiceLemmy) }

type lemmyPost struct {
	Post struct {
		Name      string `json:"name"`
		Body      string `json:"body"`
		APID      string `json:"ap_id"`
		Published string `json:"published"`
	} `json:"post"`
	Counts struct {
		Score    int `json:"score"`
		Comments int `json:"comments"`
	} `json:"counts"`
}

// lemmyUser is the user details response. Current versions return posts at the
// top level, old ones nested them into person_view.
type lemmyUser struct {
	Posts      []lemmyPost `json:"posts"`
	PersonView *struct {
		Posts []lemmyPost `json:"posts"`
	} `json:"person_view"`
}

// Fetch gets recent posts of every user
func (l *Lemmy) Fetch(ctx context.Context) Result {
	if len(l.sources) == 0 {
		return Result{Source: l.Name()}
	}
	lgr.Printf("[INFO] fetching lemmy")
	c := newCollector(domain.ServiceLemmy)
	for _, src := range l.sources {
		target := src.Username + "@" + src.Instance
		u := instanceURL(src.Instance) + "/api/v3/user?" + url.Values{"username": {src.Username}, "limit": {"10"}}.Encode()
		var resp lemmyUser
		if err := l.client.getJSON(ctx, request{service: l.Name(), target: target, url: u}, &resp); err != nil {
			c.fail(err)
			continue
		}

		if resp.Posts == nil && resp.PersonView == nil {
			c.fail(&UpstreamDataError{Service: l.Name(), Target: target, Reason: "no posts in response"})
			continue
		}
		posts := resp.Posts
		if len(posts) == 0 && resp.PersonView != nil {
			posts = resp.PersonView.Posts
		}
		for _, p := range posts {
			body := p.Post.Body
			if body == "" {
				body = p.Post.Name
			}
			c.add(domain.Item{
				SourceName: src.Name,
				Type:       domain.TypeNote,
				Date:       parseDate(p.Post.Published),
				Body:       body,
				URL:        p.Post.APID,
				Tags:       []string{"social"},
				Metrics: domain.Metrics{
					Likes:   domain.IntPtr(p.Counts.Score),
					Replies: domain.IntPtr(p.Counts.Comments),
				},
			})
		}
	}
	return c.result()
}
