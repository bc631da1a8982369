// Package build wires configured sources into the page pipeline: fetch all
// services, classify tags, assemble the timeline, render the page and feeds.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/lifestream/pkg/aggregate"
	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/content"
	"github.com/umputun/lifestream/pkg/domain"
	"github.com/umputun/lifestream/pkg/feed"
	"github.com/umputun/lifestream/pkg/render"
	"github.com/umputun/lifestream/pkg/source"
	"github.com/umputun/lifestream/pkg/taxonomy"
	"github.com/umputun/lifestream/pkg/timeline"
)

// Builder runs the pipeline for a configuration
type Builder struct {
	cfg      *config.Config
	agg      *aggregate.Aggregator
	renderer *render.Renderer
	feeds    *feed.Generator
	now      func() time.Time
}

// Report is the outcome of a build, kept in memory for the preview server
type Report struct {
	Snapshot aggregate.Snapshot
	Data     domain.RenderData
	Page     []byte
	Feeds    map[string]Feed // by file name
	Files    []string        // written paths, empty if nothing was written
	Duration time.Duration
}

// Feed is a serialized output feed
type Feed struct {
	Mime string
	Body []byte
}

// New makes Builder with fetchers for every supported service
func New(cfg *config.Config) (*Builder, error) {
	return NewWithFetchers(cfg, Fetchers(cfg)...)
}

// NewWithFetchers makes Builder with the given fetchers, registration order is kept
func NewWithFetchers(cfg *config.Config, fetchers ...source.Fetcher) (*Builder, error) {
	r, err := render.New(cfg.Output.Template)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	return &Builder{
		cfg:      cfg,
		agg:      aggregate.New(fetchers...),
		renderer: r,
		feeds:    feed.NewGenerator(cfg.Profile),
		now:      time.Now,
	}, nil
}

// Fetchers makes fetchers for all services. Services without configured sources
// return empty results, so the order here is the same for any configuration.
func Fetchers(cfg *config.Config) []source.Fetcher {
	client := source.NewClient(cfg.HTTP.Timeout, cfg.HTTP.UserAgent)
	meta := content.NewMetaFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent)
	return []source.Fetcher{
		source.NewGitHub(client, cfg.GitHub, cfg.Profile, cfg.Endpoints.GitHub),
		source.NewBluesky(client, cfg.Bluesky.Sources, cfg.Endpoints.Bluesky),
		source.NewMastodon(client, cfg.Mastodon.Sources),
		source.NewLemmy(client, cfg.Lemmy.Sources),
		source.NewRaindrop(client, cfg.Raindrop, cfg.Endpoints.Raindrop),
		source.NewYouTube(client, cfg.YouTube.Sources, cfg.Endpoints.YouTube),
		source.NewRSS(client, meta, cfg.RSS),
		source.NewGitLab(client, cfg.GitLab),
		source.NewGitea(client, cfg.Gitea),
		source.NewBitbucket(client, cfg.Bitbucket, cfg.Endpoints.Bitbucket),
	}
}

// Run fetches all sources, builds the page and feeds and writes them to the output directory
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	st := b.now()
	return b.publish(b.Fetch(ctx), st)
}

// Fetch collects items from all sources. It never fails, source errors are
// kept in the snapshot.
func (b *Builder) Fetch(ctx context.Context) aggregate.Snapshot {
	return b.agg.Run(ctx)
}

// Publish builds the page and feeds from an already fetched snapshot and writes
// them to the output directory. No source is called again.
func (b *Builder) Publish(snap aggregate.Snapshot) (*Report, error) {
	return b.publish(snap, b.now())
}

func (b *Builder) publish(snap aggregate.Snapshot, st time.Time) (*Report, error) {
	rep, err := b.assemble(snap, st)
	if err != nil {
		return nil, err
	}
	if err := b.write(rep); err != nil {
		return nil, err
	}
	lgr.Printf("[INFO] build completed in %v, %d files written to %s",
		rep.Duration.Round(time.Millisecond), len(rep.Files), b.cfg.Output.Dir)
	return rep, nil
}

// Generate builds the page and feeds in memory. Source failures only reduce
// the content, errors are returned for render and serialization problems.
func (b *Builder) Generate(ctx context.Context) (*Report, error) {
	st := b.now()
	return b.assemble(b.Fetch(ctx), st)
}

// assemble classifies tags, makes the timeline and renders page and feeds
func (b *Builder) assemble(snap aggregate.Snapshot, st time.Time) (*Report, error) {
	tags := taxonomy.CollectTags(snap.Items)

	// classification and timeline don't depend on each other
	var sections []domain.TagSection
	var buckets []domain.YearBucket
	var g errgroup.Group
	g.Go(func() error {
		tb := taxonomy.Builder{
			Overrides: b.cfg.GitHub.TagOverrides,
			Names:     snap.TagNames,
			Groups:    taxonomy.Groups(b.cfg.GitHub.Groups).Slugs(),
			Repos:     RepoSlugs(b.cfg),
		}
		sections = tb.Build(tags)
		return nil
	})
	g.Go(func() error {
		buckets = timeline.Assemble(snap.Items)
		return nil
	})
	_ = g.Wait()

	data := b.renderer.Data(render.Input{
		Profile:   b.cfg.Profile,
		Analytics: b.cfg.Analytics,
		Feeds:     b.cfg.Feeds,
		Tags:      tags,
		Sections:  sections,
		Timeline:  buckets,
		Status:    snap.Status,
		Now:       snap.Now,
		BuildTime: st,
	})
	page, err := b.renderer.Render(data)
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}

	rep := &Report{Snapshot: snap, Data: data, Page: page, Feeds: map[string]Feed{}}
	for _, sel := range feed.Select(snap.Items, b.cfg.Feeds) {
		body, err := b.feeds.GenerateRSS(sel)
		if err != nil {
			return nil, fmt.Errorf("generate feed %s: %w", sel.File, err)
		}
		rep.Feeds[sel.File] = Feed{Mime: sel.Def.Mime(), Body: body}
		lgr.Printf("[DEBUG] feed %s: %d items", sel.File, len(sel.Items))
	}
	rep.Duration = b.now().Sub(st)
	return rep, nil
}

// write stores the page and feeds under the output directory
func (b *Builder) write(rep *Report) error {
	files := map[string][]byte{b.cfg.Output.Page: rep.Page}
	for name, f := range rep.Feeds {
		files[name] = f.Body
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !filepath.IsLocal(name) {
			return fmt.Errorf("output file %q is outside of output dir", name)
		}
		path := filepath.Join(b.cfg.Output.Dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("make dir for %s: %w", name, err)
		}
		if err := os.WriteFile(path, files[name], 0o644); err != nil { //nolint:gosec // public page
			return fmt.Errorf("write %s: %w", name, err)
		}
		rep.Files = append(rep.Files, path)
	}
	return nil
}

// RepoSlugs returns tag slugs of all configured repositories
func RepoSlugs(cfg *config.Config) []string {
	var res []string
	for _, src := range cfg.GitHub.Sources {
		for _, repo := range src.Repos {
			res = append(res, taxonomy.Slugify(repo))
		}
	}
	for _, src := range cfg.Gitea.Sources {
		res = append(res, taxonomy.Slugify(src.Repo))
	}
	for _, src := range cfg.Bitbucket.Sources {
		res = append(res, taxonomy.Slugify(src.RepoSlug))
	}
	return domain.UniqueTags(res...)
}
