package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"

	"github.com/umputun/lifestream/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Profile   domain.Profile    `yaml:"profile" json:"profile" jsonschema:"description=Page owner profile"`
	Analytics map[string]string `yaml:"analytics" json:"analytics,omitempty" jsonschema:"description=Analytics settings passed to the template"`

	GitHub    GitHubConfig    `yaml:"github" json:"github" jsonschema:"description=GitHub discussions issues and releases"`
	Bluesky   BlueskyConfig   `yaml:"bluesky" json:"bluesky" jsonschema:"description=Bluesky author feeds"`
	Mastodon  MastodonConfig  `yaml:"mastodon" json:"mastodon" jsonschema:"description=Mastodon account statuses"`
	Lemmy     LemmyConfig     `yaml:"lemmy" json:"lemmy" jsonschema:"description=Lemmy user posts"`
	Raindrop  RaindropConfig  `yaml:"raindrop" json:"raindrop" jsonschema:"description=Raindrop bookmarks collection"`
	YouTube   YouTubeConfig   `yaml:"youtube" json:"youtube" jsonschema:"description=YouTube channel feeds"`
	RSS       RSSConfig       `yaml:"rss" json:"rss" jsonschema:"description=Generic RSS/Atom feeds"`
	GitLab    GitLabConfig    `yaml:"gitlab" json:"gitlab" jsonschema:"description=GitLab project releases"`
	Gitea     GiteaConfig     `yaml:"gitea" json:"gitea" jsonschema:"description=Gitea repository releases"`
	Bitbucket BitbucketConfig `yaml:"bitbucket" json:"bitbucket" jsonschema:"description=Bitbucket repository tags"`

	Feeds map[string]FeedDef `yaml:"feeds" json:"feeds,omitempty" jsonschema:"description=Output feeds keyed by file name"`

	Output struct {
		Dir      string `yaml:"dir" json:"dir" jsonschema:"default=.,description=Output directory for page and feeds"`
		Page     string `yaml:"page" json:"page" jsonschema:"default=index.html,description=Rendered page file name"`
		Template string `yaml:"template" json:"template" jsonschema:"description=Custom page template file (embedded default if empty)"`
	} `yaml:"output" json:"output" jsonschema:"description=Output settings"`

	HTTP struct {
		Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Timeout for every outbound request"`
		UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Lifestream/1.0,description=User agent for outbound requests"`
	} `yaml:"http" json:"http" jsonschema:"description=Outbound HTTP settings"`

	Endpoints Endpoints `yaml:"endpoints" json:"endpoints" jsonschema:"description=Service base URLs override"`
}

// GitHubConfig holds GitHub sources, groups and tag display overrides
type GitHubConfig struct {
	Token        string              `yaml:"token" json:"-" jsonschema:"description=GitHub token (GH_TOKEN if empty)"`
	Sources      []GitHubSource      `yaml:"sources" json:"sources,omitempty"`
	Groups       map[string][]string `yaml:"groups" json:"groups,omitempty" jsonschema:"description=Group name to owner/repo or bare repo names"`
	TagOverrides map[string]string   `yaml:"tag_overrides" json:"tag_overrides,omitempty" jsonschema:"description=Tag slug to display name"`
}

// GitHubSource is one owner with the repositories to collect
type GitHubSource struct {
	Name        string   `yaml:"name" json:"name"`
	Owner       string   `yaml:"owner" json:"owner" jsonschema:"required"`
	Repos       []string `yaml:"repos" json:"repos" jsonschema:"required"`
	Discussions *bool    `yaml:"discussions" json:"discussions,omitempty" jsonschema:"default=true"`
	Issues      bool     `yaml:"issues" json:"issues,omitempty" jsonschema:"default=false"`
	Releases    *bool    `yaml:"releases" json:"releases,omitempty" jsonschema:"default=true"`
}

// DiscussionsEnabled reports whether discussions are collected, on by default
func (s GitHubSource) DiscussionsEnabled() bool { return s.Discussions == nil || *s.Discussions }

// ReleasesEnabled reports whether releases are collected, on by default
func (s GitHubSource) ReleasesEnabled() bool { return s.Releases == nil || *s.Releases }

// BlueskyConfig holds Bluesky sources
type BlueskyConfig struct {
	Sources []BlueskySource `yaml:"sources" json:"sources,omitempty"`
}

// BlueskySource is an author handle or a custom feed uri
type BlueskySource struct {
	Name   string `yaml:"name" json:"name"`
	Handle string `yaml:"handle" json:"handle"`
	Feed   string `yaml:"feed" json:"feed,omitempty"`
}

// MastodonConfig holds Mastodon sources
type MastodonConfig struct {
	Sources []MastodonSource `yaml:"sources" json:"sources,omitempty"`
}

// MastodonSource is an account on an instance
type MastodonSource struct {
	Name     string `yaml:"name" json:"name"`
	Instance string `yaml:"instance" json:"instance" jsonschema:"required"`
	ID       string `yaml:"id" json:"id" jsonschema:"required"`
}

// LemmyConfig holds Lemmy sources
type LemmyConfig struct {
	Sources []LemmySource `yaml:"sources" json:"sources,omitempty"`
}

// LemmySource is a user on an instance
type LemmySource struct {
	Name     string `yaml:"name" json:"name"`
	Instance string `yaml:"instance" json:"instance" jsonschema:"required"`
	Username string `yaml:"username" json:"username" jsonschema:"required"`
}

// RaindropConfig holds the bookmarks collection
type RaindropConfig struct {
	Name         string `yaml:"name" json:"name" jsonschema:"default=bookmarks"`
	CollectionID string `yaml:"collection_id" json:"collection_id"`
	Token        string `yaml:"token" json:"-" jsonschema:"description=Raindrop token (RAINDROP_TOKEN if empty)"`
}

// YouTubeConfig holds YouTube channels
type YouTubeConfig struct {
	Sources []YouTubeSource `yaml:"sources" json:"sources,omitempty"`
}

// YouTubeSource is a channel
type YouTubeSource struct {
	Name      string `yaml:"name" json:"name"`
	ChannelID string `yaml:"channel_id" json:"channel_id" jsonschema:"required"`
}

// RSSConfig holds generic feeds
type RSSConfig struct {
	Limit   int         `yaml:"limit" json:"limit" jsonschema:"default=10,minimum=0,maximum=10,description=Items taken from each feed and enriched with page metadata"`
	Sources []RSSSource `yaml:"sources" json:"sources,omitempty"`
}

// RSSSource is a feed URL
type RSSSource struct {
	Name string `yaml:"name" json:"name" jsonschema:"required"`
	URL  string `yaml:"url" json:"url" jsonschema:"required"`
}

// GitLabConfig holds GitLab projects
type GitLabConfig struct {
	Instance string         `yaml:"instance" json:"instance" jsonschema:"default=gitlab.com"`
	Token    string         `yaml:"token" json:"-" jsonschema:"description=GitLab token (GITLAB_TOKEN if empty)"`
	Sources  []GitLabSource `yaml:"sources" json:"sources,omitempty"`
}

// GitLabSource is a project id or url-encoded path
type GitLabSource struct {
	Name string `yaml:"name" json:"name"`
	ID   string `yaml:"id" json:"id" jsonschema:"required"`
}

// GiteaConfig holds Gitea repositories
type GiteaConfig struct {
	Instance string        `yaml:"instance" json:"instance"`
	Token    string        `yaml:"token" json:"-" jsonschema:"description=Gitea token (GITEA_TOKEN if empty)"`
	Sources  []GiteaSource `yaml:"sources" json:"sources,omitempty"`
}

// GiteaSource is a repository
type GiteaSource struct {
	Name  string `yaml:"name" json:"name"`
	Owner string `yaml:"owner" json:"owner" jsonschema:"required"`
	Repo  string `yaml:"repo" json:"repo" jsonschema:"required"`
}

// BitbucketConfig holds Bitbucket repositories
type BitbucketConfig struct {
	Username    string            `yaml:"username" json:"username"`
	AppPassword string            `yaml:"app_password" json:"-" jsonschema:"description=App password (BITBUCKET_APP_PASS if empty)"`
	Sources     []BitbucketSource `yaml:"sources" json:"sources,omitempty"`
}

// BitbucketSource is a repository in a workspace
type BitbucketSource struct {
	Name      string `yaml:"name" json:"name"`
	Workspace string `yaml:"workspace" json:"workspace" jsonschema:"required"`
	RepoSlug  string `yaml:"repo_slug" json:"repo_slug" jsonschema:"required"`
}

// FeedDef defines one output feed
type FeedDef struct {
	Title   string   `yaml:"title" json:"title"`
	Type    string   `yaml:"type" json:"type" jsonschema:"enum=rss,enum=atom,default=rss"`
	Sources []string `yaml:"sources" json:"sources" jsonschema:"required,description=Source names or * for all"`
}

// AllSources reports whether the feed takes items from every source
func (f FeedDef) AllSources() bool {
	for _, s := range f.Sources {
		if s == "*" {
			return true
		}
	}
	return false
}

// Mime returns the content type announced for the feed
func (f FeedDef) Mime() string {
	if f.Type == "atom" {
		return "application/atom+xml"
	}
	return "application/rss+xml"
}

// Endpoints allows overriding service base URLs
type Endpoints struct {
	GitHub    string `yaml:"github" json:"github" jsonschema:"default=https://api.github.com/graphql"`
	Bluesky   string `yaml:"bluesky" json:"bluesky" jsonschema:"default=https://public.api.bsky.app"`
	Raindrop  string `yaml:"raindrop" json:"raindrop" jsonschema:"default=https://api.raindrop.io"`
	YouTube   string `yaml:"youtube" json:"youtube" jsonschema:"default=https://www.youtube.com"`
	Bitbucket string `yaml:"bitbucket" json:"bitbucket" jsonschema:"default=https://api.bitbucket.org"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		lgr.Printf("[WARN] schema validation failed: %v", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	// credentials fall back to the environment
	envDefault(&cfg.GitHub.Token, "GH_TOKEN")
	envDefault(&cfg.Raindrop.Token, "RAINDROP_TOKEN")
	envDefault(&cfg.GitLab.Token, "GITLAB_TOKEN")
	envDefault(&cfg.Gitea.Token, "GITEA_TOKEN")
	envDefault(&cfg.Bitbucket.AppPassword, "BITBUCKET_APP_PASS")

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}
	if cfg.Output.Page == "" {
		cfg.Output.Page = "index.html"
	}
	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = 30 * time.Second
	}
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = "Lifestream/1.0"
	}
	if cfg.RSS.Limit == 0 {
		cfg.RSS.Limit = 10
	}
	if cfg.Raindrop.Name == "" {
		cfg.Raindrop.Name = "bookmarks"
	}
	if cfg.GitLab.Instance == "" {
		cfg.GitLab.Instance = "gitlab.com"
	}

	// set defaults for endpoints
	if cfg.Endpoints.GitHub == "" {
		cfg.Endpoints.GitHub = "https://api.github.com/graphql"
	}
	if cfg.Endpoints.Bluesky == "" {
		cfg.Endpoints.Bluesky = "https://public.api.bsky.app"
	}
	if cfg.Endpoints.Raindrop == "" {
		cfg.Endpoints.Raindrop = "https://api.raindrop.io"
	}
	if cfg.Endpoints.YouTube == "" {
		cfg.Endpoints.YouTube = "https://www.youtube.com"
	}
	if cfg.Endpoints.Bitbucket == "" {
		cfg.Endpoints.Bitbucket = "https://api.bitbucket.org"
	}

	// source names default to the main identifier
	for i := range cfg.GitHub.Sources {
		if cfg.GitHub.Sources[i].Name == "" {
			cfg.GitHub.Sources[i].Name = cfg.GitHub.Sources[i].Owner
		}
	}
	for i := range cfg.Bluesky.Sources {
		if cfg.Bluesky.Sources[i].Name == "" {
			cfg.Bluesky.Sources[i].Name = cfg.Bluesky.Sources[i].Handle
		}
	}
	for i := range cfg.YouTube.Sources {
		if cfg.YouTube.Sources[i].Name == "" {
			cfg.YouTube.Sources[i].Name = cfg.YouTube.Sources[i].ChannelID
		}
	}
	for name, f := range cfg.Feeds {
		if f.Type == "" {
			f.Type = "rss"
			cfg.Feeds[name] = f
		}
	}
}

func envDefault(v *string, key string) {
	if *v == "" {
		*v = os.Getenv(key)
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	for i, s := range cfg.GitHub.Sources {
		if s.Owner == "" {
			return fmt.Errorf("github.sources[%d].owner is required", i)
		}
	}
	for i, s := range cfg.Bluesky.Sources {
		if s.Handle == "" && s.Feed == "" {
			return fmt.Errorf("bluesky.sources[%d] needs handle or feed", i)
		}
	}
	for i, s := range cfg.Mastodon.Sources {
		if s.Instance == "" || s.ID == "" {
			return fmt.Errorf("mastodon.sources[%d] needs instance and id", i)
		}
	}
	for i, s := range cfg.Lemmy.Sources {
		if s.Instance == "" || s.Username == "" {
			return fmt.Errorf("lemmy.sources[%d] needs instance and username", i)
		}
	}
	for i, s := range cfg.RSS.Sources {
		if s.URL == "" {
			return fmt.Errorf("rss.sources[%d].url is required", i)
		}
		if s.Name == "" {
			return fmt.Errorf("rss.sources[%d].name is required", i)
		}
	}
	if len(cfg.Gitea.Sources) > 0 && cfg.Gitea.Instance == "" {
		return fmt.Errorf("gitea.instance is required with gitea sources")
	}
	for _, name := range cfg.FeedNames() {
		f := cfg.Feeds[name]
		if len(f.Sources) == 0 {
			return fmt.Errorf("feed %q has no sources", name)
		}
		if f.Type != "rss" && f.Type != "atom" {
			return fmt.Errorf("feed %q has unsupported type %q", name, f.Type)
		}
	}
	if cfg.HTTP.Timeout < time.Second {
		return fmt.Errorf("http timeout must be at least 1 second")
	}
	if cfg.RSS.Limit < 0 || cfg.RSS.Limit > 10 {
		return fmt.Errorf("rss.limit must be between 0 and 10")
	}
	return nil
}

// FeedNames returns configured feed file names in sorted order
func (c *Config) FeedNames() []string {
	res := make([]string, 0, len(c.Feeds))
	for name := range c.Feeds {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// Secrets returns all non-empty credentials, used to mask them in logs
func (c *Config) Secrets() []string {
	var res []string
	for _, s := range []string{c.GitHub.Token, c.Raindrop.Token, c.GitLab.Token, c.Gitea.Token, c.Bitbucket.AppPassword} {
		if s != "" {
			res = append(res, s)
		}
	}
	return res
}
