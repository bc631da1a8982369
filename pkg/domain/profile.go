package domain

import "strings"

// Profile describes the page owner
type Profile struct {
	Name           string   `yaml:"name" json:"name" jsonschema:"description=Display name of the page owner"`
	Tagline        string   `yaml:"tagline" json:"tagline" jsonschema:"description=Short description used in page and feeds"`
	URL            string   `yaml:"url" json:"url" jsonschema:"description=Public URL of the page"`
	GitHubUsername string   `yaml:"github_username" json:"github_username" jsonschema:"description=GitHub login used for status and now posts"`
	CopyrightStart int      `yaml:"copyright_start" json:"copyright_start" jsonschema:"description=First year of the copyright range"`
	Avatar         string   `yaml:"avatar" json:"avatar,omitempty" jsonschema:"description=Avatar image URL"`
	Socials        []Social `yaml:"socials" json:"socials" jsonschema:"description=Social profile links"`
}

// Social is a link to one of the owner's profiles
type Social struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// PrimaryGitHubUser returns the configured GitHub login, or the one derived
// from the github social link. Empty if neither is set.
func (p Profile) PrimaryGitHubUser() string {
	if p.GitHubUsername != "" {
		return p.GitHubUsername
	}
	for _, s := range p.Socials {
		if !strings.EqualFold(s.Name, "github") || s.URL == "" {
			continue
		}
		u := strings.TrimRight(s.URL, "/")
		return u[strings.LastIndex(u, "/")+1:]
	}
	return ""
}

// PagesRepo returns "<user>/<user>.github.io" for the primary user, or empty
func (p Profile) PagesRepo() string {
	user := p.PrimaryGitHubUser()
	if user == "" {
		return ""
	}
	return user + "/" + user + ".github.io"
}
