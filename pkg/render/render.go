// Package render produces the static page from render data, with markdown
// support for item bodies.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/umputun/lifestream/pkg/domain"
)

//go:embed templates/index.html.tmpl
var templatesFS embed.FS

const defaultTemplate = "templates/index.html.tmpl"

// Renderer renders the page template
type Renderer struct {
	tmpl *template.Template
	name string
	md   goldmark.Markdown
}

// New makes Renderer with the template file, or the embedded default one if path is empty
func New(path string) (*Renderer, error) {
	r := &Renderer{md: newMarkdown(), name: filepath.Base(defaultTemplate)}

	var err error
	base := template.New("page").Funcs(r.funcs())
	if path == "" {
		r.tmpl, err = base.ParseFS(templatesFS, defaultTemplate)
	} else {
		var data []byte
		if data, err = os.ReadFile(path); err != nil { //nolint:gosec // template path comes from config
			return nil, fmt.Errorf("read template %s: %w", path, err)
		}
		r.name = filepath.Base(path)
		r.tmpl, err = base.New(r.name).Parse(string(data))
	}
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return r, nil
}

// newMarkdown makes goldmark with GFM, linkify and emoji shortcodes. Raw html
// is kept, bodies come from the page owner's own accounts.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, emoji.New(emoji.WithRenderingMethod(emoji.Unicode))),
		goldmark.WithRendererOptions(html.WithUnsafe(), html.WithHardWraps()),
	)
}

// Render executes the page template
func (r *Renderer) Render(data domain.RenderData) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, r.name, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// Markdown converts markdown to html
func (r *Renderer) Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// MarkdownInline converts a single line of markdown, without the wrapping paragraph
func (r *Renderer) MarkdownInline(src string) string {
	res, err := r.Markdown(src)
	if err != nil {
		return template.HTMLEscapeString(src)
	}
	res = strings.TrimSpace(res)
	if strings.HasPrefix(res, "<p>") && strings.HasSuffix(res, "</p>") && strings.Count(res, "<p>") == 1 {
		res = strings.TrimSuffix(strings.TrimPrefix(res, "<p>"), "</p>")
	}
	return res
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": func(src string) template.HTML {
			res, err := r.Markdown(src)
			if err != nil {
				return template.HTML(template.HTMLEscapeString(src)) //nolint:gosec // escaped
			}
			return template.HTML(res) //nolint:gosec // markdown of owner's content
		},
		"markdownInline": func(src string) template.HTML {
			return template.HTML(r.MarkdownInline(src)) //nolint:gosec // markdown of owner's content
		},
		"safe": func(s string) template.HTML {
			return template.HTML(s) //nolint:gosec // pre-rendered html
		},
		"pluralize": Pluralize,
		"count": func(v *int) int {
			if v == nil {
				return 0
			}
			return *v
		},
		"date": func(t time.Time, layout string) string { return t.UTC().Format(layout) },
		"join": strings.Join,
	}
}

// Pluralize returns "<n> <word>" with plural form for n != 1. The plural form
// defaults to word + "s".
func Pluralize(n int, word string, plural ...string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	if len(plural) > 0 && plural[0] != "" {
		return fmt.Sprintf("%d %s", n, plural[0])
	}
	return fmt.Sprintf("%d %ss", n, word)
}
