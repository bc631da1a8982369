// Package content looks up page metadata used to decorate syndicated items
package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html/charset"
)

const maxPageSize = 5 * 1024 * 1024

// Meta is OpenGraph-like metadata of a page, fields are nil if not found
type Meta struct {
	Image       *string
	Description *string
}

// EnrichmentError is a failed metadata lookup. It is logged and never returned
// to callers of Lookup.
type EnrichmentError struct {
	URL string
	Err error
}

func (e *EnrichmentError) Error() string { return fmt.Sprintf("metadata of %s: %v", e.URL, e.Err) }

func (e *EnrichmentError) Unwrap() error { return e.Err }

// MetaFetcher downloads pages and reads their metadata
type MetaFetcher struct {
	client    *http.Client
	userAgent string
}

// NewMetaFetcher creates a metadata fetcher with the given per-page timeout
func NewMetaFetcher(timeout time.Duration, userAgent string) *MetaFetcher {
	return &MetaFetcher{client: &http.Client{Timeout: timeout}, userAgent: userAgent}
}

// Lookup returns metadata of the page. Any failure results in empty Meta.
func (m *MetaFetcher) Lookup(ctx context.Context, pageURL string) Meta {
	meta, err := m.lookup(ctx, pageURL)
	if err != nil {
		lgr.Printf("[DEBUG] %v", &EnrichmentError{URL: pageURL, Err: err})
		return Meta{}
	}
	return meta
}

func (m *MetaFetcher) lookup(ctx context.Context, pageURL string) (Meta, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return Meta{}, fmt.Errorf("parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return Meta{}, fmt.Errorf("invalid URL: %s", pageURL)
	}

	page, err := m.fetch(ctx, pageURL)
	if err != nil {
		return Meta{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return Meta{}, fmt.Errorf("parse html: %w", err)
	}
	meta := Meta{
		Image:       metaContent(doc, "og:image", "twitter:image"),
		Description: metaContent(doc, "og:description", "twitter:description", "description"),
	}

	if meta.Image == nil || meta.Description == nil {
		// trafilatura knows more metadata conventions, use it for what's missing
		res, err := trafilatura.Extract(bytes.NewReader(page), trafilatura.Options{OriginalURL: parsedURL, ExcludeComments: true})
		if err == nil && res != nil {
			if meta.Image == nil {
				meta.Image = nonEmpty(res.Metadata.Image)
			}
			if meta.Description == nil {
				meta.Description = nonEmpty(res.Metadata.Description)
			}
		}
	}

	if meta.Image != nil {
		meta.Image = resolve(parsedURL, *meta.Image)
	}
	return meta, nil
}

// fetch downloads the page and converts it to utf-8
func (m *MetaFetcher) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", m.userAgent)
	addBrowserHeaders(req)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxPageSize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// metaContent returns content of the first non-empty meta tag with one of the keys,
// matched by property or name attribute
func metaContent(doc *goquery.Document, keys ...string) *string {
	for _, key := range keys {
		sel := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, key, key)
		var found *string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if v, ok := s.Attr("content"); ok {
				found = nonEmpty(v)
			}
			return found == nil
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// resolve makes image reference absolute, relative to the page
func resolve(base *url.URL, ref string) *string {
	u, err := url.Parse(ref)
	if err != nil {
		return nil
	}
	res := base.ResolveReference(u).String()
	return &res
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
