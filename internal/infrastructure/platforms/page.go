package platforms

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/ports"
)

const (
	maxPageBytes   = 2 << 20
	excerptRunes   = 300
	pageAcceptHTML = "text/html,application/xhtml+xml"
)

// PageInspector reads Open Graph metadata from public pages, falling back to
// a readability extraction when a page carries no description.
type PageInspector struct {
	client *http.Client
}

var _ ports.PageInspector = (*PageInspector)(nil)

// NewPageInspector builds the inspector; client may be nil.
func NewPageInspector(client *http.Client) *PageInspector {
	return &PageInspector{client: newAPIClient(client).http}
}

// Inspect downloads pageURL and extracts title, description, image and view count.
func (p *PageInspector) Inspect(ctx context.Context, pageURL string) (ports.PageMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ports.PageMetadata{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", pageAcceptHTML)

	resp, err := p.client.Do(req)
	if err != nil {
		return ports.PageMetadata{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.PageMetadata{}, fmt.Errorf("%w: %s returned %s", domain.ErrUpstream, hostOf(pageURL), resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return ports.PageMetadata{}, fmt.Errorf("%w: read page: %v", domain.ErrUpstream, err)
	}

	meta, err := parseMetadata(raw)
	if err != nil {
		return ports.PageMetadata{}, err
	}

	if meta.Description == "" || meta.Title == "" {
		parsed, _ := url.Parse(pageURL)
		if article, err := readability.FromReader(bytes.NewReader(raw), parsed); err == nil {
			if meta.Title == "" {
				meta.Title = strings.TrimSpace(article.Title)
			}
			if meta.Description == "" {
				meta.Description = excerpt(strings.TrimSpace(article.TextContent))
			}
		}
	}
	return meta, nil
}

func parseMetadata(raw []byte) (ports.PageMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return ports.PageMetadata{}, fmt.Errorf("parse page: %w", err)
	}

	meta := ports.PageMetadata{
		Title: firstNonEmpty(
			metaContent(doc, `meta[property="og:title"]`),
			metaContent(doc, `meta[name="twitter:title"]`),
			strings.TrimSpace(doc.Find("title").First().Text()),
		),
		Description: firstNonEmpty(
			metaContent(doc, `meta[property="og:description"]`),
			metaContent(doc, `meta[name="description"]`),
			metaContent(doc, `meta[name="twitter:description"]`),
		),
		Image: firstNonEmpty(
			metaContent(doc, `meta[property="og:image"]`),
			metaContent(doc, `meta[name="twitter:image"]`),
		),
	}

	if views := metaContent(doc, `meta[itemprop="interactionCount"]`); views != "" {
		if n, err := strconv.ParseInt(views, 10, 64); err == nil {
			meta.ViewCount = n
		}
	}
	return meta, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= excerptRunes {
		return text
	}
	return string([]rune(text)[:excerptRunes])
}
