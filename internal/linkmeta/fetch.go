// Package linkmeta looks up best-effort preview details for links found on
// cards: page title, description, preview image and favicon.
package linkmeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ErrNoMetadata means the target could be reached but offered nothing usable.
var ErrNoMetadata = errors.New("no link metadata")

// Metadata is what a page says about itself. Any field may be empty.
type Metadata struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
}

func (m Metadata) empty() bool {
	return m.Title == "" && m.Description == "" && m.ImageURL == ""
}

// Lookup resolves metadata for one URL.
type Lookup interface {
	Lookup(ctx context.Context, rawURL string) (Metadata, error)
}

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 1 << 20
	userAgent       = "Mozilla/5.0 (compatible; boardview/1.0)"
)

// Fetcher reads pages over HTTP.
type Fetcher struct {
	Client   *http.Client
	Timeout  time.Duration
	MaxBytes int64
}

func NewFetcher() *Fetcher {
	return &Fetcher{Client: http.DefaultClient, Timeout: defaultTimeout, MaxBytes: defaultMaxBytes}
}

func (f *Fetcher) Lookup(ctx context.Context, rawURL string) (Metadata, error) {
	return f.Fetch(ctx, rawURL)
}

// Fetch downloads rawURL and extracts its metadata. Only http and https
// targets are fetched.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Metadata, error) {
	u, err := parseTarget(rawURL)
	if err != nil {
		return Metadata{}, err
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("fetch %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Metadata{}, fmt.Errorf("fetch %s: HTTP %d", u.Host, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return Metadata{}, fmt.Errorf("fetch %s: %w (content type %s)", u.Host, ErrNoMetadata, ct)
	}

	maxBytes := f.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	// Redirects may have moved us; resolve relative links against the final URL.
	base := u
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}
	return Extract(io.LimitReader(resp.Body, maxBytes), base)
}

func parseTarget(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("url has no host")
	}
	return u, nil
}

// Extract parses an HTML document and collects its metadata. Relative links
// are resolved against base.
func Extract(r io.Reader, base *url.URL) (Metadata, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Metadata{}, fmt.Errorf("parse html: %w", err)
	}

	var (
		title, ogTitle, desc, ogDesc, ogImage, icon string
		walk                                        func(*html.Node)
	)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = n.FirstChild.Data
				}
			case "meta":
				key := strings.ToLower(firstAttr(n, "property", "name"))
				content := getAttr(n, "content")
				switch key {
				case "og:title":
					ogTitle = firstNonEmpty(ogTitle, content)
				case "og:description":
					ogDesc = firstNonEmpty(ogDesc, content)
				case "description":
					desc = firstNonEmpty(desc, content)
				case "og:image", "og:image:url":
					ogImage = firstNonEmpty(ogImage, content)
				}
			case "link":
				if icon == "" && hasToken(getAttr(n, "rel"), "icon") {
					icon = getAttr(n, "href")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	m := Metadata{
		Title:       collapseSpace(firstNonEmpty(ogTitle, title)),
		Description: collapseSpace(firstNonEmpty(ogDesc, desc)),
	}
	if base != nil {
		m.URL = base.String()
		m.ImageURL = resolve(base, ogImage)
		if icon == "" {
			icon = "/favicon.ico"
		}
		m.Favicon = resolve(base, icon)
	}
	if m.empty() {
		return m, ErrNoMetadata
	}
	return m, nil
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}

func firstAttr(n *html.Node, keys ...string) string {
	for _, k := range keys {
		if v := getAttr(n, k); v != "" {
			return v
		}
	}
	return ""
}

func hasToken(list, tok string) bool {
	for _, f := range strings.Fields(strings.ToLower(list)) {
		if f == tok {
			return true
		}
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
