package analyzer

import (
	"bytes"
	"crypto/tls"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/html"
)

// Page is a single fetched page shared by every category checker. The body
// is read once and capped; checkers that need the parsed DOM call Doc().
type Page struct {
	URL           string               `json:"url"`
	FinalURL      string               `json:"final_url"`
	StatusCode    int                  `json:"status_code"`
	Proto         string               `json:"proto"`
	Header        http.Header          `json:"-"`
	Cookies       []*http.Cookie       `json:"-"`
	Body          []byte               `json:"-"`
	BodyTruncated bool                 `json:"body_truncated,omitempty"`
	Compressed    bool                 `json:"compressed"`
	TLS           *tls.ConnectionState `json:"-"`
	Redirects     int                  `json:"redirects"`
	FetchTime     time.Duration        `json:"fetch_time"`
	FetchedAt     time.Time            `json:"fetched_at"`

	docOnce sync.Once
	doc     *html.Node
	docErr  error
}

// Doc parses the body as HTML exactly once and returns the root node.
// html.Parse tolerates malformed markup, so docErr is rare in practice.
func (p *Page) Doc() (*html.Node, error) {
	p.docOnce.Do(func() {
		p.doc, p.docErr = html.Parse(bytes.NewReader(p.Body))
	})
	return p.doc, p.docErr
}

// Host returns the hostname of the final URL, falling back to the
// requested URL when redirect tracking left FinalURL empty.
func (p *Page) Host() string {
	for _, raw := range []string{p.FinalURL, p.URL} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
	}
	return ""
}

// Base returns the final URL parsed, for resolving relative links.
func (p *Page) Base() *url.URL {
	raw := p.FinalURL
	if raw == "" {
		raw = p.URL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	return u
}

// IsHTTPS reports whether the page was ultimately served over TLS.
func (p *Page) IsHTTPS() bool {
	if p.TLS != nil {
		return true
	}
	u := p.Base()
	return u != nil && u.Scheme == "https"
}
