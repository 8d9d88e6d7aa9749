// Package extractor pulls hyperlinks out of HTML documents and classifies
// them as internal or external to the page's site.
package extractor

import (
	"bytes"
	"html"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	nethtml "golang.org/x/net/html"

	"github.com/mycok/linkrank/urlnorm"
)

var repeatedSpaceRegex = regexp.MustCompile(`\s+`)

// Link describes a hyperlink found in a document.
type Link struct {
	// URL is the absolute, normalized destination.
	URL        string
	AnchorText string
	// Rel holds the lowercased tokens of the rel attribute.
	Rel      []string
	NoFollow bool
	Internal bool
}

// LinkExtractor is implemented by types that can extract the links of an
// HTML document. baseURL is the address the document was fetched from and
// may be empty.
type LinkExtractor interface {
	Extract(html, baseURL string) []Link
}

// NopExtractor is a LinkExtractor that never returns any links.
type NopExtractor struct{}

// Extract implements LinkExtractor.
func (NopExtractor) Extract(string, string) []Link { return nil }

// Config encapsulates the settings for configuring an Extractor.
type Config struct {
	// InternalDomains lists extra hosts (and their subdomains) whose links
	// are treated as internal in addition to the host of the base URL.
	InternalDomains []string

	// When set, rel="ugc" and rel="sponsored" no longer imply nofollow.
	IgnoreUGCAndSponsored bool

	// When set, repeated destinations are all returned instead of only
	// the first occurrence.
	KeepDuplicates bool
}

// Static and compile-time check to ensure Extractor implements the
// LinkExtractor interface.
var _ LinkExtractor = (*Extractor)(nil)

// Extractor is a LinkExtractor that tokenizes documents with
// golang.org/x/net/html. It's safe for concurrent use.
type Extractor struct {
	cfg        Config
	policyPool sync.Pool
}

// New returns an Extractor configured with cfg.
func New(cfg Config) *Extractor {
	return &Extractor{
		cfg: cfg,
		policyPool: sync.Pool{
			New: func() interface{} {
				return bluemonday.StrictPolicy()
			},
		},
	}
}

// rawAnchor is an <a> element as found in the markup, before resolution.
type rawAnchor struct {
	href  string
	rel   string
	inner bytes.Buffer
}

// Extract returns the links of doc in document order. Malformed markup is
// parsed on a best-effort basis and never causes a failure.
func (e *Extractor) Extract(doc, baseURL string) []Link {
	anchors, baseHref := scanAnchors(doc)
	if len(anchors) == 0 {
		return nil
	}

	var (
		pageURL    *url.URL
		relativeTo *url.URL
	)
	if u, err := url.Parse(strings.TrimSpace(baseURL)); err == nil && u.IsAbs() && u.Host != "" {
		pageURL, relativeTo = u, u
	}

	// A <base href="xxx"> tag overrides the URL that relative links are
	// resolved against.
	if baseHref != "" {
		var resolved *url.URL
		if relativeTo != nil {
			resolved = urlnorm.Absolute(relativeTo, withTrailingSlash(baseHref))
		} else if u, err := url.Parse(withTrailingSlash(baseHref)); err == nil && u.IsAbs() {
			resolved = u
		}

		if resolved != nil {
			relativeTo = resolved
		}
	}

	domains := e.internalDomains(pageURL, relativeTo)

	policy := e.policyPool.Get().(*bluemonday.Policy)
	defer e.policyPool.Put(policy)

	var (
		links []Link
		seen  = make(map[string]struct{})
	)
	for _, a := range anchors {
		target, ok := resolveHref(relativeTo, a.href)
		if !ok {
			continue
		}

		normalized := urlnorm.NormalizeURL(target)
		dest := normalized.String()

		if !e.cfg.KeepDuplicates {
			if _, exists := seen[dest]; exists {
				continue
			}
			seen[dest] = struct{}{}
		}

		rel := strings.Fields(strings.ToLower(a.rel))
		if len(rel) == 0 {
			rel = nil
		}

		links = append(links, Link{
			URL:        dest,
			AnchorText: anchorText(policy, a.inner.String()),
			Rel:        rel,
			NoFollow:   e.isNoFollow(rel),
			Internal:   isInternal(normalized.Hostname(), domains),
		})
	}

	return links
}

func (e *Extractor) isNoFollow(rel []string) bool {
	for _, token := range rel {
		switch token {
		case "nofollow":
			return true
		case "ugc", "sponsored":
			if !e.cfg.IgnoreUGCAndSponsored {
				return true
			}
		}
	}

	return false
}

func (e *Extractor) internalDomains(pageURL, relativeTo *url.URL) []string {
	domains := append([]string(nil), e.cfg.InternalDomains...)
	switch {
	case pageURL != nil:
		domains = append(domains, pageURL.Hostname())
	case relativeTo != nil:
		domains = append(domains, relativeTo.Hostname())
	}

	return domains
}

// scanAnchors tokenizes doc and returns its anchors together with the
// value of the first <base href> tag.
func scanAnchors(doc string) ([]*rawAnchor, string) {
	var (
		z        = nethtml.NewTokenizer(strings.NewReader(doc))
		anchors  []*rawAnchor
		current  *rawAnchor
		baseHref string
	)

	for {
		tt := z.Next()
		if tt == nethtml.ErrorToken {
			// io.EOF and malformed input both end the scan. An anchor
			// left open is kept with the content read so far.
			if current != nil {
				anchors = append(anchors, current)
			}

			return anchors, baseHref
		}

		name, hasAttr := z.TagName()
		tag := string(name)

		switch tt {
		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			switch tag {
			case "a":
				// Anchors cannot nest; an opening tag closes the
				// previous one.
				if current != nil {
					anchors = append(anchors, current)
					current = nil
				}

				href, rel, found := anchorAttrs(z, hasAttr)
				if !found {
					continue
				}

				a := &rawAnchor{href: href, rel: rel}
				if tt == nethtml.SelfClosingTagToken {
					anchors = append(anchors, a)
					continue
				}
				current = a
			case "base":
				if baseHref == "" {
					baseHref = attrValue(z, hasAttr, "href")
				}
			default:
				if current != nil {
					current.inner.Write(z.Raw())
				}
			}
		case nethtml.EndTagToken:
			if tag == "a" {
				if current != nil {
					anchors = append(anchors, current)
					current = nil
				}
				continue
			}

			if current != nil {
				current.inner.Write(z.Raw())
			}
		case nethtml.TextToken:
			if current != nil {
				current.inner.Write(z.Raw())
			}
		}
	}
}

// anchorAttrs returns the href and rel attributes of the current tag.
// found is false when the tag carries no href.
func anchorAttrs(z *nethtml.Tokenizer, hasAttr bool) (href, rel string, found bool) {
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()

		switch string(key) {
		case "href":
			if !found {
				href, found = string(val), true
			}
		case "rel":
			rel = string(val)
		}
	}

	return strings.TrimSpace(href), rel, found
}

func attrValue(z *nethtml.Tokenizer, hasAttr bool, name string) string {
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if string(key) == name {
			return strings.TrimSpace(string(val))
		}
	}

	return ""
}

// resolveHref turns href into an absolute http(s) URL. Fragment-only
// references and hrefs that cannot be made absolute are rejected.
func resolveHref(relativeTo *url.URL, href string) (*url.URL, bool) {
	if href == "" || strings.HasPrefix(href, "#") {
		return nil, false
	}

	var target *url.URL
	if relativeTo != nil {
		target = urlnorm.Absolute(relativeTo, href)
	} else if u, err := url.Parse(href); err == nil {
		target = u
	}

	if target == nil || target.Host == "" {
		return nil, false
	}

	switch strings.ToLower(target.Scheme) {
	case "http", "https":
		return target, true
	default:
		return nil, false
	}
}

func anchorText(policy *bluemonday.Policy, inner string) string {
	text := html.UnescapeString(policy.Sanitize(inner))

	return strings.TrimSpace(repeatedSpaceRegex.ReplaceAllString(text, " "))
}

func isInternal(host string, domains []string) bool {
	for _, d := range domains {
		if urlnorm.IsSameSite(host, d) {
			return true
		}
	}

	return false
}

func withTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}

	return s + "/"
}
