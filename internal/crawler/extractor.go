package crawler

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ErrNoContent is returned by Extract when the parsed document yields no
// text content at all, for example a binary or empty body.
var ErrNoContent = errors.New("no extractable content")

// ExtractedPage is the result of converting one HTML document.
type ExtractedPage struct {
	// Title is the derived page title.
	Title string

	// Markdown is the readable converted text, blocks separated by blank
	// lines.
	Markdown string

	// Links holds every anchor href found anywhere in the original
	// document, unresolved. The caller normalizes them against the page
	// URL.
	Links []string
}

// Extractor parses HTML, strips non-content subtrees, derives a title, and
// converts the remaining block elements to Markdown-like text.
//
// Design decision: The strip rules and block conversion rules are data held
// on the Extractor rather than hardcoded control flow. Tests exercise the
// conversion with synthetic rule sets, and tuning the heuristics does not
// touch the tree walk.
type Extractor struct {
	// stripTags are element names whose whole subtree is discarded before
	// conversion.
	stripTags map[string]bool

	// stripClassHints are substrings matched against class and id
	// attributes; a hit discards the subtree. This catches ad units,
	// cookie banners, and navigation blocks that hide behind generic tags.
	stripClassHints []string

	// blockPrefix maps a block element name to the Markdown prefix of its
	// line. Headings are handled separately because the prefix depends on
	// the level.
	blockPrefix map[string]string
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithStripTags replaces the set of element names stripped before
// conversion.
func WithStripTags(tags ...string) ExtractorOption {
	return func(e *Extractor) {
		e.stripTags = make(map[string]bool, len(tags))
		for _, tag := range tags {
			e.stripTags[tag] = true
		}
	}
}

// WithStripClassHints replaces the class/id substrings that mark a subtree
// as non-content.
func WithStripClassHints(hints ...string) ExtractorOption {
	return func(e *Extractor) {
		e.stripClassHints = hints
	}
}

// NewExtractor creates an Extractor with the default conversion rules.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		stripTags: map[string]bool{
			"script":   true,
			"style":    true,
			"nav":      true,
			"aside":    true,
			"header":   true,
			"footer":   true,
			"iframe":   true,
			"noscript": true,
			"form":     true,
		},
		stripClassHints: []string{
			"advert", "banner", "cookie", "sidebar", "menu", "footer", "nav",
		},
		blockPrefix: map[string]string{
			"p":          "",
			"li":         "- ",
			"blockquote": "> ",
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract parses the document read from r and converts it. contentType is
// used for charset detection; pageURL provides the title fallback when the
// document has neither a title element nor a heading.
//
// The returned error is ErrNoContent when the document has no text at all,
// or wraps the parser error when the body is not parseable HTML.
func (e *Extractor) Extract(r io.Reader, contentType, pageURL string) (*ExtractedPage, error) {
	decoded, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}

	doc, err := html.Parse(decoded)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	page := &ExtractedPage{Links: collectLinks(doc)}

	var blocks []string
	var title, h1, h2 string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if e.stripTags[n.Data] || e.hasStrippedClass(n) {
				return
			}

			switch {
			case n.Data == "title" && title == "":
				title = flattenText(n)
				return
			case isHeading(n.Data):
				text := flattenText(n)
				if text != "" {
					level := int(n.Data[1] - '0')
					blocks = append(blocks, strings.Repeat("#", level)+" "+text)
					if h1 == "" && n.Data == "h1" {
						h1 = text
					}
					if h2 == "" && n.Data == "h2" {
						h2 = text
					}
				}
				return
			default:
				if prefix, ok := e.blockPrefix[n.Data]; ok {
					if text := flattenText(n); text != "" {
						blocks = append(blocks, prefix+text)
					}
					return
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	page.Markdown = strings.Join(blocks, "\n\n")
	if page.Markdown == "" {
		// Pages built entirely from generic containers still count as
		// content; only a truly text-free document fails.
		if text := e.visibleText(doc); text != "" {
			page.Markdown = text
		} else {
			return nil, ErrNoContent
		}
	}

	page.Title = deriveTitle(title, h1, h2, pageURL)
	return page, nil
}

// hasStrippedClass reports whether the node's class or id contains one of
// the configured non-content hints.
func (e *Extractor) hasStrippedClass(n *html.Node) bool {
	attrs := strings.ToLower(getAttr(n, "class") + " " + getAttr(n, "id"))
	if strings.TrimSpace(attrs) == "" {
		return false
	}
	for _, hint := range e.stripClassHints {
		if strings.Contains(attrs, hint) {
			return true
		}
	}
	return false
}

// visibleText returns the document's visible text with the strip rules
// applied and the head excluded, whitespace collapsed.
func (e *Extractor) visibleText(doc *html.Node) string {
	var sb strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "head" || e.stripTags[n.Data] || e.hasStrippedClass(n) {
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}

// deriveTitle applies the fallback chain: title element, first h1, first
// h2, then the URL path.
func deriveTitle(title, h1, h2, pageURL string) string {
	for _, candidate := range []string{title, h1, h2} {
		if candidate != "" {
			return candidate
		}
	}

	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return pageURL
	}
	if u.Path == "" || u.Path == "/" {
		return u.Host
	}
	return strings.Trim(u.Path, "/")
}

// collectLinks gathers every anchor href in the original document,
// including anchors inside subtrees the conversion strips. Link discovery
// and content extraction are deliberately independent.
func collectLinks(doc *html.Node) []string {
	links := make([]string, 0)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				links = append(links, href)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}

// isHeading reports whether the element name is h1 through h6.
func isHeading(name string) bool {
	return len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6'
}

// flattenText returns the node's visible text with whitespace collapsed.
func flattenText(n *html.Node) string {
	var sb strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(sb.String()), " ")
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
