package html

import (
	"context"
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the normaliser name.
func (n *Normaliser) Name() string {
	return "html"
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Normalise returns the visible text of the document on a single line.
func (n *Normaliser) Normalise(_ context.Context, _ string, data []byte) (string, error) {
	return Clean(string(data)), nil
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	scriptTag    = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleTag     = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	noscriptTag  = regexp.MustCompile(`(?is)<noscript\b[^>]*>.*?</noscript\s*>`)
	headTag      = regexp.MustCompile(`(?is)<head\b[^>]*>.*?</head\s*>`)
	navTag       = regexp.MustCompile(`(?is)<nav\b[^>]*>.*?</nav\s*>`)
	headerTag    = regexp.MustCompile(`(?is)<header\b[^>]*>.*?</header\s*>`)
	footerTag    = regexp.MustCompile(`(?is)<footer\b[^>]*>.*?</footer\s*>`)
	svgTag       = regexp.MustCompile(`(?is)<svg\b[^>]*>.*?</svg\s*>`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	divToken     = regexp.MustCompile(`(?i)<div\b[^>]*>|</div\s*>`)
	classAttr    = regexp.MustCompile(`(?i)\bclass\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	blockTags    = regexp.MustCompile(`(?i)</?(?:address|article|aside|blockquote|body|br|caption|dd|div|dl|dt|figcaption|figure|h[1-6]|hr|html|li|main|ol|p|pre|section|table|tbody|td|tfoot|th|thead|tr|ul)\b[^>]*>`)
	allTags      = regexp.MustCompile(`<[^>]+>`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Sphinx chrome removed before text extraction.
var chromeClasses = []string{"sphinxsidebar", "related", "footer"}

// Main content containers, in order of preference.
var contentClasses = []string{"body", "document"}

// Clean extracts readable text from an HTML page.
func Clean(content string) string {
	for _, re := range []*regexp.Regexp{scriptTag, styleTag, noscriptTag, headTag, navTag, headerTag, footerTag, svgTag, htmlComments} {
		content = re.ReplaceAllString(content, " ")
	}

	for _, class := range chromeClasses {
		content = removeDivs(content, class)
	}

	for _, class := range contentClasses {
		if spans := divSpans(content, class); len(spans) > 0 {
			content = content[spans[0][0]:spans[0][1]]
			break
		}
	}

	// Block boundaries separate words; inline tags vanish.
	content = blockTags.ReplaceAllString(content, " ")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	return strings.TrimSpace(whitespace.ReplaceAllString(content, " "))
}

// divSpans returns the byte ranges of <div> elements carrying class,
// outermost first, honouring nesting. Unclosed divs are ignored.
func divSpans(content, class string) [][2]int {
	type open struct {
		start int
		match bool
	}
	var stack []open
	var spans [][2]int

	for _, loc := range divToken.FindAllStringIndex(content, -1) {
		tag := content[loc[0]:loc[1]]
		if strings.HasPrefix(tag, "</") {
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.match {
				spans = append(spans, [2]int{top.start, loc[1]})
			}
			continue
		}
		stack = append(stack, open{start: loc[0], match: hasClass(tag, class)})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })
	return spans
}

// removeDivs deletes every <div> carrying class, including nested content.
func removeDivs(content, class string) string {
	spans := divSpans(content, class)
	if len(spans) == 0 {
		return content
	}

	var b strings.Builder
	b.Grow(len(content))
	pos := 0
	for _, s := range spans {
		if s[0] < pos {
			continue // nested inside a span already removed
		}
		b.WriteString(content[pos:s[0]])
		b.WriteByte(' ')
		pos = s[1]
	}
	b.WriteString(content[pos:])
	return b.String()
}

func hasClass(tag, class string) bool {
	m := classAttr.FindStringSubmatch(tag)
	if m == nil {
		return false
	}
	for _, c := range strings.Fields(m[1] + " " + m[2]) {
		if c == class {
			return true
		}
	}
	return false
}
