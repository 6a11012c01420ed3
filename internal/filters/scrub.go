package filters

import (
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"mvdan.cc/xurls/v2"

	"github.com/mahesh-singh/hasjob/internal/textutil"
)

// postPolicy allows the small set of inline tags employers may use in
// post text. Everything else is stripped.
var postPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "blockquote", "code", "em", "i", "li", "ol", "strong", "ul")
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowAttrs("title").OnElements("abbr", "acronym")
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(true)
	return p
}()

var (
	urlRE = xurls.Strict()
	tagRE = regexp.MustCompile(`<[^>]*>`)
)

// ScrubEmail sanitizes untrusted post text, links bare URLs and hides email
// addresses behind rot13 links. cssJunk optionally names the decoy class
// and then the clean class. Addresses already inside a link are left as is.
func ScrubEmail(s string, cssJunk ...string) template.HTML {
	var junk textutil.CSSJunk
	if len(cssJunk) > 0 {
		junk.Dirty = cssJunk[0]
	}
	if len(cssJunk) > 1 {
		junk.Clean = cssJunk[1]
	}
	linked := Linkify(postPolicy.Sanitize(s))
	return template.HTML(mapText(linked, func(text string) string {
		return textutil.ScrubEmail(text, true, junk)
	}))
}

// Linkify wraps URLs found in the text of sanitized HTML in nofollow
// anchors. Text already inside an anchor is left alone, and so are mailto
// URLs, which ScrubEmail handles.
func Linkify(h string) string {
	return mapText(h, linkifyText)
}

// mapText applies fn to the text between tags of h, skipping tags and any
// text inside an anchor.
func mapText(h string, fn func(string) string) string {
	var b strings.Builder
	inAnchor := 0
	last := 0
	apply := func(text string) {
		if inAnchor > 0 || text == "" {
			b.WriteString(text)
			return
		}
		b.WriteString(fn(text))
	}
	for _, loc := range tagRE.FindAllStringIndex(h, -1) {
		apply(h[last:loc[0]])
		tag := strings.ToLower(h[loc[0]:loc[1]])
		switch {
		case strings.HasPrefix(tag, "<a ") || tag == "<a>":
			inAnchor++
		case tag == "</a>" && inAnchor > 0:
			inAnchor--
		}
		b.WriteString(h[loc[0]:loc[1]])
		last = loc[1]
	}
	apply(h[last:])
	return b.String()
}

func linkifyText(text string) string {
	return urlRE.ReplaceAllStringFunc(text, func(u string) string {
		if strings.HasPrefix(strings.ToLower(u), "mailto:") {
			return u
		}
		href := html.EscapeString(html.UnescapeString(u))
		return `<a href="` + href + `" rel="nofollow">` + u + `</a>`
	})
}
