// Package textutil holds text helpers for hiding email addresses from
// scrapers in rendered post content.
package textutil

import (
	"fmt"
	"regexp"
	"strings"
)

// EmailRE matches email addresses the way the posting form validates them.
var EmailRE = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,4}\b`)

// CSSJunk configures the decoy text inserted into displayed addresses.
// With only Dirty set, the decoy spans carry the Dirty class and the real
// parts are bare text. With Clean also set, the real parts are wrapped in
// spans of class Clean too.
type CSSJunk struct {
	Dirty string
	Clean string
}

// Rot13 rotates ASCII letters by 13 places.
func Rot13(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+13)%26
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+13)%26
		}
		return r
	}, s)
}

// ScrubEmail turns every email address in html into a link whose visible
// text is broken up with junk. With rot13 the mailto link is rotated and
// stored in data-href for client-side decoding.
func ScrubEmail(html string, rot13 bool, junk CSSJunk) string {
	return EmailRE.ReplaceAllStringFunc(html, func(email string) string {
		class := ""
		link := "mailto:" + email
		if rot13 {
			class = ` class="rot13"`
			link = Rot13(link)
		}

		text := email
		if junk.Dirty != "" && len(email) > 3 {
			third := len(email) / 3
			p0, p1, p2 := email[:third], email[third:third*2], email[third*2:]
			if junk.Clean != "" {
				text = fmt.Sprintf(`<span class="%[1]s">%[3]s</span><span class="%[2]s">no</span>`+
					`<span class="%[1]s">%[4]s</span><span class="%[2]s">spam</span>`+
					`<span class="%[1]s">%[5]s</span>`, junk.Clean, junk.Dirty, p0, p1, p2)
			} else {
				text = fmt.Sprintf(`%[2]s<span class="%[1]s">no</span>%[3]s<span class="%[1]s">spam</span>%[4]s`,
					junk.Dirty, p0, p1, p2)
			}
			text = strings.ReplaceAll(text, "@", "&#64;")
		}

		if rot13 {
			return fmt.Sprintf(`<a%s data-href="%s">%s</a>`, class, link, text)
		}
		return fmt.Sprintf(`<a%s href="%s">%s</a>`, class, link, text)
	})
}

// RedactEmail replaces every email address in text with message.
func RedactEmail(text, message string) string {
	return EmailRE.ReplaceAllLiteralString(text, message)
}
