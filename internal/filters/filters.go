// Package filters provides the template functions used by the job board's
// HTML pages: URL building and cleaning, date formatting and email hiding.
package filters

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mahesh-singh/hasjob/internal/model"
	"github.com/mahesh-singh/hasjob/internal/textutil"
)

// Filters holds the site settings the template functions depend on.
type Filters struct {
	Timezone *time.Location
	UseSSL   bool
}

// New returns Filters rendering dates in tz.
func New(tz *time.Location, useSSL bool) *Filters {
	if tz == nil {
		tz = time.UTC
	}
	return &Filters{Timezone: tz, UseSSL: useSSL}
}

// FuncMap returns the template functions. r supplies the URL root for
// usessl and may be nil when templates are only being parsed.
func (f *Filters) FuncMap(r *http.Request) template.FuncMap {
	root := URLRoot(r)
	return template.FuncMap{
		"urlfor":       URLFor,
		"shortdate":    f.ShortDate,
		"longdate":     f.LongDate,
		"cleanurl":     CleanURL,
		"urlquote":     URLQuote,
		"urlquoteplus": URLQuotePlus,
		"scrubemail":   ScrubEmail,
		"hideemail":    HideEmail,
		"usessl":       func(u string) string { return f.UseSSLURL(u, root) },
	}
}

// URLFor returns the canonical path of a post, job type or job category,
// or "" for anything else.
func URLFor(ob any) string {
	switch v := ob.(type) {
	case model.JobPost:
		return "/view/" + url.PathEscape(v.Hashid)
	case *model.JobPost:
		return "/view/" + url.PathEscape(v.Hashid)
	case model.JobType:
		return "/type/" + url.PathEscape(v.Name)
	case *model.JobType:
		return "/type/" + url.PathEscape(v.Name)
	case model.JobCategory:
		return "/category/" + url.PathEscape(v.Name)
	case *model.JobCategory:
		return "/category/" + url.PathEscape(v.Name)
	}
	return ""
}

// ShortDate renders t in the site timezone as e.g. "Jan  5".
func (f *Filters) ShortDate(t time.Time) string {
	return t.In(f.Timezone).Format("Jan _2")
}

// LongDate renders t in the site timezone as e.g. "January  5, 2024".
func (f *Filters) LongDate(t time.Time) string {
	return t.In(f.Timezone).Format("January _2, 2006")
}

// CleanURL strips the scheme for display, and the trailing slash when it
// directly follows the domain name. A trailing slash after a path is kept.
func CleanURL(u string) string {
	if strings.HasPrefix(u, "http://") {
		u = u[len("http://"):]
	} else if strings.HasPrefix(u, "https://") {
		u = u[len("https://"):]
	}
	if strings.HasSuffix(u, "/") && strings.Count(u, "/") == 1 {
		u = u[:len(u)-1]
	}
	return u
}

// URLQuote percent-encodes s for use in a URL path. Letters, digits, "_.-"
// and slashes are kept; "~" is encoded.
func URLQuote(s string) string {
	q := URLQuotePlus(s)
	q = strings.ReplaceAll(q, "+", "%20")
	return strings.ReplaceAll(q, "%2F", "/")
}

// URLQuotePlus percent-encodes s for a query string, spaces becoming "+".
func URLQuotePlus(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "~", "%7E")
}

// HideEmail replaces email addresses in s with message, "[redacted]" by default.
func HideEmail(s string, message ...string) string {
	msg := "[redacted]"
	if len(message) > 0 {
		msg = message[0]
	}
	return textutil.RedactEmail(s, msg)
}

// UseSSLURL rewrites u to https when SSL is enabled. Protocol-relative URLs
// get an https scheme and root-relative paths are resolved against root
// first.
func (f *Filters) UseSSLURL(u, root string) string {
	if !f.UseSSL {
		return u
	}
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	if strings.HasPrefix(u, "/") {
		u = strings.TrimSuffix(root, "/") + u
	}
	if strings.HasPrefix(u, "http:") {
		u = "https:" + u[len("http:"):]
	}
	return u
}

// URLRoot returns the scheme and host of r with a trailing slash, e.g.
// "http://hasjob.co/". A nil request yields "/".
func URLRoot(r *http.Request) string {
	if r == nil {
		return "/"
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + r.Host + "/"
}
