package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Its-donkey/gbpl-site/internal/ui/i18n"
)

type navLink struct {
	Label  string
	Href   string
	Active bool
}

type basePageData struct {
	Lang            string
	PageTitle       string
	SiteName        string
	MetaDescription string
	CanonicalURL    string
	OGType          string
	CurrentYear     int
	Nav             []navLink
	Languages       []i18n.LanguageOption
	Tr              *i18n.Translator
}

// absoluteURL builds an absolute URL for path using the request host, or the
// configured primary host when the request carries none.
func (s *server) absoluteURL(r *http.Request, path string) string {
	clean := strings.TrimSpace(path)
	if clean == "" {
		clean = "/"
	}
	if !strings.HasPrefix(clean, "/") {
		clean = "/" + clean
	}

	scheme := "https"
	if r != nil {
		if proto := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); proto != "" {
			scheme = proto
		} else if r.TLS == nil {
			scheme = "http"
		}
		if host := strings.TrimSpace(r.Host); host != "" {
			return fmt.Sprintf("%s://%s%s", scheme, host, clean)
		}
	}

	host := s.primaryHost
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("%s://%s%s", scheme, host, clean)
}

// truncateWithEllipsis trims value to at most max runes, preferring a word
// boundary within the last 20 runes.
func truncateWithEllipsis(value string, max int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if max <= 0 || len(runes) <= max {
		return value
	}

	cut := max
	for i := max - 1; i >= 0 && i >= max-20; i-- {
		if runes[i] == ' ' {
			cut = i
			break
		}
	}
	trimmed := strings.TrimSpace(string(runes[:cut]))
	if trimmed == "" {
		trimmed = strings.TrimSpace(string(runes[:max]))
	}
	return trimmed + "…"
}

// translator resolves the request language and persists an explicit choice.
func (s *server) translator(w http.ResponseWriter, r *http.Request) *i18n.Translator {
	tag, persist := s.bundle.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	return s.bundle.Translator(tag)
}

func (s *server) buildBasePageData(r *http.Request, tr *i18n.Translator, title, canonicalPath string) basePageData {
	siteTitle := tr.T("site.title")
	if s.siteName != "" && siteTitle == "site.title" {
		siteTitle = s.siteName
	}
	pageTitle := siteTitle
	if strings.TrimSpace(title) != "" {
		pageTitle = title + " | " + siteTitle
	}

	description := tr.T("site.description")
	if description == "site.description" {
		description = s.description
	}

	return basePageData{
		Lang:            tr.Locale(),
		PageTitle:       pageTitle,
		SiteName:        s.siteName,
		MetaDescription: truncateWithEllipsis(description, 155),
		CanonicalURL:    s.absoluteURL(r, canonicalPath),
		OGType:          "website",
		CurrentYear:     s.now().Year(),
		Nav:             s.navLinks(tr, r.URL.Path),
		Languages:       s.bundle.LanguageOptions(tr.Tag(), r),
		Tr:              tr,
	}
}

func (s *server) navLinks(tr *i18n.Translator, current string) []navLink {
	links := []navLink{
		{Label: tr.T("nav.home"), Href: "/"},
		{Label: tr.T("nav.network"), Href: "/network"},
		{Label: tr.T("nav.roadmap"), Href: "/performance/roadmap"},
	}
	for i := range links {
		links[i].Active = links[i].Href == current
	}
	return links
}
