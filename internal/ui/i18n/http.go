package i18n

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "gbpl_lang"
)

// LanguageOption is one entry of the language switcher.
type LanguageOption struct {
	Tag    string
	Label  string
	URL    string
	Active bool
}

// ResolveTag picks the request language: the lang query parameter, then the
// preference cookie, then Accept-Language, then the base locale. The bool
// reports whether the query parameter chose it and should be persisted.
func (b *Bundle) ResolveTag(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return b.base, false
	}
	if tag, ok := b.ParseTag(r.URL.Query().Get(LangParam)); ok {
		return tag, true
	}
	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := b.ParseTag(cookie.Value); ok {
			return tag, false
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return b.Match(tags...), false
		}
	}
	return b.base, false
}

// SetLanguageCookie persists the selected language on the response.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// LanguageURL returns path with the lang parameter set to tag, keeping the
// rest of the query.
func LanguageURL(path, rawQuery, tag string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "/"
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	query.Set(LangParam, tag)
	return (&url.URL{Path: path, RawQuery: query.Encode()}).String()
}

// LanguageOptions builds the switcher for a request currently in active.
func (b *Bundle) LanguageOptions(active language.Tag, r *http.Request) []LanguageOption {
	path, rawQuery := "/", ""
	if r != nil {
		path, rawQuery = r.URL.Path, r.URL.RawQuery
	}
	tr := b.Translator(active)
	options := make([]LanguageOption, 0, len(b.tags))
	for _, tag := range b.tags {
		options = append(options, LanguageOption{
			Tag:    tag.String(),
			Label:  tr.T("lang." + tag.String()),
			URL:    LanguageURL(path, rawQuery, tag.String()),
			Active: tag.String() == active.String(),
		})
	}
	return options
}
