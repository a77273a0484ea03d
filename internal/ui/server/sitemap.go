package server

import (
	"encoding/xml"
	"fmt"
	"net/http"
)

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	Xhtml   string     `xml:"xmlns:xhtml,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string      `xml:"loc"`
	ChangeFreq string      `xml:"changefreq,omitempty"`
	Priority   string      `xml:"priority,omitempty"`
	Alternates []alternate `xml:"xhtml:link"`
}

type alternate struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

var sitemapPages = []struct {
	path       string
	changeFreq string
	priority   string
}{
	{"/", "weekly", "1.0"},
	{"/network", "monthly", "0.8"},
	{"/performance/roadmap", "monthly", "0.8"},
}

func (s *server) handleRobots(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "Disallow: /maps/state")
	fmt.Fprintf(w, "Sitemap: %s\n", s.absoluteURL(r, "/sitemap.xml"))
}

// handleSitemap lists every page with one alternate link per locale.
func (s *server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	entries := make([]urlEntry, 0, len(sitemapPages))
	for _, page := range sitemapPages {
		entry := urlEntry{
			Loc:        s.absoluteURL(r, page.path),
			ChangeFreq: page.changeFreq,
			Priority:   page.priority,
		}
		for _, tag := range s.bundle.Supported() {
			entry.Alternates = append(entry.Alternates, alternate{
				Rel:      "alternate",
				Hreflang: tag.String(),
				Href:     s.absoluteURL(r, page.path+"?lang="+tag.String()),
			})
		}
		entries = append(entries, entry)
	}

	smap := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		Xhtml: "http://www.w3.org/1999/xhtml",
		URLs:  entries,
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	fmt.Fprint(w, xml.Header)
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(smap); err != nil {
		s.requestLog(r, "general").Error("encode sitemap", err)
	}
}
