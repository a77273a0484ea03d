package server

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/Its-donkey/gbpl-site/internal/ui/content"
	"github.com/Its-donkey/gbpl-site/internal/ui/counter"
	"github.com/Its-donkey/gbpl-site/internal/ui/hubs"
	"github.com/Its-donkey/gbpl-site/internal/ui/i18n"
	"github.com/Its-donkey/gbpl-site/logging"
)

// HubParam selects a hub on the network map.
const HubParam = "hub"

type hubMarker struct {
	hubs.Hub
	Href     string
	Selected bool
}

type networkView struct {
	HQ        content.HQ
	Hubs      []hubMarker
	Stats     []content.Stat
	Panel     hubs.PanelView
}

type growthView struct {
	ID         string
	Key        string
	Target     counter.Target
	DurationMs int64
	Final      string
}

type barView struct {
	Year      string
	Revenue   float64
	Employees int
	Percent   float64
}

type financialView struct {
	Growth       []growthView
	Bars         []barView
	TrackRecords []string
}

type homePageData struct {
	basePageData
	Network   networkView
	Financial financialView
	Map       mapView
}

type networkPageData struct {
	basePageData
	Network networkView
}

type roadmapPageData struct {
	basePageData
	Roadmap content.Roadmap
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !allowGet(w, r) {
		return
	}
	tr := s.translator(w, r)
	data := homePageData{
		basePageData: s.buildBasePageData(r, tr, "", "/"),
		Network:      s.networkView(r, tr),
		Financial:    s.financialView(),
		Map:          s.contactMap(tr),
	}
	s.render(w, r, "home", data)
}

func (s *server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	tr := s.translator(w, r)
	data := networkPageData{
		basePageData: s.buildBasePageData(r, tr, tr.T("network.title"), "/network"),
		Network:      s.networkView(r, tr),
	}
	s.render(w, r, "network", data)
}

func (s *server) handleRoadmap(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	tr := s.translator(w, r)
	data := roadmapPageData{
		basePageData: s.buildBasePageData(r, tr, tr.T("roadmap.title"), "/performance/roadmap"),
		Roadmap:      s.content.Roadmap(tr.Locale()),
	}
	s.render(w, r, "roadmap", data)
}

// networkView renders the hub map. The selection comes from the hub query
// parameter; an unknown id renders no panel.
func (s *server) networkView(r *http.Request, tr *i18n.Translator) networkView {
	locale := tr.Locale()
	panel := hubs.NewPanel(s.content.Hubs(locale))
	panel.Select(r.URL.Query().Get(HubParam))

	selectedID := ""
	if hub, ok := panel.Selected(); ok {
		selectedID = hub.ID
	}

	view := networkView{
		HQ:    s.content.HQ(locale),
		Stats: s.content.NetworkStats(locale),
		Panel: panel.View(hubURL(r, ""), hubs.Labels(tr.T)),
	}
	for _, hub := range panel.Hubs() {
		view.Hubs = append(view.Hubs, hubMarker{
			Hub:      hub,
			Href:     hubURL(r, hub.ID),
			Selected: hub.ID == selectedID,
		})
	}
	return view
}

// hubURL links to the current page with the hub parameter set to id, or
// removed when id is blank. The anchor keeps the map in view.
func hubURL(r *http.Request, id string) string {
	query := r.URL.Query()
	if id == "" {
		query.Del(HubParam)
	} else {
		query.Set(HubParam, id)
	}
	u := url.URL{Path: r.URL.Path, RawQuery: query.Encode(), Fragment: "network"}
	return u.String()
}

func (s *server) financialView() financialView {
	var view financialView
	for _, stat := range s.content.GrowthStats() {
		target := stat.Target()
		view.Growth = append(view.Growth, growthView{
			ID:         "growth-" + stat.Key,
			Key:        stat.Key,
			Target:     target,
			DurationMs: target.Duration.Milliseconds(),
			Final:      stat.Final(),
		})
	}
	max := s.content.MaxRevenue()
	for _, year := range s.content.YearlyFigures() {
		view.Bars = append(view.Bars, barView{
			Year:      year.Year,
			Revenue:   year.Revenue,
			Employees: year.Employees,
			Percent:   year.BarPercent(max),
		})
	}
	view.TrackRecords = s.content.TrackRecords()
	return view
}

func (s *server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	log := s.requestLog(r, "general").WithField("template", name)
	tmpl, ok := s.templates[name]
	if !ok {
		log.Error("missing template", nil)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		log.WithField("path", r.URL.Path).Error("render page", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	s.recordRender(name)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// requestLog scopes log entries to the request id stamped by the HTTP logger.
func (s *server) requestLog(r *http.Request, category string) *logging.LogContext {
	return s.logger.WithRequestID(logging.RequestID(r.Context())).WithCategory(category)
}
