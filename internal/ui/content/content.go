// Package content holds the site's static display tables: partner hubs,
// headline figures and the roadmap. Tables are read once from the embedded
// content.yaml and never change afterwards.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Its-donkey/gbpl-site/internal/ui/counter"
	"github.com/Its-donkey/gbpl-site/internal/ui/hubs"
	"github.com/Its-donkey/gbpl-site/internal/ui/maploader"
)

//go:embed content.yaml
var embedded []byte

// DefaultBaseLocale is used when the document does not name one.
const DefaultBaseLocale = "ko"

// Phase statuses on the roadmap.
const (
	StatusDone    = "done"
	StatusActive  = "active"
	StatusPlanned = "planned"
)

// ErrInvalidContent reports a document that fails validation.
var ErrInvalidContent = errors.New("content: invalid document")

// HQ is the headquarters marker drawn alongside the partner hubs.
type HQ struct {
	ID       string
	Label    string
	Flag     string
	Position hubs.Position
	Center   maploader.LatLng
}

// Stat is one network summary card.
type Stat struct {
	Value   string
	Label   string
	Caption string
}

// YearFigure is one bar of the financial chart.
type YearFigure struct {
	Year      string  `yaml:"year"`
	Revenue   float64 `yaml:"revenue"`
	Employees int     `yaml:"employees"`
}

// BarPercent is the bar height relative to max, in percent.
func (y YearFigure) BarPercent(max float64) float64 {
	if max <= 0 {
		return 0
	}
	return math.Round(y.Revenue/max*1000) / 10
}

// GrowthStat is an animated headline figure. Key selects its translation
// strings under "financial.<key>.*".
type GrowthStat struct {
	Key      string  `yaml:"key"`
	Value    float64 `yaml:"value"`
	Decimals int     `yaml:"decimals"`
}

// Target returns the counter configuration for the figure.
func (g GrowthStat) Target() counter.Target {
	return counter.Target{Value: g.Value, Decimals: g.Decimals}.WithDefaults()
}

// Final is the fully ramped display value.
func (g GrowthStat) Final() string {
	return counter.Format(g.Value, g.Decimals)
}

// RoadmapItem is one initiative inside a phase.
type RoadmapItem struct {
	Category    string
	Title       string
	Description string
	Color       string
}

// Phase is one period on the roadmap timeline.
type Phase struct {
	Period string
	Status string
	Title  string
	Items  []RoadmapItem
}

// CenterUse describes one way the shared centre is used.
type CenterUse struct {
	Title        string
	Subtitle     string
	Items        []string
	Contribution string
}

// Roadmap is the localized roadmap screen.
type Roadmap struct {
	Phases []Phase
	Center []CenterUse
}

type rawHub struct {
	ID          string        `yaml:"id"`
	Name        Text          `yaml:"name"`
	City        Text          `yaml:"city"`
	Partner     Text          `yaml:"partner"`
	Status      Text          `yaml:"status"`
	Description Text          `yaml:"description"`
	Highlight   Text          `yaml:"highlight"`
	Position    hubs.Position `yaml:"position"`
	Flag        string        `yaml:"flag"`
	Color       string        `yaml:"color"`
}

type rawHQ struct {
	ID       string           `yaml:"id"`
	Label    Text             `yaml:"label"`
	Flag     string           `yaml:"flag"`
	Position hubs.Position    `yaml:"position"`
	Center   maploader.LatLng `yaml:"center"`
}

type rawStat struct {
	Value   string `yaml:"value"`
	Label   Text   `yaml:"label"`
	Caption Text   `yaml:"caption"`
}

type rawItem struct {
	Category    Text   `yaml:"category"`
	Title       Text   `yaml:"title"`
	Description Text   `yaml:"description"`
	Color       string `yaml:"color"`
}

type rawPhase struct {
	Period string    `yaml:"period"`
	Status string    `yaml:"status"`
	Title  Text      `yaml:"title"`
	Items  []rawItem `yaml:"items"`
}

type rawCenter struct {
	Title        Text   `yaml:"title"`
	Subtitle     Text   `yaml:"subtitle"`
	Items        []Text `yaml:"items"`
	Contribution Text   `yaml:"contribution"`
}

type document struct {
	BaseLocale   string       `yaml:"base_locale"`
	HQ           rawHQ        `yaml:"hq"`
	Hubs         []rawHub     `yaml:"hubs"`
	NetworkStats []rawStat    `yaml:"network_stats"`
	Yearly       []YearFigure `yaml:"yearly"`
	Growth       []GrowthStat `yaml:"growth"`
	TrackRecords []string     `yaml:"track_records"`
	Roadmap      struct {
		Phases []rawPhase  `yaml:"phases"`
		Center []rawCenter `yaml:"center"`
	} `yaml:"roadmap"`
}

// Content is the parsed, validated set of tables.
type Content struct {
	doc document
}

// Parse decodes and validates a content document.
func Parse(data []byte) (*Content, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	doc.BaseLocale = strings.ToLower(strings.TrimSpace(doc.BaseLocale))
	if doc.BaseLocale == "" {
		doc.BaseLocale = DefaultBaseLocale
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	return &Content{doc: doc}, nil
}

var (
	defaultOnce    sync.Once
	defaultContent *Content
	defaultErr     error
)

// Default returns the embedded content, parsed on first use.
func Default() (*Content, error) {
	defaultOnce.Do(func() {
		defaultContent, defaultErr = Parse(embedded)
	})
	return defaultContent, defaultErr
}

func validate(doc document) error {
	var problems []string
	seen := make(map[string]struct{}, len(doc.Hubs))
	for i, h := range doc.Hubs {
		id := strings.TrimSpace(h.ID)
		switch {
		case id == "":
			problems = append(problems, fmt.Sprintf("hub %d has no id", i))
		case h.Name.In(doc.BaseLocale, doc.BaseLocale) == "":
			problems = append(problems, fmt.Sprintf("hub %q has no name", id))
		}
		if _, dup := seen[id]; dup && id != "" {
			problems = append(problems, fmt.Sprintf("hub %q is duplicated", id))
		}
		seen[id] = struct{}{}
		if !inPercent(h.Position) {
			problems = append(problems, fmt.Sprintf("hub %q position out of range", id))
		}
	}
	if !inPercent(doc.HQ.Position) {
		problems = append(problems, "hq position out of range")
	}
	if len(doc.Yearly) == 0 {
		problems = append(problems, "no yearly figures")
	}
	for _, y := range doc.Yearly {
		if y.Revenue < 0 || y.Employees < 0 {
			problems = append(problems, fmt.Sprintf("year %s has negative figures", y.Year))
		}
	}
	for _, g := range doc.Growth {
		if err := g.Target().Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("growth %q: %v", g.Key, err))
		}
	}
	for _, p := range doc.Roadmap.Phases {
		switch p.Status {
		case StatusDone, StatusActive, StatusPlanned:
		default:
			problems = append(problems, fmt.Sprintf("phase %s has unknown status %q", p.Period, p.Status))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidContent, strings.Join(problems, "; "))
	}
	return nil
}

func inPercent(p hubs.Position) bool {
	return p.Top >= 0 && p.Top <= 100 && p.Left >= 0 && p.Left <= 100
}

// BaseLocale is the locale used when a translation is missing.
func (c *Content) BaseLocale() string {
	return c.doc.BaseLocale
}

// Hubs returns the partner hubs localized for locale.
func (c *Content) Hubs(locale string) []hubs.Hub {
	base := c.doc.BaseLocale
	out := make([]hubs.Hub, 0, len(c.doc.Hubs))
	for _, h := range c.doc.Hubs {
		out = append(out, hubs.Hub{
			ID:          strings.TrimSpace(h.ID),
			Name:        h.Name.In(locale, base),
			City:        h.City.In(locale, base),
			Partner:     h.Partner.In(locale, base),
			Status:      h.Status.In(locale, base),
			Description: h.Description.In(locale, base),
			Highlight:   h.Highlight.In(locale, base),
			Position:    h.Position,
			Flag:        h.Flag,
			Color:       h.Color,
		})
	}
	return out
}

// HQ returns the headquarters marker.
func (c *Content) HQ(locale string) HQ {
	h := c.doc.HQ
	return HQ{
		ID:       h.ID,
		Label:    h.Label.In(locale, c.doc.BaseLocale),
		Flag:     h.Flag,
		Position: h.Position,
		Center:   h.Center,
	}
}

// NetworkStats returns the summary cards under the network map.
func (c *Content) NetworkStats(locale string) []Stat {
	out := make([]Stat, 0, len(c.doc.NetworkStats))
	for _, s := range c.doc.NetworkStats {
		out = append(out, Stat{
			Value:   s.Value,
			Label:   s.Label.In(locale, c.doc.BaseLocale),
			Caption: s.Caption.In(locale, c.doc.BaseLocale),
		})
	}
	return out
}

// YearlyFigures returns the chart bars in order.
func (c *Content) YearlyFigures() []YearFigure {
	return append([]YearFigure(nil), c.doc.Yearly...)
}

// MaxRevenue is the largest yearly revenue, the 100% bar height.
func (c *Content) MaxRevenue() float64 {
	max := 0.0
	for _, y := range c.doc.Yearly {
		if y.Revenue > max {
			max = y.Revenue
		}
	}
	return max
}

// GrowthStats returns the animated headline figures.
func (c *Content) GrowthStats() []GrowthStat {
	return append([]GrowthStat(nil), c.doc.Growth...)
}

// TrackRecords returns the track record keys; each resolves to
// "financial.track.<key>" and "financial.track.<key>.desc".
func (c *Content) TrackRecords() []string {
	return append([]string(nil), c.doc.TrackRecords...)
}

// Roadmap returns the roadmap screen localized for locale.
func (c *Content) Roadmap(locale string) Roadmap {
	base := c.doc.BaseLocale
	var r Roadmap
	for _, p := range c.doc.Roadmap.Phases {
		phase := Phase{
			Period: p.Period,
			Status: p.Status,
			Title:  p.Title.In(locale, base),
		}
		for _, it := range p.Items {
			phase.Items = append(phase.Items, RoadmapItem{
				Category:    it.Category.In(locale, base),
				Title:       it.Title.In(locale, base),
				Description: it.Description.In(locale, base),
				Color:       it.Color,
			})
		}
		r.Phases = append(r.Phases, phase)
	}
	for _, cu := range c.doc.Roadmap.Center {
		r.Center = append(r.Center, CenterUse{
			Title:        cu.Title.In(locale, base),
			Subtitle:     cu.Subtitle.In(locale, base),
			Items:        localizeAll(cu.Items, locale, base),
			Contribution: cu.Contribution.In(locale, base),
		})
	}
	return r
}
