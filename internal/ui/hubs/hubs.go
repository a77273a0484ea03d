// Package hubs holds the partner hub markers shown on the global network map
// and the single-selection detail panel that opens when one is clicked.
package hubs

import (
	"strings"
	"sync"
)

// Position places a marker on the map surface as percentages of its box.
type Position struct {
	Top  float64 `json:"top" yaml:"top"`
	Left float64 `json:"left" yaml:"left"`
}

// Hub is one static partner hub.
type Hub struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	City        string   `json:"city"`
	Partner     string   `json:"partner"`
	Status      string   `json:"status"`
	Description string   `json:"description"`
	Highlight   string   `json:"highlight,omitempty"`
	Position    Position `json:"position"`
	Flag        string   `json:"flag"`
	Color       string   `json:"color"`
}

// Detail is what the panel shows for the selected hub.
type Detail struct {
	ID           string
	Flag         string
	Name         string
	City         string
	Status       string
	Partner      string
	Description  string
	Highlight    string
	HasHighlight bool
	Color        string
}

// DetailOf builds the panel contents for h. The highlight block is only
// present when the hub carries a non-blank highlight.
func DetailOf(h Hub) Detail {
	highlight := strings.TrimSpace(h.Highlight)
	return Detail{
		ID:           h.ID,
		Flag:         h.Flag,
		Name:         h.Name,
		City:         h.City,
		Status:       h.Status,
		Partner:      h.Partner,
		Description:  h.Description,
		Highlight:    highlight,
		HasHighlight: highlight != "",
		Color:        h.Color,
	}
}

// Panel tracks which hub, if any, is selected. A zero Panel has no hubs and
// no selection.
type Panel struct {
	mu    sync.RWMutex
	hubs  []Hub
	index map[string]int
	// selected is the hub index plus one; zero means none.
	selected int
}

// NewPanel creates a panel over hubs with nothing selected. Hubs with a blank
// or duplicate id are not selectable; the first occurrence of an id wins.
func NewPanel(hubs []Hub) *Panel {
	p := &Panel{
		hubs:  append([]Hub(nil), hubs...),
		index: make(map[string]int, len(hubs)),
	}
	for i, h := range p.hubs {
		id := strings.TrimSpace(h.ID)
		if id == "" {
			continue
		}
		if _, dup := p.index[id]; dup {
			continue
		}
		p.index[id] = i
	}
	return p
}

// Hubs returns a copy of the markers in display order.
func (p *Panel) Hubs() []Hub {
	return append([]Hub(nil), p.hubs...)
}

// Lookup returns the hub with id.
func (p *Panel) Lookup(id string) (Hub, bool) {
	i, ok := p.index[strings.TrimSpace(id)]
	if !ok {
		return Hub{}, false
	}
	return p.hubs[i], true
}

// Select makes id the selected hub, replacing any previous selection.
// An unknown id leaves the panel unchanged and returns false.
func (p *Panel) Select(id string) bool {
	i, ok := p.index[strings.TrimSpace(id)]
	if !ok {
		return false
	}
	p.mu.Lock()
	p.selected = i + 1
	p.mu.Unlock()
	return true
}

// Clear dismisses the panel.
func (p *Panel) Clear() {
	p.mu.Lock()
	p.selected = 0
	p.mu.Unlock()
}

// Visible reports whether a hub is selected.
func (p *Panel) Visible() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selected > 0
}

// Selected returns the selected hub.
func (p *Panel) Selected() (Hub, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.selected == 0 {
		return Hub{}, false
	}
	return p.hubs[p.selected-1], true
}

// Detail returns the panel contents for the current selection.
func (p *Panel) Detail() (Detail, bool) {
	h, ok := p.Selected()
	if !ok {
		return Detail{}, false
	}
	return DetailOf(h), true
}
