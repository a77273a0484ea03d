package hubs

import (
	"sync"
	"testing"
)

func sampleHubs() []Hub {
	return []Hub{
		{
			ID:          "uk",
			Name:        "United Kingdom",
			City:        "Bristol NHS medical staff",
			Partner:     "Bristol NHS Medical Staff",
			Status:      "MOU signed, pilot started",
			Description: "Liver and chest AI validation",
			Highlight:   "60% medical AI adoption in NHS-led market",
			Position:    Position{Top: 28, Left: 47},
			Flag:        "🇬🇧",
			Color:       "teal",
		},
		{
			ID:       "chile",
			Name:     "Chile",
			Status:   "MOU signed, pilot started",
			Position: Position{Top: 72, Left: 28},
			Flag:     "🇨🇱",
			Color:    "coral",
		},
		{
			ID:        "brazil",
			Name:      "Brazil",
			Status:    "MOU signed, pilot started",
			Highlight: "ANVISA registration support",
			Position:  Position{Top: 62, Left: 35},
			Flag:      "🇧🇷",
			Color:     "navy",
		},
	}
}

func TestNewPanelStartsEmpty(t *testing.T) {
	p := NewPanel(sampleHubs())
	if p.Visible() {
		t.Fatalf("new panel should not be visible")
	}
	if _, ok := p.Detail(); ok {
		t.Fatalf("no detail expected without a selection")
	}
	if len(p.Hubs()) != 3 {
		t.Fatalf("expected 3 hubs, got %d", len(p.Hubs()))
	}
}

func TestSelectShowsHubDetail(t *testing.T) {
	p := NewPanel(sampleHubs())
	if !p.Select("uk") {
		t.Fatalf("select uk should succeed")
	}
	if !p.Visible() {
		t.Fatalf("panel should be visible after selecting")
	}
	d, ok := p.Detail()
	if !ok {
		t.Fatalf("expected detail")
	}
	if d.Flag != "🇬🇧" || d.Status != "MOU signed, pilot started" {
		t.Fatalf("unexpected detail %+v", d)
	}
	if !d.HasHighlight {
		t.Fatalf("uk has a highlight")
	}
}

func TestSelectUnknownIsNoOp(t *testing.T) {
	p := NewPanel(sampleHubs())
	if p.Select("unknown") {
		t.Fatalf("unknown id should not select")
	}
	if p.Visible() {
		t.Fatalf("unknown id must leave panel hidden")
	}

	p.Select("brazil")
	if p.Select("atlantis") {
		t.Fatalf("unknown id should not select")
	}
	h, _ := p.Selected()
	if h.ID != "brazil" {
		t.Fatalf("selection changed to %q", h.ID)
	}
}

func TestSelectReplacesAndClearHides(t *testing.T) {
	p := NewPanel(sampleHubs())
	p.Select("uk")
	p.Select("chile")
	h, ok := p.Selected()
	if !ok || h.ID != "chile" {
		t.Fatalf("expected chile, got %+v", h)
	}
	p.Clear()
	if p.Visible() {
		t.Fatalf("clear should hide the panel")
	}
	p.Clear()
	if p.Visible() {
		t.Fatalf("clear on empty panel should stay hidden")
	}
}

func TestHighlightOnlyWhenNonEmpty(t *testing.T) {
	tests := []struct {
		name      string
		highlight string
		want      bool
	}{
		{name: "present", highlight: "ANVISA registration support", want: true},
		{name: "empty", highlight: "", want: false},
		{name: "blank", highlight: "   ", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DetailOf(Hub{ID: "x", Highlight: tt.highlight})
			if d.HasHighlight != tt.want {
				t.Fatalf("HasHighlight = %v, want %v", d.HasHighlight, tt.want)
			}
		})
	}
}

func TestDuplicateAndBlankIDs(t *testing.T) {
	p := NewPanel([]Hub{
		{ID: "uk", Name: "first"},
		{ID: "uk", Name: "second"},
		{ID: " ", Name: "blank"},
	})
	if p.Select(" ") || p.Select("") {
		t.Fatalf("blank ids are not selectable")
	}
	p.Select("uk")
	h, _ := p.Selected()
	if h.Name != "first" {
		t.Fatalf("first occurrence should win, got %q", h.Name)
	}
	if _, ok := p.Lookup("uk"); !ok {
		t.Fatalf("lookup should find uk")
	}
}

func TestHubsReturnsCopy(t *testing.T) {
	p := NewPanel(sampleHubs())
	list := p.Hubs()
	list[0].Flag = "X"
	p.Select("uk")
	d, _ := p.Detail()
	if d.Flag != "🇬🇧" {
		t.Fatalf("mutating the copy changed the panel")
	}
}

func TestConcurrentSelect(t *testing.T) {
	p := NewPanel(sampleHubs())
	ids := []string{"uk", "chile", "brazil", "nope"}
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				p.Clear()
				return
			}
			p.Select(ids[i%len(ids)])
			p.Detail()
		}(i)
	}
	wg.Wait()
	if h, ok := p.Selected(); ok && h.ID == "" {
		t.Fatalf("selection must be a real hub")
	}
}

func TestZeroPanelHasNoSelection(t *testing.T) {
	var p Panel
	if p.Visible() {
		t.Fatalf("zero panel should not be visible")
	}
	if _, ok := p.Selected(); ok {
		t.Fatalf("zero panel should have no selection")
	}
	if _, ok := p.Detail(); ok {
		t.Fatalf("zero panel should have no detail")
	}
	if p.Select("uk") {
		t.Fatalf("zero panel has no hubs to select")
	}
	p.Clear()
	if p.Visible() {
		t.Fatalf("clear on zero panel should stay hidden")
	}
}
