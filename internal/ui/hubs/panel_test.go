package hubs

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
)

var testLabels = PanelLabels{Hint: "Select a hub", Close: "Close", Partner: "Partner", Activity: "Activity"}

func renderSlot(t *testing.T, v PanelView) string {
	t.Helper()
	var buf bytes.Buffer
	if err := RenderSlot(&buf, v); err != nil {
		t.Fatalf("render slot: %v", err)
	}
	return buf.String()
}

func TestRenderSlotShowsHintWithoutSelection(t *testing.T) {
	p := NewPanel(sampleHubs())
	got := renderSlot(t, p.View("/network#network", testLabels))
	if !strings.Contains(got, `<p class="hint">Select a hub</p>`) {
		t.Fatalf("expected hint, got %q", got)
	}
	if strings.Contains(got, "data-hub-panel") {
		t.Fatalf("no panel expected without selection: %q", got)
	}
}

func TestRenderSlotShowsSelectedHub(t *testing.T) {
	p := NewPanel(sampleHubs())
	p.Select("uk")
	got := renderSlot(t, p.View("/network?lang=en#network", testLabels))
	for _, want := range []string{
		`data-hub-panel="uk"`,
		`href="/network?lang=en#network"`,
		`aria-label="Close"`,
		"🇬🇧",
		`<dd class="partner">Bristol NHS Medical Staff</dd>`,
		`<p class="highlight">60% medical AI adoption in NHS-led market</p>`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("panel missing %q: %s", want, got)
		}
	}

	p.Select("chile")
	if got := renderSlot(t, p.View("/", testLabels)); strings.Contains(got, `class="highlight"`) {
		t.Fatalf("chile has no highlight: %s", got)
	}
}

func TestRenderSlotEscapesContent(t *testing.T) {
	p := NewPanel([]Hub{{ID: "x", Name: "<b>bold</b>", Highlight: "a & b"}})
	p.Select("x")
	got := renderSlot(t, p.View("/", testLabels))
	if strings.Contains(got, "<b>") || !strings.Contains(got, "a &amp; b") {
		t.Fatalf("content not escaped: %s", got)
	}
}

func TestDefinePanelTemplatesMatchesRenderSlot(t *testing.T) {
	page := template.Must(template.New("page").Parse(`<div>{{template "hub-panel-slot" .}}</div>`))
	if err := DefinePanelTemplates(page); err != nil {
		t.Fatalf("define: %v", err)
	}
	p := NewPanel(sampleHubs())
	p.Select("brazil")
	view := p.View("/#network", testLabels)

	var buf bytes.Buffer
	if err := page.Execute(&buf, view); err != nil {
		t.Fatalf("execute page: %v", err)
	}
	want := "<div>" + renderSlot(t, view) + "</div>"
	if buf.String() != want {
		t.Fatalf("page panel differs from client panel:\n%s\n%s", buf.String(), want)
	}
}

func TestLabelsUsesTranslator(t *testing.T) {
	got := Labels(func(key string, _ ...any) string { return "[" + key + "]" })
	if got.Hint != "[network.hint]" || got.Activity != "[network.activity]" {
		t.Fatalf("unexpected labels %+v", got)
	}
}
