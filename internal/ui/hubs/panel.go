package hubs

import (
	_ "embed"
	"html/template"
	"io"
)

//go:embed panel.tmpl
var panelSource string

var slotTemplate = template.Must(template.New("hub-panel.tmpl").Parse(panelSource))

// PanelLabels is the translated chrome around the panel contents.
type PanelLabels struct {
	Hint     string
	Close    string
	Partner  string
	Activity string
}

// Labels looks up the panel chrome through translate.
func Labels(translate func(key string, args ...any) string) PanelLabels {
	return PanelLabels{
		Hint:     translate("network.hint"),
		Close:    translate("network.close"),
		Partner:  translate("network.partner"),
		Activity: translate("network.activity"),
	}
}

// PanelView is the data behind the "hub-panel-slot" template.
type PanelView struct {
	Visible   bool
	Detail    Detail
	CloseHref string
	Labels    PanelLabels
}

// View snapshots the current selection for rendering.
func (p *Panel) View(closeHref string, labels PanelLabels) PanelView {
	detail, ok := p.Detail()
	return PanelView{Visible: ok, Detail: detail, CloseHref: closeHref, Labels: labels}
}

// DefinePanelTemplates adds "hub-panel-slot" and "hub-panel" to t so page
// templates render the same markup the browser client does.
func DefinePanelTemplates(t *template.Template) error {
	_, err := t.New("hub-panel.tmpl").Parse(panelSource)
	return err
}

// RenderSlot writes the slot contents for v: the detail card when a hub is
// selected, the hint otherwise.
func RenderSlot(w io.Writer, v PanelView) error {
	return slotTemplate.ExecuteTemplate(w, "hub-panel-slot", v)
}
