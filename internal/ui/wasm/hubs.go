//go:build js && wasm

package wasm

import (
	"net/url"
	"syscall/js"

	"github.com/Its-donkey/gbpl-site/internal/ui/content"
	"github.com/Its-donkey/gbpl-site/internal/ui/hubs"
)

// initHubs takes over the hub markers so selecting and dismissing a hub
// no longer reloads the page.
func (a *app) initHubs() {
	slot := Document.Call("querySelector", "[data-hub-panel-slot]")
	if !slot.Truthy() {
		return
	}
	site, err := content.Default()
	if err != nil {
		warn("hubs", err.Error())
		return
	}
	panel := hubs.NewPanel(site.Hubs(a.locale))

	location := js.Global().Get("location")
	if u, err := url.Parse(location.Get("href").String()); err == nil {
		panel.Select(u.Query().Get("hub"))
	}

	render := func() {
		href := location.Get("href").String()
		slot.Set("innerHTML", renderPanel(panel, a.tr, hubHref(href, "")))
		selected, _ := panel.Selected()
		for _, marker := range queryAll("[data-hub]") {
			marker.Get("classList").Call("toggle", "selected", attrOf(marker)("data-hub") == selected.ID)
		}
	}
	replaceURL := func(id string) {
		history := js.Global().Get("history")
		if history.Truthy() {
			history.Call("replaceState", js.Null(), "", hubHref(location.Get("href").String(), id))
		}
	}

	for _, marker := range queryAll("[data-hub]") {
		id := attrOf(marker)("data-hub")
		a.bind(marker, "click", func(evt js.Value) {
			if !panel.Select(id) {
				return
			}
			evt.Call("preventDefault")
			replaceURL(id)
			render()
		})
	}
	a.bind(slot, "click", func(evt js.Value) {
		closer := evt.Get("target").Call("closest", "[data-hub-close]")
		if !closer.Truthy() {
			return
		}
		evt.Call("preventDefault")
		panel.Clear()
		replaceURL("")
		render()
	})
	a.bind(Document, "keydown", func(evt js.Value) {
		if evt.Get("key").String() == "Escape" && panel.Visible() {
			panel.Clear()
			replaceURL("")
			render()
		}
	})
}
