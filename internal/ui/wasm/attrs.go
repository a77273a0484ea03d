// Package wasm is the browser client. It wires DOM events into the reveal,
// counter, hub panel and map loader packages.
package wasm

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Its-donkey/gbpl-site/internal/ui/counter"
	"github.com/Its-donkey/gbpl-site/internal/ui/hubs"
	"github.com/Its-donkey/gbpl-site/internal/ui/i18n"
	"github.com/Its-donkey/gbpl-site/internal/ui/maploader"
)

// Observer ids are namespaced so a counter never collides with a section.
const (
	revealPrefix  = "reveal:"
	counterPrefix = "counter:"
)

// attrFunc reads one attribute of a DOM element.
type attrFunc func(name string) string

// parseTarget reads a counter's data-* attributes. Missing duration and
// steps fall back to the counter defaults.
func parseTarget(attr attrFunc) (counter.Target, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(attr("data-target")), 64)
	if err != nil {
		return counter.Target{}, fmt.Errorf("data-target: %w", err)
	}
	t := counter.Target{Value: value}
	if raw := strings.TrimSpace(attr("data-decimals")); raw != "" {
		if t.Decimals, err = strconv.Atoi(raw); err != nil {
			return counter.Target{}, fmt.Errorf("data-decimals: %w", err)
		}
	}
	if raw := strings.TrimSpace(attr("data-duration")); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			return counter.Target{}, fmt.Errorf("data-duration: %w", err)
		}
		t.Duration = time.Duration(ms) * time.Millisecond
	}
	if raw := strings.TrimSpace(attr("data-steps")); raw != "" {
		if t.Steps, err = strconv.Atoi(raw); err != nil {
			return counter.Target{}, fmt.Errorf("data-steps: %w", err)
		}
	}
	t = t.WithDefaults()
	return t, t.Validate()
}

// mapSettings is what a live map container carries in its data-* attributes.
type mapSettings struct {
	Options maploader.Options
	Center  maploader.LatLng
	Zoom    int
	Label   string
}

// parseMapSettings splits the rendered script URL back into loader options
// and reads the surface settings.
func parseMapSettings(attr attrFunc) (mapSettings, error) {
	src, err := url.Parse(strings.TrimSpace(attr("data-map-script")))
	if err != nil {
		return mapSettings{}, fmt.Errorf("data-map-script: %w", err)
	}
	query := src.Query()
	callback := strings.TrimSpace(attr("data-map-callback"))
	if callback == "" {
		callback = query.Get("callback")
	}
	base := *src
	base.RawQuery = ""

	settings := mapSettings{
		Options: maploader.Options{
			Credential:   query.Get("key"),
			ScriptBase:   base.String(),
			CallbackName: callback,
		},
		Label: strings.TrimSpace(attr("data-map-label")),
	}
	if settings.Center.Lat, err = strconv.ParseFloat(attr("data-map-lat"), 64); err != nil {
		return mapSettings{}, fmt.Errorf("data-map-lat: %w", err)
	}
	if settings.Center.Lng, err = strconv.ParseFloat(attr("data-map-lng"), 64); err != nil {
		return mapSettings{}, fmt.Errorf("data-map-lng: %w", err)
	}
	if zoom, err := strconv.Atoi(strings.TrimSpace(attr("data-map-zoom"))); err == nil {
		settings.Zoom = zoom
	}
	return settings, nil
}

// renderPanel returns the slot contents for the panel's current selection:
// the detail card, or the selection hint when nothing is selected.
func renderPanel(panel *hubs.Panel, tr *i18n.Translator, closeHref string) string {
	var buf bytes.Buffer
	if err := hubs.RenderSlot(&buf, panel.View(closeHref, hubs.Labels(tr.T))); err != nil {
		return ""
	}
	return buf.String()
}

// unmountOnHide reports whether a pagehide tears the page down. A page kept
// in the back/forward cache resumes where it stopped, so its ramps stay.
func unmountOnHide(persisted bool) bool {
	return !persisted
}

// hubHref returns rawURL with the hub parameter set to id, or removed when
// id is blank, anchored on the network section.
func hubHref(rawURL, id string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "#network"
	}
	query := u.Query()
	if id == "" {
		query.Del("hub")
	} else {
		query.Set("hub", id)
	}
	next := url.URL{Path: u.Path, RawQuery: query.Encode(), Fragment: "network"}
	return next.String()
}
