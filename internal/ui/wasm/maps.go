//go:build js && wasm

package wasm

import (
	"encoding/json"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/Its-donkey/gbpl-site/internal/ui/maploader"
)

// domInserter appends the provider script to the document head and exposes
// the provider's global ready callback.
type domInserter struct{}

func (domInserter) InsertScript(src, callbackName string, ready func(), fail func(error)) error {
	head := Document.Get("head")
	if !head.Truthy() {
		return errors.New("document has no head")
	}
	onReady := js.FuncOf(func(this js.Value, args []js.Value) any {
		ready()
		return nil
	})
	onError := js.FuncOf(func(this js.Value, args []js.Value) any {
		fail(fmt.Errorf("script %s failed to load", callbackName))
		return nil
	})
	handlers = append(handlers, onReady, onError)
	js.Global().Set(callbackName, onReady)

	script := Document.Call("createElement", "script")
	script.Set("src", src)
	script.Set("async", true)
	script.Set("defer", true)
	script.Call("addEventListener", "error", onError)
	head.Call("appendChild", script)
	return nil
}

// googleContainer mounts a provider map inside one element. Exceptions
// thrown by the provider surface as panics, which InitializeSurface contains.
type googleContainer struct {
	el js.Value
}

func (c googleContainer) Mount(opts maploader.MapOptions) error {
	maps := js.Global().Get("google")
	if maps.Truthy() {
		maps = maps.Get("maps")
	}
	if !maps.Truthy() {
		return errors.New("provider namespace missing")
	}
	raw, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("encode map options: %w", err)
	}
	c.el.Set("innerHTML", "")
	jsOpts := js.Global().Get("JSON").Call("parse", string(raw))
	view := maps.Get("Map").New(c.el, jsOpts)
	maps.Get("Marker").New(map[string]any{
		"map":       view,
		"title":     opts.Marker.Title,
		"animation": maps.Get("Animation").Get(opts.Marker.Animation),
		"position": map[string]any{
			"lat": opts.Marker.Position.Lat,
			"lng": opts.Marker.Position.Lng,
		},
	})
	return nil
}

// initMaps loads the provider script once for every live map container and
// swaps a container to the vector fallback when loading or mounting fails.
func (a *app) initMaps() {
	for _, el := range queryAll("[data-map]") {
		el := el
		settings, err := parseMapSettings(attrOf(el))
		if err != nil {
			warn("map", err.Error())
			showFallback(el, maploader.StateError)
			continue
		}
		opts := settings.Options
		opts.Inserter = domInserter{}
		loader := maploader.Default(opts)
		loader.Load(func(st maploader.State) {
			if st != maploader.StateReady {
				showFallback(el, st)
				return
			}
			next, err := loader.InitializeSurface(googleContainer{el: el}, settings.Center, settings.Zoom, settings.Label)
			if err != nil {
				warn("map", err.Error())
				showFallback(el, next)
				return
			}
			el.Call("setAttribute", "data-map-state", next.String())
		})
	}
}

func showFallback(el js.Value, st maploader.State) {
	el.Set("innerHTML", string(maploader.FallbackSVG()))
	el.Call("setAttribute", "data-map-state", st.String())
}
