//go:build js && wasm

package wasm

import (
	"context"
	"syscall/js"

	"github.com/Its-donkey/gbpl-site/internal/ui/counter"
	"github.com/Its-donkey/gbpl-site/internal/ui/i18n"
	"github.com/Its-donkey/gbpl-site/internal/ui/reveal"
)

var (
	// Document references the global browser document for DOM interactions.
	Document js.Value
	// handlers keeps bound callbacks alive for the page lifetime.
	handlers []js.Func
)

type app struct {
	ctx      context.Context
	cancel   context.CancelFunc
	observer *reveal.Observer
	detector js.Value
	ramps    []*counter.Ramp
	tr       *i18n.Translator
	locale   string
}

// RunApp enhances the server-rendered page and blocks forever.
func RunApp() {
	done := make(chan struct{})
	window := js.Global()
	Document = window.Get("document")
	Document.Get("documentElement").Get("classList").Call("add", "js")

	ctx, cancel := context.WithCancel(context.Background())
	a := &app{
		ctx:      ctx,
		cancel:   cancel,
		observer: reveal.NewObserver(),
	}
	bundle := i18n.Default()
	tag, ok := bundle.ParseTag(attrOf(Document.Get("documentElement"))("lang"))
	if !ok {
		tag = bundle.Base()
	}
	a.tr = bundle.Translator(tag)
	a.locale = a.tr.Locale()

	a.initReveal()
	a.initCounters()
	a.initHubs()
	a.initMaps()
	// Stop waits on ramp goroutines, so it must not run on the event loop.
	a.bind(window, "pagehide", func(evt js.Value) {
		if unmountOnHide(evt.Truthy() && evt.Get("persisted").Bool()) {
			go a.unmount()
		}
	})
	<-done
}

func (a *app) bind(target js.Value, event string, fn func(js.Value)) {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		var evt js.Value
		if len(args) > 0 {
			evt = args[0]
		}
		fn(evt)
		return nil
	})
	handlers = append(handlers, cb)
	target.Call("addEventListener", event, cb)
}

func queryAll(selector string) []js.Value {
	list := Document.Call("querySelectorAll", selector)
	out := make([]js.Value, 0, list.Length())
	for i := 0; i < list.Length(); i++ {
		out = append(out, list.Index(i))
	}
	return out
}

func attrOf(el js.Value) attrFunc {
	return func(name string) string {
		v := el.Call("getAttribute", name)
		if v.IsNull() || v.IsUndefined() {
			return ""
		}
		return v.String()
	}
}

func warn(args ...any) {
	console := js.Global().Get("console")
	if console.Truthy() {
		console.Call("warn", append([]any{"gbpl:"}, args...)...)
	}
}

// unmount stops every ramp and drops pending registrations.
func (a *app) unmount() {
	a.cancel()
	for _, ramp := range a.ramps {
		ramp.Stop()
	}
	for _, id := range a.observer.Pending() {
		a.observer.Unobserve(id)
	}
	if a.detector.Truthy() {
		a.detector.Call("disconnect")
	}
}
