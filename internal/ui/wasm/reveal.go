//go:build js && wasm

package wasm

import (
	"syscall/js"

	"github.com/Its-donkey/gbpl-site/internal/ui/counter"
)

const observeIDAttr = "data-observe-id"

// initReveal connects an IntersectionObserver to the reveal observer. Without
// IntersectionObserver support every element counts as visible at once.
func (a *app) initReveal() {
	if ctor := js.Global().Get("IntersectionObserver"); ctor.Truthy() {
		cb := js.FuncOf(func(this js.Value, args []js.Value) any {
			if len(args) == 0 {
				return nil
			}
			entries := args[0]
			for i := 0; i < entries.Length(); i++ {
				entry := entries.Index(i)
				target := entry.Get("target")
				id := attrOf(target)(observeIDAttr)
				if a.observer.Notify(id, entry.Get("isIntersecting").Bool()) {
					a.detector.Call("unobserve", target)
				}
			}
			return nil
		})
		handlers = append(handlers, cb)
		a.detector = ctor.New(cb, map[string]any{"threshold": 0.2})
	}

	for _, el := range queryAll("[data-reveal]") {
		el := el
		id := revealPrefix + attrOf(el)("data-reveal")
		if !a.observer.Observe(id, func(string) {
			el.Get("classList").Call("add", "revealed")
		}) {
			continue
		}
		a.watch(el, id)
	}
}

// watch hands el to the visibility detector under id.
func (a *app) watch(el js.Value, id string) {
	el.Call("setAttribute", observeIDAttr, id)
	if a.detector.Truthy() {
		a.detector.Call("observe", el)
		return
	}
	a.observer.Notify(id, true)
}

// initCounters resets every server-rendered figure to zero and ramps it up
// on first reveal.
func (a *app) initCounters() {
	for _, el := range queryAll("[data-counter]") {
		el := el
		target, err := parseTarget(attrOf(el))
		if err != nil {
			warn("counter", attrOf(el)("data-counter"), err.Error())
			continue
		}
		id := counterPrefix + attrOf(el)("data-counter")
		ramp, err := counter.Bind(a.ctx, a.observer, id, target, counter.SystemClock{}, func(display string, _ counter.State) {
			el.Set("textContent", display)
		})
		if err != nil {
			warn("counter", id, err.Error())
			continue
		}
		el.Set("textContent", counter.Format(0, target.Decimals))
		a.ramps = append(a.ramps, ramp)
		a.watch(el, id)
	}
}
