// Package maploader loads the third-party map script once per process and
// falls back to a static vector map when it cannot.
//
// Loader is an explicit state machine:
//
//	Idle -> Loading -> Ready | Error
//	NoCredential (entered at construction when no credential is configured)
//
// The first Load issues the single script insertion; every other consumer,
// concurrent or later, attaches as a subscriber and receives the same
// terminal state. Nothing is retried: Error is permanent for the process.
package maploader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Its-donkey/gbpl-site/logging"
)

const (
	// DefaultScriptBase is the provider script endpoint.
	DefaultScriptBase = "https://maps.googleapis.com/maps/api/js"
	// DefaultCallbackName is the global function the provider calls when ready.
	DefaultCallbackName = "initGoogleMap"
	// InstrumentationName scopes the loader's meter.
	InstrumentationName = "github.com/Its-donkey/gbpl-site/internal/ui/maploader"
)

// ScriptInserter issues the provider script request. Implementations must
// arrange for ready to be called when the provider invokes callbackName, or
// for fail to be called when the script errors. Returning an error is
// treated as an immediate load failure.
type ScriptInserter interface {
	InsertScript(src, callbackName string, ready func(), fail func(error)) error
}

// ScriptInserterFunc adapts a function to ScriptInserter.
type ScriptInserterFunc func(src, callbackName string, ready func(), fail func(error)) error

// InsertScript implements ScriptInserter.
func (f ScriptInserterFunc) InsertScript(src, callbackName string, ready func(), fail func(error)) error {
	return f(src, callbackName, ready, fail)
}

// Options configures a Loader.
type Options struct {
	Credential   string
	ScriptBase   string
	CallbackName string
	Inserter     ScriptInserter
	Logger       *logging.Logger
	Meter        metric.Meter
}

type waiter struct {
	id uint64
	fn func(State)
}

// Loader owns the shared script state.
type Loader struct {
	scriptBase   string
	callbackName string
	credential   string
	inserter     ScriptInserter
	logger       *logging.Logger
	transitions  metric.Int64Counter

	mu      sync.Mutex
	state   State
	err     error
	inserts int
	nextID  uint64
	waiters []waiter
}

// New constructs a Loader. A blank credential puts it in StateNoCredential
// immediately; such a loader never touches its inserter.
func New(opts Options) *Loader {
	l := &Loader{
		scriptBase:   strings.TrimSpace(opts.ScriptBase),
		callbackName: strings.TrimSpace(opts.CallbackName),
		credential:   strings.TrimSpace(opts.Credential),
		inserter:     opts.Inserter,
		logger:       opts.Logger,
		transitions:  newTransitionCounter(opts.Meter),
		state:        StateIdle,
	}
	if l.scriptBase == "" {
		l.scriptBase = DefaultScriptBase
	}
	if l.callbackName == "" {
		l.callbackName = DefaultCallbackName
	}
	if l.credential == "" {
		l.state = StateNoCredential
		l.err = ErrNoCredential
		l.record(StateNoCredential)
	}
	return l
}

var (
	defaultOnce   sync.Once
	defaultLoader *Loader
)

// Default returns the process-wide loader, built from opts on the first call.
// Options passed to later calls are ignored.
func Default(opts Options) *Loader {
	defaultOnce.Do(func() {
		defaultLoader = New(opts)
	})
	return defaultLoader
}

// State returns the current state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Err returns the reason for a fallback state, if any.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Inserts reports how many script insertions were issued (0 or 1).
func (l *Loader) Inserts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inserts
}

// CallbackName is the global function name the provider calls on success.
func (l *Loader) CallbackName() string {
	return l.callbackName
}

// ScriptURL returns the provider URL, or "" when no credential is configured.
func (l *Loader) ScriptURL() string {
	if l.credential == "" {
		return ""
	}
	return ScriptURL(l.scriptBase, l.credential, l.callbackName)
}

// ScriptURL builds the provider script URL for a credential and callback.
func ScriptURL(base, credential, callbackName string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultScriptBase
	}
	return base + "?key=" + url.QueryEscape(credential) + "&callback=" + url.QueryEscape(callbackName)
}

// Load registers notify for the terminal state and starts the script request
// if nobody has yet. When the loader is already terminal, notify runs
// immediately. notify may be nil. The returned cancel detaches notify; it
// never aborts the shared request.
func (l *Loader) Load(notify func(State)) (cancel func()) {
	l.mu.Lock()
	if l.state.Terminal() {
		st := l.state
		l.mu.Unlock()
		if notify != nil {
			notify(st)
		}
		return func() {}
	}

	var id uint64
	if notify != nil {
		l.nextID++
		id = l.nextID
		l.waiters = append(l.waiters, waiter{id: id, fn: notify})
	}

	start := l.state == StateIdle
	if start {
		l.state = StateLoading
		l.inserts++
	}
	src := ScriptURL(l.scriptBase, l.credential, l.callbackName)
	l.mu.Unlock()

	if start {
		l.record(StateLoading)
		l.logger.Info("maps", "requesting map provider script", map[string]any{
			"callback": l.callbackName,
		})
		if l.inserter == nil {
			l.fail(errors.New("no script inserter configured"))
		} else if err := l.inserter.InsertScript(src, l.callbackName, l.ready, l.fail); err != nil {
			l.fail(err)
		}
	}

	if id == 0 {
		return func() {}
	}
	return func() { l.detach(id) }
}

// Wait starts or joins the load and blocks until a terminal state or ctx ends.
func (l *Loader) Wait(ctx context.Context) (State, error) {
	ch := make(chan State, 1)
	cancel := l.Load(func(st State) { ch <- st })
	select {
	case st := <-ch:
		return st, nil
	case <-ctx.Done():
		cancel()
		return l.State(), ctx.Err()
	}
}

func (l *Loader) detach(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, w := range l.waiters {
		if w.id == id {
			l.waiters = append(l.waiters[:i], l.waiters[i+1:]...)
			return
		}
	}
}

func (l *Loader) ready() {
	l.resolve(StateReady, nil)
}

func (l *Loader) fail(err error) {
	if err == nil {
		err = ErrScriptLoad
	} else {
		err = fmt.Errorf("%w: %w", ErrScriptLoad, err)
	}
	l.resolve(StateError, err)
}

// resolve moves Loading to a terminal state and notifies every waiter.
// Signals arriving in any other state are ignored.
func (l *Loader) resolve(to State, err error) {
	l.mu.Lock()
	if l.state != StateLoading {
		l.mu.Unlock()
		return
	}
	l.state = to
	l.err = err
	waiters := l.waiters
	l.waiters = nil
	l.mu.Unlock()

	l.record(to)
	if err != nil {
		l.logger.Error("maps", "map provider script failed, using vector fallback", err, nil)
	} else {
		l.logger.Info("maps", "map provider script ready", map[string]any{"waiters": len(waiters)})
	}
	for _, w := range waiters {
		w.fn(to)
	}
}

func (l *Loader) record(st State) {
	l.transitions.Add(context.Background(), 1, metric.WithAttributes(attribute.String("state", st.String())))
}

func newTransitionCounter(meter metric.Meter) metric.Int64Counter {
	if meter == nil {
		meter = otel.Meter(InstrumentationName)
	}
	counter, err := meter.Int64Counter(
		"gbpl.maps.loader.transitions",
		metric.WithDescription("Map provider script state transitions."),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		counter, _ = noop.NewMeterProvider().Meter(InstrumentationName).Int64Counter("gbpl.maps.loader.transitions")
	}
	return counter
}
