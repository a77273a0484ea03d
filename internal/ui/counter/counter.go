// Package counter animates a numeric display from zero to a target value.
//
// A Ramp splits its duration into a fixed number of equal ticks. Every tick
// adds target/steps to the running value; once the value reaches the target
// (or the last step is taken) it is clamped to the target exactly and the
// ticker is stopped. Ramps start at most once.
package counter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/Its-donkey/gbpl-site/internal/ui/reveal"
)

const (
	// DefaultSteps is the number of ticks used when a Target leaves Steps unset.
	DefaultSteps = 60
	// DefaultDuration is the ramp length used when a Target leaves Duration unset.
	DefaultDuration = 2 * time.Second
)

// ErrInvalidTarget is returned for targets that cannot be animated.
var ErrInvalidTarget = errors.New("counter: invalid target")

// Target describes one animated figure.
type Target struct {
	Value    float64
	Decimals int
	Duration time.Duration
	Steps    int
}

// WithDefaults fills unset Duration and Steps.
func (t Target) WithDefaults() Target {
	if t.Duration == 0 {
		t.Duration = DefaultDuration
	}
	if t.Steps == 0 {
		t.Steps = DefaultSteps
	}
	return t
}

// Validate reports whether the target can be animated.
func (t Target) Validate() error {
	switch {
	case math.IsNaN(t.Value) || math.IsInf(t.Value, 0):
		return fmt.Errorf("%w: value %v", ErrInvalidTarget, t.Value)
	case t.Value < 0:
		return fmt.Errorf("%w: negative value %v", ErrInvalidTarget, t.Value)
	case t.Decimals < 0:
		return fmt.Errorf("%w: negative decimals %d", ErrInvalidTarget, t.Decimals)
	case t.Duration <= 0:
		return fmt.Errorf("%w: duration %s", ErrInvalidTarget, t.Duration)
	case t.Steps <= 0:
		return fmt.Errorf("%w: steps %d", ErrInvalidTarget, t.Steps)
	}
	return nil
}

// Interval is the time between two ticks.
func (t Target) Interval() time.Duration {
	if t.Steps <= 0 {
		return t.Duration
	}
	return t.Duration / time.Duration(t.Steps)
}

// Increment is the amount added per tick.
func (t Target) Increment() float64 {
	if t.Steps <= 0 {
		return t.Value
	}
	return t.Value / float64(t.Steps)
}

// Final is the formatted value shown once the ramp completes.
func (t Target) Final() string {
	return Format(t.Value, t.Decimals)
}

// Format renders v with a fixed number of decimal digits.
func Format(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// State is the mutable part of a ramp.
type State struct {
	Current  float64
	Complete bool
}

// RenderFunc receives the formatted display after every change.
type RenderFunc func(display string, state State)

// Ramp drives one Target from zero to its value.
type Ramp struct {
	target Target
	clock  Clock
	render RenderFunc

	mu      sync.Mutex
	state   State
	ticks   int
	started bool
	stopped bool

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewRamp validates t (after defaults) and returns an idle ramp.
// A nil clock uses the wall clock.
func NewRamp(t Target, clock Clock, render RenderFunc) (*Ramp, error) {
	t = t.WithDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Ramp{
		target: t,
		clock:  clock,
		render: render,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// Target returns the ramp's normalised target.
func (r *Ramp) Target() Target {
	return r.target
}

// Start begins ticking. It returns false if the ramp already started or was
// stopped. A zero target completes immediately without creating a ticker.
func (r *Ramp) Start(ctx context.Context) bool {
	r.mu.Lock()
	if r.started || r.stopped {
		r.mu.Unlock()
		return false
	}
	r.started = true
	if r.target.Value <= 0 {
		r.state = State{Current: r.target.Value, Complete: true}
		st := r.state
		r.mu.Unlock()
		close(r.done)
		r.emit(st)
		return true
	}
	r.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	ticker := r.clock.NewTicker(r.target.Interval())
	go r.run(ctx, ticker)
	return true
}

func (r *Ramp) run(ctx context.Context, ticker Ticker) {
	defer close(r.done)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.Chan():
			if r.advance() {
				return
			}
		}
	}
}

// advance applies one tick and reports whether the ramp is complete.
func (r *Ramp) advance() bool {
	r.mu.Lock()
	if r.state.Complete {
		r.mu.Unlock()
		return true
	}
	r.ticks++
	next := r.state.Current + r.target.Increment()
	if next >= r.target.Value || r.ticks >= r.target.Steps {
		next = r.target.Value
		r.state.Complete = true
	}
	r.state.Current = next
	st := r.state
	r.mu.Unlock()

	r.emit(st)
	return st.Complete
}

func (r *Ramp) emit(st State) {
	if r.render != nil {
		r.render(Format(st.Current, r.target.Decimals), st)
	}
}

// Stop cancels the ramp and waits for its ticker to be released.
// It must not be called from the ramp's own RenderFunc.
func (r *Ramp) Stop() {
	r.mu.Lock()
	r.stopped = true
	started := r.started
	r.mu.Unlock()

	r.stopOnce.Do(func() { close(r.stop) })
	if started {
		<-r.done
	}
}

// State returns a snapshot of the ramp.
func (r *Ramp) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Display returns the current value formatted with the target's precision.
func (r *Ramp) Display() string {
	return Format(r.State().Current, r.target.Decimals)
}

// Done is closed once the ramp finishes, is stopped, or its context ends.
// It stays open for a ramp that never started.
func (r *Ramp) Done() <-chan struct{} {
	return r.done
}

// Bind registers id with obs and starts a ramp for t on the element's first
// reveal. The caller owns unmount: obs.Unobserve(id) and Ramp.Stop.
func Bind(ctx context.Context, obs *reveal.Observer, id string, t Target, clock Clock, render RenderFunc) (*Ramp, error) {
	if obs == nil {
		return nil, errors.New("counter: nil observer")
	}
	ramp, err := NewRamp(t, clock, render)
	if err != nil {
		return nil, err
	}
	if !obs.Observe(id, func(string) { ramp.Start(ctx) }) {
		return nil, fmt.Errorf("counter: element %q cannot be observed", id)
	}
	return ramp, nil
}
