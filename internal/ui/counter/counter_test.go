package counter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Its-donkey/gbpl-site/internal/ui/reveal"
)

type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (m *manualTicker) Chan() <-chan time.Time { return m.ch }

func (m *manualTicker) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

func (m *manualTicker) isStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

type manualClock struct {
	mu       sync.Mutex
	tickers  []*manualTicker
	interval time.Duration
}

func (c *manualClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	c.interval = d
	return t
}

func (c *manualClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

func (c *manualClock) last() *manualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

type recorder struct {
	mu       sync.Mutex
	displays []string
	states   []State
}

func (r *recorder) render(display string, st State) {
	r.mu.Lock()
	r.displays = append(r.displays, display)
	r.states = append(r.states, st)
	r.mu.Unlock()
}

func (r *recorder) snapshot() ([]string, []State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.displays...), append([]State(nil), r.states...)
}

func waitDone(t *testing.T, ramp *Ramp) {
	t.Helper()
	select {
	case <-ramp.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("ramp did not finish")
	}
}

func TestRampRevenueScenarioEndsAtExactTarget(t *testing.T) {
	clock := &manualClock{}
	rec := &recorder{}
	ramp, err := NewRamp(Target{Value: 18.8, Decimals: 1, Duration: 2000 * time.Millisecond, Steps: 60}, clock, rec.render)
	if err != nil {
		t.Fatalf("new ramp: %v", err)
	}
	if !ramp.Start(context.Background()) {
		t.Fatalf("expected ramp to start")
	}
	if clock.interval != 2*time.Second/60 {
		t.Fatalf("unexpected tick interval %s", clock.interval)
	}

	ticker := clock.last()
	for i := 0; i < 60; i++ {
		ticker.ch <- time.Time{}
	}
	waitDone(t, ramp)

	displays, states := rec.snapshot()
	if len(displays) != 60 {
		t.Fatalf("expected 60 renders, got %d", len(displays))
	}
	if got := displays[len(displays)-1]; got != "18.8" {
		t.Fatalf("final display = %q, want %q", got, "18.8")
	}
	if !states[len(states)-1].Complete || states[len(states)-1].Current != 18.8 {
		t.Fatalf("final state not clamped: %+v", states[len(states)-1])
	}
	if !ticker.isStopped() {
		t.Fatalf("ticker should be stopped on completion")
	}
	if ramp.Display() != "18.8" {
		t.Fatalf("Display() = %q", ramp.Display())
	}
}

func TestRampPropertiesAcrossTargetsAndSteps(t *testing.T) {
	targets := []struct {
		value    float64
		decimals int
	}{
		{0, 0}, {1, 0}, {3, 0}, {16, 0}, {18.8, 1}, {12.3, 1}, {17, 1}, {0.1, 1}, {1000.5, 2},
	}
	stepCounts := []int{1, 7, 60, 240}

	for _, target := range targets {
		for _, steps := range stepCounts {
			rec := &recorder{}
			ramp, err := NewRamp(Target{Value: target.value, Decimals: target.decimals, Steps: steps}, &manualClock{}, rec.render)
			if err != nil {
				t.Fatalf("new ramp %v/%d: %v", target.value, steps, err)
			}

			if target.value == 0 {
				ramp.Start(context.Background())
			} else {
				for i := 0; i < steps && !ramp.advance(); i++ {
				}
			}

			displays, states := rec.snapshot()
			if len(states) == 0 {
				t.Fatalf("target %v steps %d: no renders", target.value, steps)
			}
			if len(states) > steps {
				t.Fatalf("target %v steps %d: %d ticks exceeds step count", target.value, steps, len(states))
			}
			want := Format(target.value, target.decimals)
			if got := displays[len(displays)-1]; got != want {
				t.Fatalf("target %v steps %d: final display %q, want %q", target.value, steps, got, want)
			}
			if !states[len(states)-1].Complete {
				t.Fatalf("target %v steps %d: ramp not complete", target.value, steps)
			}
			for i := 1; i < len(states); i++ {
				if states[i].Current < states[i-1].Current {
					t.Fatalf("target %v steps %d: value decreased at tick %d (%v -> %v)", target.value, steps, i, states[i-1].Current, states[i].Current)
				}
			}
		}
	}
}

func TestZeroTargetCompletesImmediately(t *testing.T) {
	clock := &manualClock{}
	rec := &recorder{}
	ramp, err := NewRamp(Target{Value: 0}, clock, rec.render)
	if err != nil {
		t.Fatalf("new ramp: %v", err)
	}
	if !ramp.Start(context.Background()) {
		t.Fatalf("expected start")
	}
	waitDone(t, ramp)

	if clock.count() != 0 {
		t.Fatalf("zero target should not create a ticker")
	}
	displays, _ := rec.snapshot()
	if len(displays) != 1 || displays[0] != "0" {
		t.Fatalf("unexpected displays %v", displays)
	}
	if !ramp.State().Complete {
		t.Fatalf("expected completion")
	}
}

func TestStopCancelsTicker(t *testing.T) {
	clock := &manualClock{}
	ramp, err := NewRamp(Target{Value: 16}, clock, nil)
	if err != nil {
		t.Fatalf("new ramp: %v", err)
	}
	ramp.Start(context.Background())
	ticker := clock.last()
	for i := 0; i < 10; i++ {
		ticker.ch <- time.Time{}
	}
	ramp.Stop()

	if !ticker.isStopped() {
		t.Fatalf("ticker should be released on stop")
	}
	if ramp.State().Complete {
		t.Fatalf("stopped ramp should not report completion")
	}
	if ramp.Start(context.Background()) {
		t.Fatalf("stopped ramp must not restart")
	}
}

func TestStopBeforeStartDoesNotBlock(t *testing.T) {
	ramp, err := NewRamp(Target{Value: 5}, &manualClock{}, nil)
	if err != nil {
		t.Fatalf("new ramp: %v", err)
	}
	ramp.Stop()
	if ramp.Start(context.Background()) {
		t.Fatalf("ramp should refuse to start after stop")
	}
}

func TestContextCancellationReleasesTicker(t *testing.T) {
	clock := &manualClock{}
	ramp, err := NewRamp(Target{Value: 16}, clock, nil)
	if err != nil {
		t.Fatalf("new ramp: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	ramp.Start(ctx)
	cancel()
	waitDone(t, ramp)
	if !clock.last().isStopped() {
		t.Fatalf("ticker should be released when context ends")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	clock := &manualClock{}
	ramp, _ := NewRamp(Target{Value: 3}, clock, nil)
	if !ramp.Start(context.Background()) {
		t.Fatalf("first start should succeed")
	}
	if ramp.Start(context.Background()) {
		t.Fatalf("second start should be ignored")
	}
	if clock.count() != 1 {
		t.Fatalf("expected a single ticker, got %d", clock.count())
	}
	ramp.Stop()
}

func TestValidateRejectsBadTargets(t *testing.T) {
	cases := []Target{
		{Value: -1},
		{Value: 1, Decimals: -1},
		{Value: 1, Duration: -time.Second},
		{Value: 1, Steps: -3},
	}
	for _, tc := range cases {
		if _, err := NewRamp(tc, nil, nil); !errors.Is(err, ErrInvalidTarget) {
			t.Fatalf("target %+v: expected ErrInvalidTarget, got %v", tc, err)
		}
	}
}

func TestBindStartsOnFirstRevealOnly(t *testing.T) {
	obs := reveal.NewObserver()
	clock := &manualClock{}
	rec := &recorder{}
	ramp, err := Bind(context.Background(), obs, "employees", Target{Value: 16, Steps: 4}, clock, rec.render)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if clock.count() != 0 {
		t.Fatalf("ramp must not start before reveal")
	}

	obs.Notify("employees", true)
	obs.Notify("employees", false)
	obs.Notify("employees", true)
	if clock.count() != 1 {
		t.Fatalf("expected one ramp start, got %d", clock.count())
	}

	ticker := clock.last()
	for i := 0; i < 4; i++ {
		ticker.ch <- time.Time{}
	}
	waitDone(t, ramp)
	if ramp.Display() != "16" {
		t.Fatalf("display = %q, want 16", ramp.Display())
	}

	if _, err := Bind(context.Background(), obs, "employees", Target{Value: 1}, clock, nil); err == nil {
		t.Fatalf("binding a revealed element twice should fail")
	}
}

func TestFormatFixedDecimals(t *testing.T) {
	cases := []struct {
		v        float64
		decimals int
		want     string
	}{
		{0, 0, "0"},
		{0, 1, "0.0"},
		{18.8, 1, "18.8"},
		{18.79999, 1, "18.8"},
		{15.6, 0, "16"},
		{3, -2, "3"},
	}
	for _, tc := range cases {
		if got := Format(tc.v, tc.decimals); got != tc.want {
			t.Fatalf("Format(%v, %d) = %q, want %q", tc.v, tc.decimals, got, tc.want)
		}
	}
}
