// Package searchinput implements the client side of destination search:
// a small state machine that debounces keystrokes, enforces the minimum
// query length, and guarantees that at most one logical search is in
// flight so stale results never overwrite fresher ones.
package searchinput

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/avelkov/staybook/internal/destination"
)

// DefaultDebounce is how long the input waits after the last keystroke
// before issuing a resolution call.
const DefaultDebounce = 300 * time.Millisecond

// State is the input's position in the Idle → Pending → InFlight cycle.
type State int

const (
	// StateIdle means no search is pending or running.
	StateIdle State = iota
	// StatePending means the debounce timer is armed.
	StatePending
	// StateInFlight means a resolution call is running.
	StateInFlight
)

// Resolver is the search backend the input talks to, typically an HTTP
// client for the autocomplete endpoint.
type Resolver interface {
	Resolve(ctx context.Context, query string) ([]destination.Projection, error)
}

// SelectionNotifier reports that the user explicitly picked a destination.
type SelectionNotifier interface {
	NotifySelection(ctx context.Context, destinationID string) error
}

// Results is delivered to the callback once a search settles. Err is set
// when the resolution call failed; the caller shows an inline error and
// keeps accepting input.
type Results struct {
	Query        string
	Destinations []destination.Projection
	Err          error
}

// Input debounces queries and dispatches them to the resolver. Every new
// query cancels whatever state it finds: a pending timer is stopped, an
// in-flight call is cancelled, and its result is discarded via a
// generation check even if cancellation loses the race.
type Input struct {
	resolver  Resolver
	notifier  SelectionNotifier
	log       *slog.Logger
	debounce  time.Duration
	onResults func(Results)

	mu     sync.Mutex
	state  State
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

// Option configures an Input.
type Option func(*Input)

// WithDebounce overrides the debounce window (used in tests).
func WithDebounce(d time.Duration) Option {
	return func(in *Input) { in.debounce = d }
}

// WithNotifier attaches a selection notifier for Select events.
func WithNotifier(n SelectionNotifier) Option {
	return func(in *Input) { in.notifier = n }
}

// New constructs an Input. onResults is invoked whenever a search settles
// or the query drops below the minimum length; it may be called from a
// background goroutine and must be safe for that.
func New(resolver Resolver, onResults func(Results), log *slog.Logger, opts ...Option) *Input {
	in := &Input{
		resolver:  resolver,
		log:       log,
		debounce:  DefaultDebounce,
		onResults: onResults,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Update feeds the current query text into the state machine. Call it on
// every keystroke with the full input contents.
func (in *Input) Update(query string) {
	in.mu.Lock()

	in.gen++
	gen := in.gen
	in.stopLocked()

	norm := destination.Normalize(query)
	if utf8.RuneCountInString(norm) < destination.MinQueryLength {
		in.state = StateIdle
		in.mu.Unlock()
		// Below the threshold no call is made; clear whatever is shown.
		in.onResults(Results{Query: query})
		return
	}

	in.state = StatePending
	in.timer = time.AfterFunc(in.debounce, func() {
		in.fire(gen, query)
	})
	in.mu.Unlock()
}

// fire runs after the debounce window. It re-checks the generation before
// and after the resolver call so a superseded search never reports.
func (in *Input) fire(gen uint64, query string) {
	in.mu.Lock()
	if gen != in.gen {
		in.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	in.cancel = cancel
	in.state = StateInFlight
	in.mu.Unlock()

	results, err := in.resolver.Resolve(ctx, query)
	canceled := ctx.Err() != nil
	cancel()

	in.mu.Lock()
	if gen != in.gen {
		in.mu.Unlock()
		return
	}
	in.state = StateIdle
	in.cancel = nil
	in.mu.Unlock()

	if err != nil && canceled {
		// Cancelled by a newer keystroke; nothing to report.
		return
	}

	in.onResults(Results{Query: query, Destinations: results, Err: err})
}

// stopLocked cancels the pending timer and any in-flight call.
// Caller holds mu.
func (in *Input) stopLocked() {
	if in.timer != nil {
		in.timer.Stop()
		in.timer = nil
	}
	if in.cancel != nil {
		in.cancel()
		in.cancel = nil
	}
}

// Select fires the selection event for a chosen destination. Fire and
// forget: the call runs in the background and a failure is logged, never
// surfaced, so the UI is never blocked by analytics.
func (in *Input) Select(p destination.Projection) {
	if in.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := in.notifier.NotifySelection(ctx, p.DestinationID); err != nil {
			in.log.Warn("selection event failed", "destinationId", p.DestinationID, "err", err)
		}
	}()
}

// Close cancels any pending or in-flight search.
func (in *Input) Close() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.gen++
	in.stopLocked()
	in.state = StateIdle
}

// State reports the current state. Exposed for tests.
func (in *Input) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}
