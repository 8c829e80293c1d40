package duplicates

import (
	"context"
	"sync"
	"time"

	"campus-gms/catalog"
	"campus-gms/forms"
)

// Tracker re-runs the lookup whenever a form's location changes. Only the
// newest lookup counts: starting one cancels the one in flight, and a
// response that arrives for an older fingerprint is dropped.
type Tracker struct {
	lookup   *Lookup
	debounce time.Duration
	onResult func(Result)

	// deliver keeps results reaching onResult in generation order.
	deliver sync.Mutex

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	current Fingerprint
	active  bool
	latest  *Result
	wg      sync.WaitGroup
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithDebounce waits d after the last change before querying.
func WithDebounce(d time.Duration) TrackerOption {
	return func(t *Tracker) { t.debounce = d }
}

// WithResultHandler is called with every result that is still current.
func WithResultHandler(fn func(Result)) TrackerOption {
	return func(t *Tracker) { t.onResult = fn }
}

// NewTracker returns a tracker running lookups through l.
func NewTracker(l *Lookup, opts ...TrackerOption) *Tracker {
	t := &Tracker{lookup: l}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Observe is called after every form change. It starts a lookup when the
// location fingerprint is complete and differs from the last one, and
// reports whether it did.
func (t *Tracker) Observe(ctx context.Context, def *catalog.Category, st forms.State) bool {
	fp, ok := FingerprintFor(def, st)

	t.mu.Lock()
	defer t.mu.Unlock()

	if !ok {
		t.resetLocked()
		return false
	}
	if t.active && fp == t.current {
		return false
	}
	if t.cancel != nil {
		t.cancel()
	}

	t.gen++
	t.current, t.active = fp, true
	t.latest = nil
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.run(runCtx, t.gen, fp)
	return true
}

func (t *Tracker) resetLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.gen++
	t.active = false
	t.current = Fingerprint{}
	t.latest = nil
}

func (t *Tracker) run(ctx context.Context, gen uint64, fp Fingerprint) {
	defer t.wg.Done()

	if t.debounce > 0 {
		timer := time.NewTimer(t.debounce)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	res, err := t.lookup.Find(ctx, fp)
	if ctx.Err() != nil {
		return
	}
	res.Generation = gen
	res.Err = err

	t.deliver.Lock()
	defer t.deliver.Unlock()

	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.latest = &res
	t.mu.Unlock()

	if t.onResult != nil {
		t.onResult(res)
	}
}

// Latest returns the result for the current fingerprint, if it has
// arrived.
func (t *Tracker) Latest() (Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest == nil {
		return Result{}, false
	}
	return *t.latest, true
}

// Wait blocks until every started lookup has finished or been dropped.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Close cancels the lookup in flight and waits for it to return.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.resetLocked()
	t.mu.Unlock()
	t.wg.Wait()
}
