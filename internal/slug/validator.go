// internal/slug/validator.go
//
// Debounced live validator.
//
// Context
// -------
// While a user edits a slug field the console keeps one Validator per open
// form.  Each edit is submitted here; after a quiet period without edits
// the current literal candidate (no auto-suffixing) is checked against the
// oracle and the verdict is published as a read-only State.
//
// State machine
// -------------
//
//	Idle ──(quiet period elapses)──▶ Checking ──▶ Free | Taken
//	  ▲                                                │
//	  └─────────────(new or blank candidate)───────────┘
//
//   • A new candidate drops the previous verdict, because that verdict
//     belongs to a different string.  The state stays Idle until the
//     debounce fires.
//   • Every submission bumps a generation counter.  A check that completes
//     under an old generation is discarded; the in-flight request is not
//     aborted, only its effect is ignored.
//   • Oracle failure or time-out settles to Free (fail-soft).
//   • Only Taken blocks a save.  Checking does not: the backend remains the
//     authority at save time.

package slug

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/yanizio/catalog-console/internal/metrics"
)

// Status is the validator's externally visible verdict.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusChecking Status = "checking"
	StatusFree     Status = "free"
	StatusTaken    Status = "taken"
)

// Default timings.
const (
	DefaultDebounce     = 400 * time.Millisecond
	DefaultCheckTimeout = 5 * time.Second
)

// State is a snapshot of the validator.
type State struct {
	Candidate string `json:"candidate"`
	ExcludeID ID     `json:"excludeId,omitempty"`
	Status    Status `json:"status"`
}

// CheckFunc is the oracle signature the validator drives.  (*Oracle).Exists
// satisfies it.
type CheckFunc func(ctx context.Context, candidate string, excludeID ID) bool

// ValidatorOptions configures a Validator.  Zero values select defaults.
type ValidatorOptions struct {
	Debounce     time.Duration
	CheckTimeout time.Duration
	// OnChange, when set, receives every published state on the goroutine
	// that produced it.
	OnChange func(State)
}

type submission struct {
	candidate string
	excludeID ID
	gen       uint64
}

// Validator tracks the uniqueness of one slug field.
type Validator struct {
	kind    Kind
	check   CheckFunc
	timeout time.Duration
	notify  func(State)

	ctx    context.Context
	cancel context.CancelFunc
	deb    *Debouncer[submission]

	mu     sync.Mutex
	gen    uint64
	state  State
	closed bool
}

// NewValidator returns an Idle validator.  ctx scopes every oracle call
// (it typically carries the session's credentials) and Close cancels it.
func NewValidator(ctx context.Context, kind Kind, check CheckFunc, opts ValidatorOptions) *Validator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.CheckTimeout <= 0 {
		opts.CheckTimeout = DefaultCheckTimeout
	}
	vctx, cancel := context.WithCancel(ctx)
	v := &Validator{
		kind:    kind,
		check:   check,
		timeout: opts.CheckTimeout,
		notify:  opts.OnChange,
		ctx:     vctx,
		cancel:  cancel,
		state:   State{Status: StatusIdle},
	}
	v.deb = NewDebouncer(opts.Debounce, v.run)
	return v
}

// Kind reports the namespace the validator checks.
func (v *Validator) Kind() Kind { return v.kind }

// Submit records the field's current value.  Re-submitting the value that
// is already checked or being checked is a no-op.
func (v *Validator) Submit(candidate string, excludeID ID) {
	candidate = strings.TrimSpace(candidate)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	if candidate == v.state.Candidate && excludeID == v.state.ExcludeID &&
		v.state.Status != StatusIdle {
		v.mu.Unlock()
		return
	}
	v.gen++
	v.state = State{Candidate: candidate, ExcludeID: excludeID, Status: StatusIdle}
	snap := v.state
	sub := submission{candidate: candidate, excludeID: excludeID, gen: v.gen}
	v.mu.Unlock()

	if candidate == "" {
		v.deb.Cancel()
	} else {
		v.deb.Push(sub)
	}
	v.publish(snap)
}

// State returns the current snapshot.
func (v *Validator) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Blocks reports whether saving candidate must be refused: only when the
// latest verdict for that exact candidate is Taken.
func (v *Validator) Blocks(candidate string) bool {
	candidate = strings.TrimSpace(candidate)
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Status == StatusTaken && strings.EqualFold(v.state.Candidate, candidate)
}

// Close stops the debounce timer and cancels in-flight checks.  Later
// submissions are ignored.
func (v *Validator) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()
	v.deb.Stop()
	v.cancel()
}

// run is the debounce callback: Idle → Checking → Free | Taken.
func (v *Validator) run(sub submission) {
	v.mu.Lock()
	if v.closed || sub.gen != v.gen {
		v.mu.Unlock()
		return
	}
	v.state.Status = StatusChecking
	snap := v.state
	v.mu.Unlock()
	v.publish(snap)

	metrics.ValidatorChecks.WithLabelValues(string(v.kind)).Inc()
	ctx, cancel := context.WithTimeout(v.ctx, v.timeout)
	taken := v.check(ctx, sub.candidate, sub.excludeID)
	cancel()

	v.mu.Lock()
	if v.closed || sub.gen != v.gen {
		v.mu.Unlock()
		metrics.ValidatorStale.WithLabelValues(string(v.kind)).Inc()
		return
	}
	if taken {
		v.state.Status = StatusTaken
	} else {
		v.state.Status = StatusFree
	}
	snap = v.state
	v.mu.Unlock()
	v.publish(snap)
}

func (v *Validator) publish(s State) {
	if v.notify != nil {
		v.notify(s)
	}
}
