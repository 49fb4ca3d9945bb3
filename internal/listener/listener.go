// Package listener records component start order and contribution
// registration order while a runtime boots.
//
// A Listener starts in the Listening state. The first RuntimeStarted event
// freezes what was recorded into an immutable Orders value and moves the
// listener to Stopped; every event delivered afterwards is ignored, so
// redeploys during live operation never disturb the startup record.
//
// Thread Safety:
//
//	Events may arrive from any goroutine; writes are serialized. Once
//	Stopped, reads go to the frozen Orders without taking a lock. The
//	freeze happens-before the atomic publish, which happens-before any
//	read that observes it.
package listener

import (
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/bayleafwalker/bindery-explorer/internal/model"
)

const (
	// DefaultStartOrder is the start order a component gets when its
	// author expressed no preference.
	DefaultStartOrder int64 = 1000

	// NoImplementationStartOrder is reported by components without an
	// implementation class.
	NoImplementationStartOrder int64 = 0
)

// State is the lifecycle state of a Listener.
type State int32

const (
	// StateListening records events.
	StateListening State = iota
	// StateStopped ignores events; recorded orders are frozen.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Sink receives runtime lifecycle events.
type Sink interface {
	ComponentStarted(component string, declaredStartOrder int64)
	ExtensionRegistered(contributor, targetComponent, point string) (index int64, recorded bool)
	RuntimeStarted()
}

// Listener implements Sink. The zero value is not usable; use New.
type Listener struct {
	log   logr.Logger
	state atomic.Int32

	mu       sync.Mutex
	recorder *recorder

	frozen atomic.Pointer[Orders]
}

var _ Sink = (*Listener)(nil)

// Option configures a Listener.
type Option func(*Listener)

// WithLogger sets the logger used for state transitions.
func WithLogger(log logr.Logger) Option {
	return func(l *Listener) { l.log = log }
}

// New returns a listener in the Listening state.
func New(opts ...Option) *Listener {
	l := &Listener{
		log:      logr.Discard(),
		recorder: newRecorder(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current lifecycle state.
func (l *Listener) State() State {
	return State(l.state.Load())
}

// ComponentStarted records the start of component. The declared start order
// is kept only when it differs from both sentinel defaults.
func (l *Listener) ComponentStarted(component string, declaredStartOrder int64) {
	if l.State() != StateListening {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.State() != StateListening {
		return
	}
	l.recorder.started(component, declaredStartOrder)
}

// ExtensionRegistered records a contribution from contributor to the point
// named point on targetComponent. It returns the contribution's local index
// among contributions from contributor to a point with that name; recorded
// is false once the listener has stopped.
func (l *Listener) ExtensionRegistered(contributor, targetComponent, point string) (int64, bool) {
	if l.State() != StateListening {
		return 0, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.State() != StateListening {
		return 0, false
	}
	return l.recorder.registered(contributor, targetComponent, point), true
}

// RuntimeStarted freezes the recorded orders and stops the listener. Only
// the first call has an effect.
func (l *Listener) RuntimeStarted() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.State() != StateListening {
		return
	}
	orders := l.recorder.freeze()
	l.recorder = nil
	l.frozen.Store(orders)
	l.state.Store(int32(StateStopped))
	l.log.Info("startup recording stopped",
		"startedComponents", len(orders.startOrders),
		"registeredExtensions", len(orders.registrationOrders),
	)
}

// Orders returns a read view of what has been recorded. After the listener
// stopped this is the frozen record; before, it is a copy of the current
// state.
func (l *Listener) Orders() *Orders {
	if o := l.frozen.Load(); o != nil {
		return o
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if o := l.frozen.Load(); o != nil {
		return o
	}
	return l.recorder.freeze()
}

// StartOrder returns the position of component among started components.
func (l *Listener) StartOrder(component string) (int64, bool) {
	return l.Orders().StartOrder(component)
}

// DeclaredStartOrder returns the non-default start order declared by component.
func (l *Listener) DeclaredStartOrder(component string) (int64, bool) {
	return l.Orders().DeclaredStartOrder(component)
}

// RegistrationOrder returns the position of the index-th contribution from
// contributor to point among all contributions to the same target point.
func (l *Listener) RegistrationOrder(contributor, point string, index int64) (int64, bool) {
	return l.Orders().RegistrationOrder(contributor, point, index)
}

// recorder holds the mutable state while listening.
type recorder struct {
	nextStart          int64
	startOrders        map[string]int64
	declaredOrders     map[string]int64
	targetCounts       map[string]int64
	localCounts        map[localKey]int64
	registrationOrders map[extensionKey]int64
}

type localKey struct {
	contributor string
	point       string
}

type extensionKey struct {
	contributor string
	point       string
	index       int64
}

func newRecorder() *recorder {
	return &recorder{
		startOrders:        make(map[string]int64),
		declaredOrders:     make(map[string]int64),
		targetCounts:       make(map[string]int64),
		localCounts:        make(map[localKey]int64),
		registrationOrders: make(map[extensionKey]int64),
	}
}

func (r *recorder) started(component string, declared int64) {
	if _, seen := r.startOrders[component]; seen {
		return
	}
	r.startOrders[component] = r.nextStart
	r.nextStart++
	if declared != DefaultStartOrder && declared != NoImplementationStartOrder {
		r.declaredOrders[component] = declared
	}
}

func (r *recorder) registered(contributor, targetComponent, point string) int64 {
	target := model.ExtensionPointID(targetComponent, point)
	order := r.targetCounts[target]
	r.targetCounts[target] = order + 1

	lk := localKey{contributor: contributor, point: point}
	index := r.localCounts[lk]
	r.localCounts[lk] = index + 1

	r.registrationOrders[extensionKey{contributor: contributor, point: point, index: index}] = order
	return index
}

func (r *recorder) freeze() *Orders {
	o := &Orders{
		startOrders:        make(map[string]int64, len(r.startOrders)),
		declaredOrders:     make(map[string]int64, len(r.declaredOrders)),
		registrationOrders: make(map[extensionKey]int64, len(r.registrationOrders)),
		targetCounts:       make(map[string]int64, len(r.targetCounts)),
	}
	for k, v := range r.startOrders {
		o.startOrders[k] = v
	}
	for k, v := range r.declaredOrders {
		o.declaredOrders[k] = v
	}
	for k, v := range r.registrationOrders {
		o.registrationOrders[k] = v
	}
	for k, v := range r.targetCounts {
		o.targetCounts[k] = v
	}
	return o
}
