package deferred

import (
	"errors"
	"fmt"
)

// State describes whether a Deferred has settled.
type State int

const (
	// Pending means neither a value nor an error has been delivered yet.
	Pending State = iota
	// Fulfilled means the Deferred settled with a value.
	Fulfilled
	// Rejected means the Deferred settled with an error.
	Rejected
)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrPending is returned by Await when the Deferred has not settled.
var ErrPending = errors.New("deferred result has not settled")

// Rejection is implemented by errors that carry an explicit rejection value. When a
// Deferred rejected with such an error is delivered to a handler, the promise rejects
// with RejectionValue() instead of an Error object.
type Rejection interface {
	error
	RejectionValue() any
}

// Deferred is the eventual outcome of a capability operation.
type Deferred struct {
	state     State
	value     any
	err       error
	callbacks []func(any, error)
}

// New returns a pending Deferred together with the functions that settle it. Only the
// first call to either function has an effect.
func New() (*Deferred, func(any), func(error)) {
	d := &Deferred{}
	return d, d.resolve, d.reject
}

// Resolve returns a Deferred already fulfilled with v.
func Resolve(v any) *Deferred {
	return &Deferred{state: Fulfilled, value: v}
}

// Reject returns a Deferred already rejected with err.
func Reject(err error) *Deferred {
	return &Deferred{state: Rejected, err: err}
}

// State reports the current state.
func (d *Deferred) State() State { return d.state }

// Value returns the fulfilled value, or nil if the Deferred is not fulfilled.
func (d *Deferred) Value() any { return d.value }

// Err returns the rejection error, or nil if the Deferred is not rejected.
func (d *Deferred) Err() error { return d.err }

// Await returns the settled outcome. There is no scheduler to wait on, so a pending
// Deferred reports ErrPending.
func (d *Deferred) Await() (any, error) {
	switch d.state {
	case Fulfilled:
		return d.value, nil
	case Rejected:
		return nil, d.err
	default:
		return nil, ErrPending
	}
}

// Then registers fn to receive the outcome.
func (d *Deferred) Then(fn func(any, error)) {
	if d.state != Pending {
		fn(d.value, d.err)
		return
	}
	d.callbacks = append(d.callbacks, fn)
}

func (d *Deferred) resolve(v any) {
	if d.state != Pending {
		return
	}
	d.state = Fulfilled
	d.value = v
	d.flush()
}

func (d *Deferred) reject(err error) {
	if d.state != Pending {
		return
	}
	if err == nil {
		err = errors.New("rejected")
	}
	d.state = Rejected
	d.err = err
	d.flush()
}

func (d *Deferred) flush() {
	callbacks := d.callbacks
	d.callbacks = nil
	for _, fn := range callbacks {
		fn(d.value, d.err)
	}
}

// RejectionValue returns the raw value a handler should observe for err.
func RejectionValue(err error) (any, bool) {
	var r Rejection
	if errors.As(err, &r) {
		return r.RejectionValue(), true
	}
	return nil, false
}
