package kvstore

import (
	"errors"
	"fmt"

	"github.com/fnmock/fnmock/deferred"
	"github.com/fnmock/fnmock/internal/jsval"
)

// Operation names recorded in Calls.
const (
	OpGet         = "get"
	OpSet         = "set"
	OpIncrCounter = "incrCounter"
	OpGetCounter  = "getCounter"
	OpRemoveItem  = "removeItem"
)

var (
	// ErrInvalidKey is returned when a key is not a string.
	ErrInvalidKey = errors.New("not a valid key")

	// ErrInvalidTTL is returned when a ttl is supplied but is not a number.
	ErrInvalidTTL = errors.New("ttl must be a number.")

	// ErrInvalidValue is returned when a counter increment is not a number.
	ErrInvalidValue = errors.New("not a valid value")

	// ErrNilData is returned when replacing the store contents with a nil map.
	ErrNilData = errors.New("replacement data cannot be nil")
)

// Config configures a Store.
type Config struct {
	// Seed pre-populates the value namespace.
	Seed map[string]any

	// CounterSeed pre-populates the counter namespace.
	CounterSeed map[string]float64
}

// Call records an operation performed against the store.
type Call struct {
	Op    string
	Key   any
	Value any
}

// Store is an in-memory key/value and counter store.
type Store struct {
	data     map[string]any
	counters map[string]float64

	// Calls stores a history of operations for assertions.
	Calls []Call
}

// New creates a Store holding copies of the configured seeds.
func New(cfg Config) *Store {
	s := &Store{
		data:     make(map[string]any, len(cfg.Seed)),
		counters: make(map[string]float64, len(cfg.CounterSeed)),
		Calls:    []Call{},
	}
	for k, v := range cfg.Seed {
		s.data[k] = v
	}
	for k, v := range cfg.CounterSeed {
		s.counters[k] = v
	}
	return s
}

// Get resolves the value stored under key, or nil when the key is absent.
func (s *Store) Get(key any) *deferred.Deferred {
	s.record(OpGet, key, nil)
	k, ok := key.(string)
	if !ok {
		return deferred.Reject(fmt.Errorf("%w. kvstore.get expects a string.", ErrInvalidKey))
	}
	return deferred.Resolve(s.data[k])
}

// GetItem is an alias of Get.
func (s *Store) GetItem(key any) *deferred.Deferred { return s.Get(key) }

// Set stores value under key and resolves nil. The ttl is validated but not enforced.
func (s *Store) Set(key, value, ttl any) *deferred.Deferred {
	s.record(OpSet, key, value)
	k, ok := key.(string)
	if !ok {
		return deferred.Reject(fmt.Errorf("%w string. kvstore.set expects a string.", ErrInvalidKey))
	}
	if !optionalNumber(ttl) {
		return deferred.Reject(ErrInvalidTTL)
	}
	s.data[k] = value
	return deferred.Resolve(nil)
}

// SetItem is an alias of Set.
func (s *Store) SetItem(key, value, ttl any) *deferred.Deferred { return s.Set(key, value, ttl) }

// IncrCounter adds amount to the counter stored under key and resolves the new value.
// A missing, nil or zero amount increments by one.
func (s *Store) IncrCounter(key, amount any) *deferred.Deferred {
	s.record(OpIncrCounter, key, amount)
	k, ok := key.(string)
	if !ok {
		return deferred.Reject(fmt.Errorf("%w. kvstore.incrCounter expects a string.", ErrInvalidKey))
	}
	if !optionalNumber(amount) {
		return deferred.Reject(fmt.Errorf("%w. kvstore.incrCounter expects a number.", ErrInvalidValue))
	}

	step := 1.0
	if n, ok := jsval.Number(amount); ok && n != 0 {
		step = n
	}

	s.counters[k] += step
	return deferred.Resolve(s.counters[k])
}

// GetCounter resolves the counter stored under key, or 0 when the key is absent.
func (s *Store) GetCounter(key any) *deferred.Deferred {
	s.record(OpGetCounter, key, nil)
	k, ok := key.(string)
	if !ok {
		return deferred.Reject(fmt.Errorf("%w. kvstore.getCounter expects a string.", ErrInvalidKey))
	}
	return deferred.Resolve(s.counters[k])
}

// RemoveItem deletes the value stored under key and resolves nil.
func (s *Store) RemoveItem(key any) *deferred.Deferred {
	s.record(OpRemoveItem, key, nil)
	k, ok := key.(string)
	if !ok {
		return deferred.Reject(fmt.Errorf("%w. kvstore.removeItem expects a string.", ErrInvalidKey))
	}
	delete(s.data, k)
	return deferred.Resolve(nil)
}

// Data returns the live value namespace.
func (s *Store) Data() map[string]any { return s.data }

// Counters returns the live counter namespace.
func (s *Store) Counters() map[string]float64 { return s.counters }

// ReplaceData makes data the live value namespace.
func (s *Store) ReplaceData(data map[string]any) error {
	if data == nil {
		return ErrNilData
	}
	s.data = data
	return nil
}

// ReplaceCounters makes counters the live counter namespace.
func (s *Store) ReplaceCounters(counters map[string]float64) error {
	if counters == nil {
		return ErrNilData
	}
	s.counters = counters
	return nil
}

// Reset empties both namespaces and the call history.
func (s *Store) Reset() {
	s.data = make(map[string]any)
	s.counters = make(map[string]float64)
	s.Calls = []Call{}
}

func (s *Store) record(op string, key, value any) {
	s.Calls = append(s.Calls, Call{Op: op, Key: key, Value: value})
}

// optionalNumber reports whether v is absent, falsy, or numeric.
func optionalNumber(v any) bool {
	if !jsval.Truthy(v) {
		return true
	}
	_, ok := jsval.Number(v)
	return ok
}
