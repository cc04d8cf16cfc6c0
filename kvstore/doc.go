/*
Package kvstore provides the in-memory key/value store behind the "kvstore" module that
handlers require.

A Store owns two independent namespaces: plain values (get, set, removeItem) and
numeric counters (incrCounter, getCounter). Every operation validates its arguments the
way the vendor runtime does, applies its mutation immediately, and reports the outcome
as a deferred.Deferred.

# Basic Usage

	s := kvstore.New(kvstore.Config{Seed: map[string]any{"foo": "bar"}})
	v, err := s.Get("foo").Await() // "bar", nil

	s.IncrCounter("hits", 5)
	s.IncrCounter("hits", 3)
	n, _ := s.GetCounter("hits").Await() // float64(8)

# Inspecting State

Data and Counters return the live maps, so assertions always see the latest writes.
Calls records every operation in order.

	for _, c := range s.Calls {
		// c.Op, c.Key, c.Value
	}
*/
package kvstore
