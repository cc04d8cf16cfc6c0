/*
Package deferred provides the settled-or-pending result type returned by every mock
capability operation.

Mock capabilities apply their side effects synchronously at call time and report the
outcome through a Deferred. The harness bridges a Deferred into a native Promise inside
the handler runtime, so handlers observe the asynchronous contract of the vendor
platform while tests can inspect state immediately after a call.

	d := deferred.Resolve("bar")
	v, err := d.Await()

A Deferred created with New stays pending until one of its settle functions is called.
Callbacks registered with Then run exactly once, synchronously, when the Deferred
settles (or immediately if it already has).
*/
package deferred
