/*
Package hostmock provides a scripted host for capability clients that talk to their
backend through a host call.

The xhr capability never opens a socket itself: it serializes each fetch into a request
message and hands it to a HostCall function. Production wiring points that function at
a real HTTP executor; tests point it at a Mock to assert exactly what was sent and to
script what comes back.

Quick start

	m, _ := hostmock.New(hostmock.Config{
	  ExpectedNamespace:  "fnmock",
	  ExpectedCapability: "xhr",
	  ExpectedFunction:   "fetch",
	  PayloadValidator: func(p []byte) error {
	    // Unmarshal and assert fields here
	    return nil
	  },
	  Response: func() []byte { return encodedResponse },
	})

	client, _ := xhr.New(xhr.Config{HostCall: m.HostCall})

Behavior

  - If Fail is true, HostCall returns Error, or ErrOperationFailed when Error is nil.
  - Otherwise the namespace, capability and function are checked against the
    Expected* fields that are set, PayloadValidator runs, and Responder or Response
    provides the reply. With neither set the reply is nil.
  - Every call is appended to Calls, so tests can assert on routing after the fact.
*/
package hostmock
