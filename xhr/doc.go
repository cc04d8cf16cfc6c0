/*
Package xhr implements the fetch capability exposed to handlers as the xhr module.

Handlers call xhr.fetch(url, options). The harness turns that call into a Fetch on a
Client. The default Client, HTTPClient, does not open sockets itself; it serializes the
request into a protobuf HTTPClient message and passes it to a host call, the same
boundary a serverless runtime uses. NetHost is the host that actually executes the
request with net/http.

Usage

	client, err := xhr.New(xhr.Config{})
	if err != nil {
	  // handle error
	}

	resp, err := client.Fetch("https://example.com/api", xhr.Options{Method: "GET"})

Tests that want to assert on the wire format can inject a hostmock.Mock as HostCall.
Tests that only care about handler behavior can use the xhr/mock package instead.
*/
package xhr
