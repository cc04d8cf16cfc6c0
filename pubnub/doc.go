/*
Package pubnub simulates the "pubnub" module handlers require for messaging, presence
and access control.

The mock is stateless apart from its timetoken clock and the Calls history: every
operation validates its argument, records the call, and settles a deferred.Deferred with
the payload shape the vendor platform returns.

	m := pubnub.New(pubnub.Config{})
	res, _ := m.Publish(map[string]any{"channel": "c", "message": "hi"}).Await()
	// []any{int64(1), "Sent", "17..."}

Timetokens are 100ns-resolution integers taken from Config.Clock and are forced to be
strictly increasing, so two calls in the same instant still order correctly.
*/
package pubnub
