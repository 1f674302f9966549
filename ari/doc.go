// Package ari is a client library for the Asterisk REST Interface.
//
// The API is modeled after the repository pattern: each resource collection
// declared by the API description becomes a Repository with its
// collection-level operations, and responses are promoted to first-class
// Objects carrying a stable identity and instance-scoped operations. Objects
// obtained via requests and via events are interchangeable and compare equal
// by identity.
//
// # Events
//
// Run connects the event socket for one or more Stasis applications and
// dispatches every received event to the listeners registered for its type.
// OnEvent delivers the raw event record; OnObjectEvent additionally promotes
// the event fields that carry a given kind, and Object.OnEvent filters those
// by the object's identity:
//
//	client, err := ari.NewClient(ctx, &ari.ClientOptions{
//	    URL:      "http://localhost:8088/ari",
//	    Username: "asterisk",
//	    Password: "secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.OnChannelEvent("StasisStart", ari.ObjectEventFunc(func(e ari.ObjectEvent) {
//	    e.Object.Call(ctx, "answer", nil)
//	}))
//
//	if err := client.Run(ctx, "hello-world"); err != nil {
//	    log.Fatal(err)
//	}
//
// Registration returns a Subscription whose Close undoes it. Listeners for
// one message run in registration order from a snapshot, so unsubscribing
// during dispatch never affects delivery of the in-flight message. A panic
// in a listener is routed to a replaceable handler and does not stop the
// receive loop.
package ari
