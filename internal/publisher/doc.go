// Package publisher is the topic publisher core.
//
// A Session binds one named topic to a broker connection and exposes Publish
// as its single operation. It is built from two parts:
//
//   - ConnectionManager owns the broker connection, session and topic handle
//     and drives the Unconnected -> Connected -> Closed state machine.
//   - Encoder turns a Payload into a transport-native broker.Message.
//
// Callers declare how an event travels by returning a Payload from the Event
// interface: Text for a plain character sequence, Object or Proto for a
// structured form. Anything else is rejected with ErrUnsupportedPayload.
//
// Typical use:
//
//	sess := publisher.NewSession("topology", props, registry, publisher.WithLogger(log))
//	defer sess.Close()
//	if err := sess.Connect(ctx); err != nil {
//	    return err
//	}
//	err := sess.Publish(ctx, publisher.Text(`{"type":"ServiceCreated","name":"ESB"}`))
//
// A Session is meant for a single owner. Connect, Publish and Close must not be
// called concurrently on the same instance.
package publisher
