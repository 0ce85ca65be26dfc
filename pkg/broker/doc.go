// Package broker is the asynchronous vehicle property broker.
//
// A Broker sits between client sessions and the vehicle hardware. Clients
// register a ClientSink and then issue batched reads and writes, which return
// as soon as the batch is validated and forwarded; results arrive later
// through the sink. Every accepted request gets exactly one terminal result:
// the hardware's answer, a local validation failure, or TRY_AGAIN once the
// request timeout elapses.
//
// Clients also subscribe to properties. On-change subscribers receive values
// written through the broker and values pushed by the hardware. Continuous
// subscribers receive values polled at their sample rate.
//
// # Call-level errors
//
// Calls return a *vehicle.StatusError when the whole call is rejected, with
// nothing registered and nothing forwarded. Use vehicle.StatusOf to get the
// code. Per-request failures never surface as call errors.
package broker
