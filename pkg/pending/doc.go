// Package pending tracks requests that were forwarded to hardware and are
// waiting for a result.
//
// Every entry is keyed by (Owner, request id) and ends exactly once: either a
// hardware result resolves it through TryResolve, or the sweeper expires it
// and reports it through the TimeoutFunc registered with its batch. Both paths
// remove the entry under the pool lock, so only one of them can win.
//
// AddRequests returns a Ticket for the entries it registered, and TryResolve
// only removes an entry when given the ticket it was registered under. A
// late result for an expired batch therefore cannot complete a newer request
// that reuses the same id.
//
// Entries registered by the same AddRequests call that expire in the same
// sweep are reported together in a single TimeoutFunc call.
package pending
