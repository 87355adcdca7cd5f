// Package poller implements the position acquisition loop.
//
// The Poller:
//   - Fetches the current ISS position once per tick
//   - Sleeps the configured interval after each tick, so the effective
//     period is the interval plus the fetch latency
//   - Hands each valid position to a PositionHandler (the history ring)
//   - Absorbs every upstream failure inside the tick; it never retries
//     within a tick and never stops until its context is cancelled
package poller
