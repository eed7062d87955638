// Package inspect serves a live view of a running engine over HTTP.
//
// Routes:
//
//	GET  /tree                   current display tree as HTML markup (?pretty=1)
//	GET  /tree/hash              fingerprint of the markup, also sent as ETag
//	GET  /ops                    recorded display mutations as JSON
//	GET  /stats                  last commit report and loop counters
//	GET  /metrics                Prometheus metrics
//	GET  /ws                     WebSocket stream of mutations and commits
//	POST /events/{node}/{event}  dispatch an event to a display node
//
// Events are funnelled through the scheduler loop so that listeners, and the
// state updates they trigger, run on the render goroutine.
package inspect
