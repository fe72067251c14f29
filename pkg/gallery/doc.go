// Package gallery presents ColorCity collections.
//
// Render draws a collection as a terminal table (pterm) and shows
// EmptyMessage when the owner holds nothing. Server serves the same data as
// JSON over gin:
//
//	GET  /api/v1/collections/:owner
//	POST /api/v1/mint
//	GET  /healthz
//	GET  /metrics
//
// Ledger failures are reported through TerminalNotifier or as an HTTP error
// status; they never take the process down.
package gallery
