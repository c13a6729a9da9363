// Package cli implements the interactive rollcall client.
//
// The CLI is a small REPL over the local store and the sync engine. All
// commands work offline; anything that produces new records queues them
// locally and kicks the background sync, which drains the queue whenever
// the authority is reachable.
package cli
