// Package tasks coordinates the liked-songs sync between the "from" and "to" slots.
//
// # Session
//
// [Session] is owned by the top-level process and passed to the CLI, the TUI and the OAuth callback server.
// Per slot it holds the [models.Credential] and the last fetched items behind a dedicated mutex:
//
//	Unauthenticated → (ExchangeCode | Restore) → Authenticated → FetchLibrary → Authenticated+Populated
//
// Re-authentication returns a slot to Authenticated and discards its items.
//
// # Transfer
//
// [Session.Transfer] writes the items of the from slot into the to slot with [services.LibraryClient.Write].
// Preconditions are checked before any request is made. The optional [Journal] records each batch so a failed
// transfer reports how far it got; it is never resumed.
//
// # Progress Reporting
//
// Operations accept a send-only [ProgressUpdate] channel. Updates use select with default to prevent blocking,
// and a nil channel disables reporting.
package tasks
