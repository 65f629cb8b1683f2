// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI shows the two slots side by side:
//  1. [PanelsView] : the "from" and "to" libraries in two list panels with their auth state
//  2. [ConfirmView] : confirm copying the from library into the to library
//  3. [TransferView] : monitor real-time batch progress
//  4. [ResultView] : the transfer outcome
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Fetches and transfers run on a [tasks.Session] in a goroutine; progress updates flow back through a channel.
//
// Keys: f/g fetch the from/to library, t transfers, r reloads stored logins, tab switches panels, q quits.
package ui
