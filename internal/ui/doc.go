// Package ui implements the interactive pantry console using bubbletea's Elm architecture.
//
// Request queues exist only in memory, so the console keeps one registry open for the
// whole run and lets an operator work the queues directly:
//  1. [RecipientListView] : Browse recipients with their totals and pending counts
//  2. [QuantityInputView] : Enter the kg for a normal (r) or urgent (u) request
//  3. [PendingView] : Inspect a recipient's queue in service order (p)
//
// Pressing d serves the selected recipient's front request. Every action is executed
// through [tasks.Session.Exec] and reported back as a [Msg] on the status line.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
