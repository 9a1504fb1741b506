// Package registry owns the set of recipients and their persistence.
//
// # Structure
//
// A [Registry] keeps recipients in a slice (insertion order, used for listing and
// saving) plus a map from id to slice position for O(1) [Registry.FindByID].
// Both are updated together; ids are unique.
//
// # Persistence
//
// The [Store] interface abstracts the backing store. [FileStore] is the
// production implementation: five lines per recipient (id, name, kg, count,
// money), rewritten in full on every save via temp file and rename. Request
// queues are never written, so pending requests are lost on restart.
//
// # Auto-save
//
// With auto-save on (the default), [Registry.AddRecipient], [Registry.UpdateRecipient]
// and [Registry.Remove] rewrite the store immediately. Turning it off opens a
// window where memory and disk diverge ([Registry.Dirty] is true) until
// [Registry.ForceSave]; [Registry.SeedDefaults] uses this to batch inserts.
//
// # Errors
//
//   - duplicate ids: [shared.ErrDuplicateRecipient], logged, registry unchanged
//   - unknown ids: a false "found" result, or [shared.ErrRecipientNotFound] from the request helpers
//   - malformed records: skipped and logged during load
//   - failed writes: [shared.ErrStoreWrite]; the in-memory state stays valid
package registry
