// Package store provides durable storage for the todo list.
//
// A Store holds the whole list in memory as a mapping from label to
// completion flag, and writes the full snapshot back to its Backend after
// every mutation:
//   - Add: insert or overwrite a label as unchecked
//   - Check: mark a label checked, creating it if absent
//   - Delete: remove a label if present
//
// # Backends
//
//   - FileBackend: a flat text file, one `label:flag` record per line.
//     Save truncates and rewrites the whole file.
//   - SQLiteBackend: one `items` table, rewritten in a single transaction.
//
// A newly created backing store is seeded with the bootstrap record
// `placeholder:false`, which then behaves like any other item.
//
// # Invariants
//
//   - Labels are unique and NFC normalized.
//   - Labels never contain ':' or a line break.
//   - Flags serialize only as the literal tokens `true` and `false`.
//   - Listing and file order is by label, so output is reproducible.
//
// There is no locking. Two processes doing read-modify-write against the
// same backing file can lose each other's updates.
package store
