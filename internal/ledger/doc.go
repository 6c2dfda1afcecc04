// Package ledger persists the append-only content-hash ledger that gives the
// pipeline at-most-once processing per unique content.
//
// The ledger is the durable memory of the system: files are relocated into
// backup and relinked into staging, so path existence is not a stable identity
// signal. Content hash is. Records are never mutated or deleted; deleting the
// ledger file causes reprocessing of everything still in the source tree.
package ledger
