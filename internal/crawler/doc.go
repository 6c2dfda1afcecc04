// Package crawler discovers newly deposited files in the source tree and
// feeds each new, valid, unseen file through backup-and-link transfer before
// recording it in the ledger.
//
// A crawl pass is a sequential, blocking scan with no internal concurrency;
// per-file failures become summary counters and never abort the pass. Passes
// are serialized by a file lock because the ledger is single-writer. The
// watcher variant triggers the same pass from debounced filesystem events.
package crawler
