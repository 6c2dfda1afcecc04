// Package ingest consumes the staging directory and performs the batched
// catalog-add, the final step of the pipeline.
//
// The duplicate check against the catalog keys on filename, not content: the
// ledger has already enforced content-level dedup for everything that reaches
// staging, so the catalog check only guards against re-adding a file the
// catalog already ingested (for example after a crash between add and staged
// delete). Filename matching can under-detect (renamed re-uploads) and
// over-detect (same name, different content); both cases are bounded by the
// upstream content dedup and by adds running with duplicates permitted.
package ingest
