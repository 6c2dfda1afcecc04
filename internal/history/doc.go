// Package history records crawl pass summaries and ingest cycle outcomes in a
// local SQLite database. The history is operational telemetry for the status
// command; unlike the ledger it carries no correctness weight and can be
// deleted freely.
package history
