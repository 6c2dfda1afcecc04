// Package services defines shared utilities consumed by the pipeline
// components and external integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that keep per-file
//     failures classifiable (retryable vs operator attention vs fatal setup).
//   - The catalog subpackage wrapping the external catalog CLI behind a small
//     interface so the ingest loop stays testable.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability, retries) stays uniform.
package services
