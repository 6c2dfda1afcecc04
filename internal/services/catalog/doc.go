// Package catalog wraps the external book catalog's command-line tool behind a
// small interface seam so the ingest loop can be tested without the tool
// installed.
package catalog
