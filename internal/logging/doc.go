// Package logging assembles the structured slog loggers used across bindery.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attr helpers so components emit log lines with a
// consistent shape. Components tag themselves with a "component" attr, which
// the console handler folds into the line prefix. Prefer these constructors
// over hand-rolled slog setup.
package logging
