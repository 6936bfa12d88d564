// Package logger builds slog loggers with the subsystem's conventions and
// provides typed attribute helpers so log keys stay consistent across
// packages ("account_id", "component", "error", ...).
package logger
