// Package logger provides structured logging functionality for the application.
//
// It builds log/slog loggers from configuration: JSON records for machine
// consumption, or charmbracelet/log's human-friendly text output for
// interactive use. Loggers travel through context.Context so that every store
// and service call of one operation shares the same operation ID.
package logger
