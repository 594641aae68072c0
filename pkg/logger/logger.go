// Package logger provides the structured logging contract for the gridrisk scoring service.
// Implementations live in the infrastructure layer; this package only defines the interface
// so domain and application code never import a concrete logging library.
package logger

import "context"

// ================================================================================
// Logger Interface
// ================================================================================

// Fields is a set of key-value pairs attached to a log entry
type Fields map[string]interface{}

// Logger defines the interface for structured logging
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields ...Fields)

	// Info logs an informational message
	Info(ctx context.Context, msg string, fields ...Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields ...Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields ...Fields)

	// Fatal logs a fatal message and exits the application
	Fatal(ctx context.Context, msg string, err error, fields ...Fields)

	// WithFields creates a new logger with additional fields
	WithFields(fields Fields) Logger

	// WithComponent creates a new logger tagged with a component name
	WithComponent(component string) Logger

	// ForContext returns the request-scoped logger stored in ctx, if any
	ForContext(ctx context.Context) Logger
}

// Merge flattens several field sets into one; later keys win.
func Merge(sets ...Fields) Fields {
	out := make(Fields)
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

//Personal.AI order the ending
