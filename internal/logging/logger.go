// Package logging defines the minimal structured-logging contract used
// across the identity service. The slog-backed implementation is the only
// one in-tree, but components depend on the interface so it can be swapped.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// key-value pairs:
//
//	log.Info(ctx, "login", "user_id", id, "requires_2fa", true)
//
// Implementations must never be handed plaintext passwords, full tokens,
// or TOTP secrets; callers log identifiers and operation names only.
type Logger interface {
	// Debug logs developer-level detail.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value
	// pairs.
	With(args ...any) Logger
}
