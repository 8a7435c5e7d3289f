// Package requestcontext provides context accessors for request-scoped values.
//
// Values are set by the transport layer (Telegram update router, HTTP
// middleware, scheduler) and consumed by services. Keeping this package free of
// transport dependencies lets services import only what they need.
//
// Usage in services (read values):
//
//	now := requestcontext.Now(ctx)
//	chatID := requestcontext.ChatID(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	chatIDKey      struct{}
	senderIDKey    struct{}
	requestTimeKey struct{}
)

// ChatID retrieves the originating chat identifier, or 0 if not set.
func ChatID(ctx context.Context) int64 {
	if id, ok := ctx.Value(chatIDKey{}).(int64); ok {
		return id
	}
	return 0
}

// WithChatID injects the originating chat identifier into the context.
func WithChatID(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, chatIDKey{}, chatID)
}

// SenderID retrieves the sending user identifier, or 0 if not set.
func SenderID(ctx context.Context) int64 {
	if id, ok := ctx.Value(senderIDKey{}).(int64); ok {
		return id
	}
	return 0
}

// WithSenderID injects the sending user identifier into the context.
func WithSenderID(ctx context.Context, senderID int64) context.Context {
	return context.WithValue(ctx, senderIDKey{}, senderID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-injected contexts (workers, CLI).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests and for keeping one consistent instant across a scheduled cycle.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
