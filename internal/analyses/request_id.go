package analyses

import "context"

type requestIDKey struct{}

type guestKey struct{}

// WithRequestID attaches a request ID to the context for logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// WithGuest marks the caller as an anonymous guest. Guests are metered but
// do not accrue aggregate stats.
func WithGuest(ctx context.Context, guest bool) context.Context {
	if ctx == nil {
		return ctx
	}
	return context.WithValue(ctx, guestKey{}, guest)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

func isGuest(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	guest, _ := ctx.Value(guestKey{}).(bool)
	return guest
}

// backgroundWithRequestID detaches ctx from its cancellation but keeps the
// request ID and guest flag.
func backgroundWithRequestID(ctx context.Context) context.Context {
	out := context.Background()
	if requestID := requestIDFromContext(ctx); requestID != "" {
		out = WithRequestID(out, requestID)
	}
	if isGuest(ctx) {
		out = WithGuest(out, true)
	}
	return out
}
