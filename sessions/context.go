package sessions

import "context"

type contextKey struct{}

// WithSession attaches the resolved session to a request context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session set by the route guard, or nil when the request is anonymous.
func FromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(contextKey{}).(Session)
	if !ok {
		return nil
	}
	return &s
}

// Static is a Provider returning a fixed session. Used by tests and by pages that have already
// resolved the session.
type Static struct {
	Session *Session
}

func (p Static) Current(context.Context) (Session, bool) {
	if p.Session == nil {
		return Session{}, false
	}
	return *p.Session, true
}
