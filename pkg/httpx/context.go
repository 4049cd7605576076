package httpx

import "context"

type ctxKey string

// CtxKeySubject holds an opaque identifier for the authenticated caller.
// Transport packages set it once the caller is known so generic middleware
// (rate limiting) can key on it without knowing the principal type.
const CtxKeySubject ctxKey = "subject"

func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, CtxKeySubject, subject)
}

func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubject).(string); ok {
		return v
	}
	return ""
}
