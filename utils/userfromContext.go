package utils

import (
	"context"
	"net/http"

	"plantnet/globals"
)

// GetEmailFromRequest returns the authenticated caller's email, or "".
func GetEmailFromRequest(r *http.Request) string {
	return EmailFromContext(r.Context())
}

func EmailFromContext(ctx context.Context) string {
	email, ok := ctx.Value(globals.EmailKey).(string)
	if !ok {
		return ""
	}
	return email
}

// WithEmail stores the authenticated email on ctx.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, globals.EmailKey, email)
}
