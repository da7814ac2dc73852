package globals

// Context keys
type ContextKey string

const (
	EmailKey          ContextKey = "email"
	IdempotencyKeyCtx ContextKey = "idempotency-key"
)

// TokenCookie is the name of the session cookie carrying the signed identity.
const TokenCookie = "token"
