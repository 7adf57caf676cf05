package httpx

type ctxKey string

const (
	// CtxKeyEmail is the authenticated caller's email, injected by the
	// bearer-auth middleware after token verification.
	CtxKeyEmail ctxKey = "email"

	// CtxKeyRole is the caller's effective role at verification time.
	CtxKeyRole ctxKey = "role"

	// CtxKeyAccessToken is the raw bearer token; logout needs it back to
	// blacklist the exact credential it was called with.
	CtxKeyAccessToken ctxKey = "access_token"
)
