package consent

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Caller identifies the remote party of a single request together with the
// consent it declared for the session. Identity issuance is out of scope; the
// caller arrives as opaque context populated by the transport layer.
type Caller struct {
	ClientID string
	Username string
	Role     string
	Consent  Tier
}

type callerKey struct{}

// WithCaller attaches a caller to the request context.
func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the caller attached to ctx, if any.
func CallerFromContext(ctx context.Context) *Caller {
	if ctx == nil {
		return nil
	}
	caller, _ := ctx.Value(callerKey{}).(*Caller)
	return caller
}

// CallerFromToken derives a caller from a bearer token via an unverified claim
// parse; signature verification belongs to the transport middleware.
func CallerFromToken(token string) (*Caller, error) {
	var claims jwt.MapClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(normalizeBearer(token), &claims); err != nil {
		return nil, err
	}
	caller := &Caller{
		ClientID: claimString(claims, "client_id", "sub"),
		Username: claimString(claims, "username", "email"),
		Role:     claimString(claims, "role"),
	}
	if name := claimString(claims, "consent"); name != "" {
		if tier, err := ParseTier(name); err == nil {
			caller.Consent = tier
		}
	}
	return caller, nil
}

func normalizeBearer(s string) string {
	v := strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(v), "bearer ") {
		return strings.TrimSpace(v[len("bearer "):])
	}
	return v
}

func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if value, ok := claims[key]; ok {
			if s, ok := value.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
