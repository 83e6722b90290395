package http

import (
	"context"
	"errors"

	"koperasi-backend/internal/security"
)

type contextKey string

const claimsContextKey contextKey = "member-claims"

var errNoClaims = errors.New("no authenticated member in context")

func contextWithClaims(ctx context.Context, claims *security.MemberClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the claims the auth middleware stored for this
// request. Handlers behind the middleware can rely on it succeeding.
func ClaimsFromContext(ctx context.Context) (*security.MemberClaims, error) {
	claims, ok := ctx.Value(claimsContextKey).(*security.MemberClaims)
	if !ok || claims == nil {
		return nil, errNoClaims
	}
	return claims, nil
}

func memberIDFromContext(ctx context.Context) (int32, error) {
	claims, err := ClaimsFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return claims.MemberID, nil
}
