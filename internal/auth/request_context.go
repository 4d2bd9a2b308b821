package auth

import "context"

type contextKey string

var accountClaimsKey contextKey = "account_claims"

// SetAccountClaims stores the caller's claims in the request context
func SetAccountClaims(ctx context.Context, claims AccountClaims) context.Context {
	return context.WithValue(ctx, accountClaimsKey, claims)
}

// GetAccountClaims retrieves the caller's claims, or nil when unauthenticated
func GetAccountClaims(ctx context.Context) AccountClaims {
	val := ctx.Value(accountClaimsKey)
	if claims, ok := val.(AccountClaims); ok {
		return claims
	}
	return nil
}
