package auth

// AccountClaims identifies the authenticated caller of the sync API
type AccountClaims interface {
	AccountID() string
	Role() string
	Source() string
}

// JWTAccountClaims are claims extracted from a dashboard-issued bearer token
type JWTAccountClaims struct {
	AccountUUID string
	RoleValue   string
}

func (c *JWTAccountClaims) AccountID() string { return c.AccountUUID }
func (c *JWTAccountClaims) Role() string      { return c.RoleValue }
func (c *JWTAccountClaims) Source() string    { return "JWT" }
