package models

// Keys under which the authorization middleware stores the verified
// principal in the gin context.
const (
	ContextClaimsKey   = "auth_claims"
	ContextRawTokenKey = "auth_raw_token"
)
