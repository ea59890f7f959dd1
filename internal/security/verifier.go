package security

// AccessTokenVerifier checks a raw bearer token and returns its claims.
type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (TokenClaims, error)
}
