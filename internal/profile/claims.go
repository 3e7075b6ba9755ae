package profile

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the identity claims of an access token.
type TokenClaims struct {
	UserName  string
	ObjectID  string
	TenantID  string
	AppID     string
	ExpiresOn time.Time
}

// ParseClaims decodes the claims of an access token without verifying its signature. The token was
// just received from the identity provider, only its payload is of interest here.
func ParseClaims(token string) (TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	tc := TokenClaims{
		UserName: firstClaim(claims, "upn", "unique_name", "preferred_username", "email"),
		ObjectID: firstClaim(claims, "oid"),
		TenantID: firstClaim(claims, "tid"),
		AppID:    firstClaim(claims, "appid", "azp"),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.ExpiresOn = exp.Time
	}
	return tc, nil
}

func firstClaim(claims jwt.MapClaims, names ...string) string {
	for _, n := range names {
		if v, ok := claims[n].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
