// Package auth scopes per-user state by deriving a namespace from the caller
// identity token the MCP auth middleware stores in context.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/mcp-protocol/authorization"
)

// DefaultNamespace is used when no identity token is present.
const DefaultNamespace = "default"

// claimOrder lists the JWT claims tried as namespace, most specific first.
// Azure AD ID tokens carry preferred_username; access tokens usually only
// have sub.
var claimOrder = []string{"email", "preferred_username", "sub"}

// Service derives the caller namespace from a JWT carried in context. The
// token is parsed without verification: the namespace only partitions cached
// auth records, the actual authorization happens at the transport layer.
type Service struct {
	fallback string
}

func New() *Service {
	return &Service{fallback: DefaultNamespace}
}

// Namespace returns the identity-derived namespace for the current request,
// or the fallback when no token is present or none of the known claims is
// set.
func (s *Service) Namespace(ctx context.Context) (string, error) {
	if s == nil {
		return DefaultNamespace, nil
	}
	tokenValue := ctx.Value(authorization.TokenKey)
	if tokenValue == nil {
		return s.fallback, nil
	}
	var tokenString string
	switch tv := tokenValue.(type) {
	case string:
		tokenString = tv
	case *authorization.Token:
		tokenString = tv.Token
	default:
		return "", fmt.Errorf("unsupported token type %T", tokenValue)
	}
	if ns := namespaceFromToken(tokenString); ns != "" {
		return ns, nil
	}
	return s.fallback, nil
}

func namespaceFromToken(tokenString string) string {
	var claims jwt.MapClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, &claims); err != nil {
		return ""
	}
	for _, name := range claimOrder {
		if v, _ := claims[name].(string); v != "" {
			return v
		}
	}
	return ""
}
