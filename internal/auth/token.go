package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var timeNow = time.Now

// TokenParser reads the role and subject claims from backend-issued tokens
type TokenParser struct {
	secret []byte
}

// NewTokenParser creates a parser. With an empty secret the signature is not checked and the
// backend remains the only authority on token validity
func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

// Verifies reports whether signatures are checked
func (p *TokenParser) Verifies() bool {
	return len(p.secret) > 0
}

// Parse builds an AuthContext from a token. fallbackRole is used when the token carries no role claim
func (p *TokenParser) Parse(tokenString string, fallbackRole Role) (AuthContext, error) {
	if tokenString == "" {
		return Anonymous, fmt.Errorf("token is empty")
	}

	claims := jwt.MapClaims{}
	if p.Verifies() {
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return p.secret, nil
		})
		if err != nil {
			return Anonymous, fmt.Errorf("failed to parse token: %w", err)
		}
		if !token.Valid {
			return Anonymous, fmt.Errorf("token is invalid")
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			return Anonymous, fmt.Errorf("failed to parse token: %w", err)
		}
		// Expiry is still honoured so a stale cookie sends the user to login
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(timeNow()) {
			return Anonymous, fmt.Errorf("token is expired")
		}
	}

	ctx := AuthContext{Token: tokenString, Role: fallbackRole}
	if sub, err := claims.GetSubject(); err == nil {
		ctx.Subject = sub
	}
	if raw, ok := claims["role"].(string); ok {
		role, err := ParseRole(raw)
		if err != nil {
			return Anonymous, fmt.Errorf("invalid role claim: %w", err)
		}
		ctx.Role = role
	}

	return ctx, nil
}
