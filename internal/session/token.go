// Package session validates bearer tokens and serves the caller-facing
// session endpoints (permission probe, logout).
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "access-gate/pkg/domain-errors"
	"access-gate/pkg/requestcontext"
)

// Claims are the access-token claims issued by the provisioning flow.
type Claims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService validates and, for the provisioning flow and tests, issues
// HS256 access tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
}

func NewTokenService(signingKey, issuer string) *TokenService {
	return &TokenService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

func (s *TokenService) GenerateAccessToken(identity requestcontext.Identity, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   identity.ID,
		Username: identity.Username,
		Roles:    identity.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken parses and verifies the token, returning the identity it
// carries. Any parse or verification failure is an unauthorized error; the
// caller decides whether that refuses the request.
func (s *TokenService) ValidateToken(tokenString string) (*requestcontext.Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &requestcontext.Identity{
		ID:       claims.UserID,
		Username: claims.Username,
		Roles:    claims.Roles,
	}, nil
}
