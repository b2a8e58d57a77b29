package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const (
	DefaultAccessTokenTTL  = 120 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenService issues and verifies HS256-signed access and refresh tokens.
// Tokens are stateless capabilities: a valid signature plus an unexpired
// exp claim is all that authorizes the subject they name.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL == 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL == 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccess returns a signed access token for the given subject (email).
func (s *TokenService) IssueAccess(subject string) (string, error) {
	return s.issue(subject, TokenTypeAccess, s.accessTTL)
}

// IssueRefresh returns a signed refresh token for the given subject.
func (s *TokenService) IssueRefresh(subject string) (string, error) {
	return s.issue(subject, TokenTypeRefresh, s.refreshTTL)
}

func (s *TokenService) issue(subject, tokenType string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"exp":  time.Now().Add(ttl).Unix(),
		"type": tokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify decodes a token string and checks its signature and expiry. It
// never returns an error: any failure (malformed token, bad signature,
// expired, wrong signing method) yields (nil, false). Callers translate
// the false result into their own rejection.
func (s *TokenService) Verify(tokenString string) (jwt.MapClaims, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}

	// jwt.Parse only rejects exp when the claim is present; a token
	// without exp is not accepted here.
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || exp.Before(time.Now()) {
		return nil, false
	}

	return claims, true
}

// Subject extracts the sub claim, returning false when absent or empty.
func Subject(claims jwt.MapClaims) (string, bool) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", false
	}
	return sub, true
}

// TokenType extracts the type claim ("access" or "refresh").
func TokenType(claims jwt.MapClaims) string {
	t, _ := claims["type"].(string)
	return t
}
