package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"socialgraph/src/domain"

	"github.com/golang-jwt/jwt/v5"
)

// SessionProvider troca o bearer token por um user id estável (claim sub).
type SessionProvider struct {
	secret []byte
	issuer string
}

func NewSessionProvider(secret string, issuer string) *SessionProvider {
	return &SessionProvider{secret: []byte(secret), issuer: issuer}
}

func (p *SessionProvider) Authenticate(r *http.Request) (string, error) {
	tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(tokenString) == "" {
		return "", fmt.Errorf("%w: missing bearer token", domain.ErrUnauthenticated)
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		options = append(options, jwt.WithIssuer(p.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, options...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	if !token.Valid {
		return "", fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}

	if err := domain.ValidateUserID(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}

	return claims.Subject, nil
}

// Issue assina um token para o usuário (testes e ambiente local).
func (p *SessionProvider) Issue(userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("SessionProvider.Issue - user id is required")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    p.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
