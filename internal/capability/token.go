// Package capability issues and checks post-scoped write capabilities. A
// post author proves knowledge of the post's secret key once and receives a
// short-lived signed token that allows editing or deleting that post only.
package capability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookclub/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
)

// ScopePostWrite allows updating and deleting a single post.
const ScopePostWrite = "post:write"

var (
	ErrMissingToken = fmt.Errorf("capability token required: %w", apperr.ErrForbidden)
	ErrInvalidToken = fmt.Errorf("capability token invalid: %w", apperr.ErrForbidden)
	ErrWrongPost    = fmt.Errorf("capability token does not cover this post: %w", apperr.ErrForbidden)
)

type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Grant is an issued capability.
type Grant struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a post:write capability for postID.
func (s *Service) Issue(postID string) (Grant, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	c := Claims{
		Scope: ScopePostWrite,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   postID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return Grant{}, err
	}
	return Grant{Token: token, ExpiresAt: exp.Truncate(time.Second)}, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims, ok := t.Claims.(*Claims); ok && t.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}

// Authorize checks that token is a valid, unexpired post:write capability for
// postID. Every failure is-a apperr.ErrForbidden.
func (s *Service) Authorize(_ context.Context, token, postID string) error {
	if token == "" {
		return ErrMissingToken
	}
	claims, err := s.parse(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("capability token expired: %w", apperr.ErrForbidden)
		}
		return ErrInvalidToken
	}
	if claims.Scope != ScopePostWrite {
		return ErrInvalidToken
	}
	if claims.Subject != postID {
		return ErrWrongPost
	}
	return nil
}
