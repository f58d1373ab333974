// Package auth resolves bearer session tokens into actors. Tokens are HMAC-signed
// JWTs whose subject is a user id; the user's current role and active flag are
// read from the user repository on every request.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/indigenous-art-atlas/internal/config"
	"github.com/indigenous-art-atlas/internal/models"
	"github.com/indigenous-art-atlas/internal/repository"
)

const leeway = 30 * time.Second

// Claims carried by a session token
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"preferred_username,omitempty"`
}

// Authenticator issues and verifies session tokens
type Authenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	users  repository.UserRepository
}

// NewAuthenticator creates an authenticator backed by the user repository
func NewAuthenticator(cfg config.AuthConfig, users repository.UserRepository) *Authenticator {
	return &Authenticator{
		secret: []byte(cfg.TokenSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		users:  users,
	}
}

// Issue signs a token for the user valid from now for the configured TTL
func (a *Authenticator) Issue(user *models.User, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		Username: user.Username,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ResolveHeader turns an Authorization header into an actor.
// An empty header is an anonymous caller (nil actor, nil error).
func (a *Authenticator) ResolveHeader(ctx context.Context, header string) (*models.Actor, error) {
	if header == "" {
		return nil, nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, fmt.Errorf("%w: expected Bearer token", models.ErrUnauthorized)
	}
	return a.Resolve(ctx, strings.TrimSpace(parts[1]))
}

// Resolve verifies a token and loads its actor. Unknown and inactive users are unauthorized.
func (a *Authenticator) Resolve(ctx context.Context, tokenString string) (*models.Actor, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired token", models.ErrUnauthorized)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", models.ErrUnauthorized)
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", models.ErrUnauthorized)
		}
		return nil, err
	}
	if !user.Active {
		return nil, fmt.Errorf("%w: account is inactive", models.ErrUnauthorized)
	}
	return user.Actor(), nil
}
