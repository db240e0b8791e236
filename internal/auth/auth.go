// Package auth mints and verifies bearer tokens and resolves them to the
// acting user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zulandar/processmap/internal/apperr"
	"github.com/zulandar/processmap/internal/models"
	"github.com/zulandar/processmap/internal/process"
	"gorm.io/gorm"
)

const issuerName = "processmap"

// Claims is the token payload. Subject is the user id.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer. A zero ttl issues tokens that never expire.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth: jwt secret is required")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue mints a token for u.
func (i *Issuer) Issue(u models.User) (string, error) {
	now := i.now()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuerName,
			Subject:  u.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, issuer and expiry.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperr.Unauthenticatedf("missing bearer token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unauthenticated, err, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, apperr.Unauthenticatedf("invalid token")
	}
	return claims, nil
}

// Resolve verifies tokenString and loads its user. The role comes from the
// stored user, so a role change applies to tokens already issued.
func (i *Issuer) Resolve(ctx context.Context, db *gorm.DB, tokenString string) (process.Actor, *models.User, error) {
	claims, err := i.Parse(tokenString)
	if err != nil {
		return process.Actor{}, nil, err
	}
	var u models.User
	if err := db.WithContext(ctx).Where("id = ?", claims.Subject).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return process.Actor{}, nil, apperr.Unauthenticatedf("token user no longer exists")
		}
		return process.Actor{}, nil, fmt.Errorf("auth: load user %s: %w", claims.Subject, err)
	}
	return process.Actor{UserID: u.ID, Role: u.Role}, &u, nil
}
