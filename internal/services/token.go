package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	// SessionDuration is 300 minutes. Unread cache entries share it.
	SessionDuration = 300 * time.Minute
	tokenIssuer     = "watchfeed"
)

// WatcherClaims identifies a watcher; Subject carries the watcher_id.
type WatcherClaims struct {
	jwt.RegisteredClaims
}

// Tokens issues and verifies watcher bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = SessionDuration
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the token lifetime.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue signs a token for watcherID.
func (t *Tokens) Issue(watcherID string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := WatcherClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   watcherID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return signed, exp, nil
}

// Verify returns the watcher_id of a valid token.
func (t *Tokens) Verify(token string) (string, error) {
	claims := &WatcherClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", errors.Wrap(ErrForbidden, "token is not valid")
	}
	return claims.Subject, nil
}
