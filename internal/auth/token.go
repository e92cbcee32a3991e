// Package auth issues and checks bearer tokens for the HR API, hashes
// passwords and throttles repeated login failures.
package auth

import (
	"time"

	"github.com/juju/clock"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pkg/errors"
)

const (
	claimUserID       = "userId"
	claimRole         = "role"
	claimRestaurantID = "restaurantId"

	DefaultTokenTTL = 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

// Principal is the identity carried by a token.
type Principal struct {
	UserID       string      `json:"userId"`
	Role         models.Role `json:"role"`
	RestaurantID *string     `json:"restaurantId"`
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenIssuer(secret string, ttl time.Duration, clk clock.Clock) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if clk == nil {
		clk = clock.WallClock
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, clock: clk}
}

func (i *TokenIssuer) Issue(p Principal) (string, error) {
	now := i.clock.Now()
	builder := jwt.NewBuilder().
		IssuedAt(now).
		Expiration(now.Add(i.ttl)).
		Claim(claimUserID, p.UserID).
		Claim(claimRole, string(p.Role))
	if p.RestaurantID != nil {
		builder = builder.Claim(claimRestaurantID, *p.RestaurantID)
	} else {
		builder = builder.Claim(claimRestaurantID, nil)
	}
	token, err := builder.Build()
	if err != nil {
		return "", errors.Wrap(err, "building token")
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, i.secret))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return string(signed), nil
}

// Verify checks signature and expiry against the issuer clock.
func (i *TokenIssuer) Verify(raw string) (Principal, error) {
	token, err := jwt.Parse([]byte(raw), jwt.WithKey(jwa.HS256, i.secret), jwt.WithClock(i.clock))
	if err != nil {
		return Principal{}, errors.Wrap(ErrInvalidToken, err.Error())
	}

	claims := token.PrivateClaims()
	userID, _ := claims[claimUserID].(string)
	role, _ := claims[claimRole].(string)
	if userID == "" || role == "" {
		return Principal{}, ErrInvalidToken
	}
	p := Principal{UserID: userID, Role: models.Role(role)}
	if rid, ok := claims[claimRestaurantID].(string); ok {
		p.RestaurantID = &rid
	}
	return p, nil
}
