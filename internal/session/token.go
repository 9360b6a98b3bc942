package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrBadToken covers malformed, expired, and forged tokens alike.
var ErrBadToken = errors.New("session: bad token")

// Codec signs and verifies session tokens. The token is not an
// identity credential; it makes the session self-describing and
// tamper-evident, because a forged seed would silently misalign
// positional answers.
type Codec struct{ hmac []byte }

func NewCodec(secret string) *Codec { return &Codec{hmac: []byte(secret)} }

type Claims struct {
	SID  string `json:"sid"`
	Mode string `json:"mode"`
	Seed string `json:"seed"`
	jwt.RegisteredClaims
}

func (c *Codec) Issue(s Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		SID:  s.ID,
		Mode: s.Mode,
		Seed: s.Seed,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "typemetry",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.hmac)
}

func (c *Codec) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.hmac, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrBadToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrBadToken
	}
	return claims, nil
}
