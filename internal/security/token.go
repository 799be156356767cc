package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cloud-auth/internal/model"
)

// Decode failure kinds. The HTTP boundary collapses all three into a single
// 401, but callers and tests can tell them apart.
var (
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrTokenMalformed   = errors.New("token malformed")
)

type accessClaims struct {
	jwt.RegisteredClaims
	Scopes []string `json:"scopes"`
}

// Codec signs and verifies access tokens with a process-wide symmetric
// secret. The algorithm is fixed to HS256 for the process lifetime; the codec
// itself is duration-agnostic and encodes whatever expiry the caller asks for.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

func (c *Codec) Encode(subject string, scopes []string, expiresAt time.Time) (string, error) {
	if scopes == nil {
		scopes = []string{}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Scopes: scopes,
	})

	return token.SignedString(c.secret)
}

// Decode verifies the signature and structure of a token and checks its
// expiry against the current time. Every return path either yields a payload
// or one of ErrTokenExpired, ErrInvalidSignature, ErrTokenMalformed.
func (c *Codec) Decode(tokenString string) (*model.TokenPayload, error) {
	claims := &accessClaims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return c.secret, nil
	})

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrInvalidSignature):
		return nil, ErrInvalidSignature
	case err != nil:
		return nil, ErrTokenMalformed
	}

	if !parsed.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.ExpiresAt == nil || claims.Subject == "" {
		return nil, ErrTokenMalformed
	}

	return &model.TokenPayload{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Unix(),
		Scopes:    claims.Scopes,
	}, nil
}
