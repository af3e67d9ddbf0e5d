package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/NomadCrew/nomad-crew-ledger/config"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	// ErrTokenExpired is returned when JWT validation fails due to expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for general token validation failures (signature, format).
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenMissingClaim is returned if a required claim (like 'sub') is missing.
	ErrTokenMissingClaim = errors.New("token missing required claim")
)

// Validator defines the interface for validating tokens.
type Validator interface {
	// Validate returns the token subject, which is the caller's user id.
	Validate(tokenString string) (string, error)
}

// JWTValidator checks HS256 tokens signed with the shared secret of the
// NomadCrew auth service.
type JWTValidator struct {
	secret []byte
	skew   time.Duration
}

// Ensure JWTValidator implements the Validator interface
var _ Validator = (*JWTValidator)(nil)

const defaultClockSkew = 30 * time.Second

// NewJWTValidator creates a validator from the server configuration.
func NewJWTValidator(cfg *config.ServerConfig) (*JWTValidator, error) {
	if cfg.JwtSecretKey == "" {
		return nil, fmt.Errorf("JWT validator configuration error: JWT_SECRET_KEY is not set")
	}
	return &JWTValidator{secret: []byte(cfg.JwtSecretKey), skew: defaultClockSkew}, nil
}

// Validate parses and validates the token and returns its subject.
func (v *JWTValidator) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, v.secret),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(v.skew),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return "", fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	sub := token.Subject()
	if sub == "" {
		return "", ErrTokenMissingClaim
	}
	return sub, nil
}
