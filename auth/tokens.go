package auth

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/harubang/fengshui-site/internal/errors"
)

// TokenCreator creates and verifies the signed access tokens carried inside a
// session. Tokens are HS256-signed with the deployment's session secret.
type TokenCreator struct {
	secret  []byte
	issuer  string
	expiry  time.Duration
	nowTime func() time.Time // injectable for testing
}

// AccessClaims are the verified contents of an access token.
type AccessClaims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

func NewTokenCreator(secret []byte, issuer string, expiry time.Duration) (*TokenCreator, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("[NewTokenCreator] signing secret is required")
	}
	return &TokenCreator{
		secret:  secret,
		issuer:  issuer,
		expiry:  expiry,
		nowTime: time.Now,
	}, nil
}

// CreateAccessToken signs an access token for the user and returns the token
// together with its expiry.
func (c *TokenCreator) CreateAccessToken(user *User) (string, time.Time, error) {
	now := c.nowTime()
	expiresAt := now.Add(c.expiry)

	claims := jwtlib.MapClaims{
		"iss":   c.issuer,
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
		"jti":   uuid.New().String(),
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseAccessToken verifies a raw access token and extracts its claims.
// Expired tokens return ErrSessionExpired; anything else invalid returns
// ErrInvalidToken.
func (c *TokenCreator) ParseAccessToken(raw string) (*AccessClaims, error) {
	token, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwtlib.WithTimeFunc(c.nowTime))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, errors.ErrSessionExpired
		}
		return nil, errors.Wrapf(errors.ErrInvalidToken, "parse access token: %s", err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}

	return &AccessClaims{
		UserID:    sub,
		Email:     email,
		ExpiresAt: expiresAt,
	}, nil
}
