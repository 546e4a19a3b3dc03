// Package auth はアクセストークンの発行とパスワード照合の実装。
package auth

import (
	"errors"
	"strconv"
	"time"

	"foodplaza/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

// HS256 でアクセストークンを発行する。
// claims: sub(user id) / role / tv(token_version) / iat / exp
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *JWTIssuer) Issue(user model.User) (string, time.Duration, error) {
	if user.ID <= 0 {
		return "", 0, errors.New("invalid user id")
	}
	if len(i.secret) == 0 {
		return "", 0, errors.New("jwt secret is empty")
	}

	now := i.now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": string(user.Role),
		"tv":   user.TokenVersion,
		"iat":  now.Unix(),
		"exp":  now.Add(i.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", 0, err
	}
	return signed, i.ttl, nil
}
