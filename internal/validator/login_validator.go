package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// email形式が不正
	ErrInvalidEmail = errors.New("invalid email")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// パスワードの上限。bcrypt は72バイトまでしか見ない
const maxPasswordBytes = 72

type LoginValidator struct{}

func NewLoginValidator() LoginValidator {
	return LoginValidator{}
}

// ログインの入力を検証
func (LoginValidator) ValidateLogin(_ context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	if len(password) > maxPasswordBytes {
		return ErrInvalidInput
	}
	return nil
}
