package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"foodplaza/internal/domain/model"
	repo "foodplaza/internal/repository"
)

// アクセストークンの発行。JWT実装は infra/auth。
type AccessTokenIssuer interface {
	Issue(user model.User) (token string, expiresIn time.Duration, err error)
}

// パスワード照合。一致しなければ error。
type PasswordVerifier interface {
	Verify(hash string, plain string) error
}

// ログイン入力の形式チェック。実装は internal/validator。
type LoginValidator interface {
	ValidateLogin(ctx context.Context, email string, password string) error
}

type UserDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginOutput struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   int     `json:"expires_in"`
	User        UserDTO `json:"user"`
}

type AuthUsecase struct {
	users     repo.UserRepository
	inputs    LoginValidator
	tokens    AccessTokenIssuer
	passwords PasswordVerifier
	clock     Clock
	log       *slog.Logger
}

// inputs が nil なら必須チェックだけ行う。
func NewAuthUsecase(users repo.UserRepository, inputs LoginValidator, tokens AccessTokenIssuer, passwords PasswordVerifier, logger *slog.Logger) *AuthUsecase {
	if inputs == nil {
		inputs = requiredLogin{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthUsecase{
		users:     users,
		inputs:    inputs,
		tokens:    tokens,
		passwords: passwords,
		clock:     systemClock{},
		log:       logger,
	}
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := u.inputs.ValidateLogin(ctx, email, in.Password); err != nil {
		return LoginOutput{}, ToHTTPError(newKindError(ErrValidation, err.Error()))
	}

	//ユーザー取得
	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && user == nil) {
		return LoginOutput{}, ToHTTPError(ErrInvalidCredentials)
	}
	if err != nil {
		u.log.ErrorContext(ctx, "find user failed", slog.Any("error", err))
		return LoginOutput{}, ToHTTPError(err)
	}

	//パスワード照合（bcrypt）
	if err := u.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		return LoginOutput{}, ToHTTPError(ErrInvalidCredentials)
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return LoginOutput{}, ToHTTPError(ErrUserInactive)
	}

	token, ttl, err := u.tokens.Issue(*user)
	if err != nil {
		u.log.ErrorContext(ctx, "issue access token failed", slog.Any("error", err))
		return LoginOutput{}, ToHTTPError(newKindError(ErrInvariant, "issue token"))
	}

	//last_login更新。失敗してもログインは通す
	if err := u.users.TouchLastLogin(ctx, user.ID, u.clock.Now().UTC()); err != nil {
		u.log.WarnContext(ctx, "touch last login failed", slog.Int64("user_id", user.ID), slog.Any("error", err))
	}

	return LoginOutput{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl.Seconds()),
		User: UserDTO{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  string(user.Role),
		},
	}, nil
}

type requiredLogin struct{}

func (requiredLogin) ValidateLogin(_ context.Context, email string, password string) error {
	if email == "" || password == "" {
		return errors.New("email and password are required")
	}
	return nil
}
