package usecase

import (
	"errors"
	"fmt"
	"net/http"

	repo "foodplaza/internal/repository"
)

// handlerがそのままレスポンスにできるエラー。
// Err に元のエラーを持つので errors.Is で種類を判定できる。
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// エラーの種類
var (
	//404 参照先が存在しない
	ErrNotFound = errors.New("not found")
	//400 入力が不正・クライアントの状態が古い
	ErrValidation = errors.New("validation error")
	//401 認証失敗
	ErrUnauthorized = errors.New("unauthorized")
	//403 権限・停止中
	ErrForbidden = errors.New("forbidden")
	//409 読んだ後に他のリクエストが状態を変えた
	ErrConflict = errors.New("conflict")
	//503 ストアの一時障害。何もコミットされていないので再試行できる
	ErrTransientStore = errors.New("store unavailable")
	//500 起きないはずの状態
	ErrInvariant = errors.New("invariant violation")
)

// kindError は種類（ErrValidation など）を Unwrap で返す具体的なエラー。
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrLocalNotFound   = newKindError(ErrNotFound, "local not found")
	ErrProductNotFound = newKindError(ErrNotFound, "product not found")
	ErrOrderNotFound   = newKindError(ErrNotFound, "order not found")

	ErrEmptyOrder         = newKindError(ErrValidation, "order must contain at least one item")
	ErrInvalidQuantity    = newKindError(ErrValidation, "quantity must be greater than zero")
	ErrProductUnavailable = newKindError(ErrValidation, "product is not available")
	ErrPriceMismatch      = newKindError(ErrValidation, "product price has changed, refresh your cart")
	ErrInvalidStatus      = newKindError(ErrValidation, "invalid status")
	ErrIllegalTransition  = newKindError(ErrValidation, "illegal status transition")
	ErrOrderClosed        = newKindError(ErrIllegalTransition, "order is already completed or cancelled")
	ErrInvalidEstimate    = newKindError(ErrValidation, "estimated_minutes must be greater than zero")
	ErrInvalidPagination  = newKindError(ErrValidation, "invalid skip/limit")

	ErrStaleOrder = newKindError(ErrConflict, "order status has changed, reload and retry")

	ErrInvalidCredentials = newKindError(ErrUnauthorized, "invalid credentials")
	ErrUserInactive       = newKindError(ErrForbidden, "user is inactive")

	ErrInvalidTotal = newKindError(ErrInvariant, "computed total must be greater than zero")
)

// ToHTTPError はエラーの種類からステータスを決める。
func ToHTTPError(err error) *HTTPError {
	if he, ok := AsHTTPError(err); ok {
		return he
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return &HTTPError{Status: http.StatusNotFound, Message: err.Error(), Err: err}
	case errors.Is(err, ErrValidation):
		return &HTTPError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	case errors.Is(err, ErrUnauthorized):
		return &HTTPError{Status: http.StatusUnauthorized, Message: err.Error(), Err: err}
	case errors.Is(err, ErrForbidden):
		return &HTTPError{Status: http.StatusForbidden, Message: err.Error(), Err: err}
	case errors.Is(err, ErrConflict):
		return &HTTPError{Status: http.StatusConflict, Message: err.Error(), Err: err}
	case errors.Is(err, ErrInvariant):
		return &HTTPError{Status: http.StatusInternalServerError, Message: "internal error", Err: err}
	case errors.Is(err, repo.ErrTransient), errors.Is(err, ErrTransientStore):
		return &HTTPError{
			Status:  http.StatusServiceUnavailable,
			Message: "store unavailable, retry later",
			Err:     fmt.Errorf("%w: %w", ErrTransientStore, err),
		}
	default:
		return &HTTPError{Status: http.StatusInternalServerError, Message: "db error", Err: err}
	}
}
