package handler

import (
	"errors"
	"net/http"

	"foodplaza/internal/authz"
	"foodplaza/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// usecase/authz のエラーをレスポンスにする
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, authz.ErrForbidden) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	}

	he := usecase.ToHTTPError(err)
	return c.JSON(he.Status, ErrorResponse{Error: he.Message})
}
