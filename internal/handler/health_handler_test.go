package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name string
		ping error
		want int
		body string
	}{
		{"ok", nil, http.StatusOK, `"ok"`},
		{"db down", errors.New("connection refused"), http.StatusServiceUnavailable, `"unavailable"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			NewHealthHandler(pingerFunc(func(context.Context) error { return tt.ping })).RegisterRoutes(e)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}
