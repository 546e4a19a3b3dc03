// Package server は echo アプリを組み立てて起動する。
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"foodplaza/internal/config"
	"foodplaza/internal/handler"
	infraauth "foodplaza/internal/infra/auth"
	infrarepo "foodplaza/internal/infra/repository"
	"foodplaza/internal/metrics"
	"foodplaza/internal/middleware"
	"foodplaza/internal/usecase"
	"foodplaza/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Deps はサーバーが使う外部の部品。
type Deps struct {
	Config   config.Config
	Logger   *slog.Logger
	DB       *gorm.DB
	Events   usecase.OrderEventPublisher // nil なら送らない
	Registry *prometheus.Registry        // nil なら新しく作る
}

// New はルーティングとミドルウェアを設定した echo を返す。
func New(d Deps) (*echo.Echo, error) {
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}

	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	m := metrics.New(d.Registry)

	//Repository
	tx := infrarepo.NewTxManagerGorm(d.DB)
	users := infrarepo.NewUserGormRepository(d.DB)

	//Usecase
	orders := usecase.NewOrderUsecase(
		tx,
		usecase.NewOrderValidator(usecase.PricePolicy(d.Config.PricePolicy)),
		d.Events,
		m,
		d.Logger,
	)
	query := usecase.NewOrderQueryUsecase(tx, d.Logger)
	login := usecase.NewAuthUsecase(
		users,
		validator.NewLoginValidator(),
		infraauth.NewJWTIssuer(d.Config.JWTSecret, d.Config.JWTAccessTTL),
		infraauth.BcryptVerifier{},
		d.Logger,
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomw.Recover())
	e.Use(middleware.Metrics(m))
	if d.Config.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{
			Timeout: d.Config.RequestTimeout,
		}))
	}

	//Handler
	handler.NewHealthHandler(sqlDB).RegisterRoutes(e)
	handler.NewAuthHandler(login).RegisterRoutes(e)
	handler.NewOrderHandler(orders, query).RegisterRoutes(e, d.Config, users)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(d.Registry)))

	return e, nil
}

// Run は ctx がキャンセルされるまで待ち、受付中のリクエストを捌いてから止まる。
func Run(ctx context.Context, e *echo.Echo, addr string, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
