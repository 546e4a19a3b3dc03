package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"foodplaza/internal/authz"
	"foodplaza/internal/config"
	"foodplaza/internal/domain/model"
	"foodplaza/internal/middleware"
	"foodplaza/internal/repository"
	"foodplaza/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	orders *usecase.OrderUsecase
	query  *usecase.OrderQueryUsecase
}

func NewOrderHandler(orders *usecase.OrderUsecase, query *usecase.OrderQueryUsecase) *OrderHandler {
	return &OrderHandler{orders: orders, query: query}
}

type OrderItemRequest struct {
	ProductID    int64            `json:"product_id"`
	Quantity     int64            `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unit_price"` // 任意。strict のときだけ照合する
	Instructions string           `json:"instructions"`
}

type OrderCreateRequest struct {
	LocalID      int64              `json:"local_id"`
	Instructions string             `json:"instructions"`
	Items        []OrderItemRequest `json:"items"`
}

// 送られてきた項目だけ更新する
type OrderUpdateRequest struct {
	Status           *string `json:"status"`
	Instructions     *string `json:"instructions"`
	EstimatedMinutes *int    `json:"estimated_minutes"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/pedidos")
	g.Use(middleware.AuthJWT(cfg.JWTSecret))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/usuario/:user_id", h.listByUser)
	g.GET("/local/:local_id", h.listByLocal)
	g.GET("/:id", h.detail)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete, middleware.RequireRoles(model.RoleAdmin))
	g.GET("/:id/auditoria", h.auditTrail, middleware.RequireRoles(model.RoleAdmin))
}

// POST /pedidos
func (h *OrderHandler) create(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.LocalID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid local_id"})
	}

	items := make([]usecase.ProposedItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.ProposedItem{
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Instructions: it.Instructions,
		})
	}

	//注文者は常にトークンのユーザー
	out, err := h.orders.Create(c.Request().Context(), p.UserID, usecase.CreateOrderInput{
		LocalID:      req.LocalID,
		Instructions: req.Instructions,
		Items:        items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// GET /pedidos?status&local_id&user_id&skip&limit
func (h *OrderHandler) list(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	in, err := parseListQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	//gerenteが店舗を指定したときは担当かどうかを見る
	var local *model.Local
	if p.Role == model.RoleManager && in.LocalID != nil {
		l, err := h.query.Local(c.Request().Context(), *in.LocalID)
		if err != nil {
			return writeError(c, err)
		}
		local = &l
	}

	scope, err := authz.ScopeList(p, authz.ListScope{LocalID: in.LocalID, UserID: in.UserID}, local)
	if err != nil {
		return writeError(c, err)
	}
	in.LocalID, in.UserID = scope.LocalID, scope.UserID

	out, err := h.query.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /pedidos/usuario/:user_id
func (h *OrderHandler) listByUser(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	in, err := parseListQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	in.LocalID = nil

	scope, err := authz.ScopeList(p, authz.ListScope{UserID: &userID}, nil)
	if err != nil {
		return writeError(c, err)
	}
	in.UserID = scope.UserID

	out, err := h.query.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /pedidos/local/:local_id
func (h *OrderHandler) listByLocal(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	localID, err := strconv.ParseInt(c.Param("local_id"), 10, 64)
	if err != nil || localID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid local_id"})
	}

	in, err := parseListQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	//店舗がなければ404
	local, err := h.query.Local(c.Request().Context(), localID)
	if err != nil {
		return writeError(c, err)
	}

	scope, err := authz.ScopeList(p, authz.ListScope{LocalID: &localID}, &local)
	if err != nil {
		return writeError(c, err)
	}
	in.UserID = scope.UserID

	out, err := h.query.ListByLocal(c.Request().Context(), localID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /pedidos/:id
func (h *OrderHandler) detail(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.orders.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	local, err := h.localOf(c.Request().Context(), out.LocalID)
	if err != nil {
		return writeError(c, err)
	}
	if err := authz.CanView(p, refOf(out), local); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// PATCH /pedidos/:id
func (h *OrderHandler) update(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req OrderUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	change := authz.Change{OtherFields: req.Instructions != nil || req.EstimatedMinutes != nil}
	if req.Status != nil {
		s := model.OrderStatus(strings.TrimSpace(*req.Status))
		if !s.Valid() {
			return writeError(c, usecase.ErrInvalidStatus)
		}
		change.Status = &s
	}

	ctx := c.Request().Context()
	current, err := h.orders.Get(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	local, err := h.localOf(ctx, current.LocalID)
	if err != nil {
		return writeError(c, err)
	}
	if err := authz.CanUpdate(p, refOf(current), local, change); err != nil {
		return writeError(c, err)
	}

	out, err := h.orders.Update(ctx, p.UserID, id, usecase.UpdateOrderInput{
		Status:           req.Status,
		Instructions:     req.Instructions,
		EstimatedMinutes: req.EstimatedMinutes,
		ExpectStatus:     authz.UpdatePrecondition(p, refOf(current), local),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// DELETE /pedidos/:id （admin のみ）
func (h *OrderHandler) delete(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	if err := authz.CanDelete(p); err != nil {
		return writeError(c, err)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.orders.Delete(c.Request().Context(), p.UserID, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /pedidos/:id/auditoria?skip&limit （admin のみ）
func (h *OrderHandler) auditTrail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	page, err := parseListQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	out, err := h.query.AuditTrail(c.Request().Context(), id, usecase.AuditTrailInput{Skip: page.Skip, Limit: page.Limit})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// localOf は権限判定用に店舗を引く。カタログから消えていれば nil。
func (h *OrderHandler) localOf(ctx context.Context, localID int64) (*model.Local, error) {
	l, err := h.query.Local(ctx, localID)
	if errors.Is(err, usecase.ErrLocalNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func refOf(o usecase.OrderOutput) authz.OrderRef {
	return authz.OrderRef{UserID: o.UserID, LocalID: o.LocalID, Status: model.OrderStatus(o.Status)}
}

type queryError string

func (e queryError) Error() string { return string(e) }

// parseListQuery は status / local_id / user_id / skip / limit を読む。
func parseListQuery(c echo.Context) (usecase.ListOrdersInput, error) {
	in := usecase.ListOrdersInput{Status: c.QueryParam("status")}

	if v := c.QueryParam("local_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return in, queryError("invalid local_id")
		}
		in.LocalID = &id
	}
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return in, queryError("invalid user_id")
		}
		in.UserID = &id
	}
	if v := c.QueryParam("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return in, queryError("invalid skip")
		}
		in.Skip = n
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return in, queryError("invalid limit")
		}
		in.Limit = n
	}
	return in, nil
}
