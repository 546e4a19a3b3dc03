package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"foodplaza/internal/domain/model"
	repo "foodplaza/internal/repository"
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	validator *OrderValidator
	events    OrderEventPublisher
	metrics   OrderMetrics
	ids       IDGenerator
	clock     Clock
	log       *slog.Logger
}

// events / metrics / logger は nil なら何もしない実装を使う。
func NewOrderUsecase(
	tx repo.TransactionManager,
	validator *OrderValidator,
	events OrderEventPublisher,
	metrics OrderMetrics,
	logger *slog.Logger,
) *OrderUsecase {
	if validator == nil {
		validator = NewOrderValidator(PriceFromCatalog)
	}
	if events == nil {
		events = nopPublisher{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &OrderUsecase{
		tx:        tx,
		validator: validator,
		events:    events,
		metrics:   metrics,
		ids:       uuidGenerator{},
		clock:     systemClock{},
		log:       logger,
	}
}

type CreateOrderInput struct {
	LocalID      int64
	Instructions string
	Items        []ProposedItem
}

// nil の項目は変更しない。
type UpdateOrderInput struct {
	Status           *string
	Instructions     *string
	EstimatedMinutes *int

	// 権限判定に使ったステータス。トランザクション内で変わっていたら ErrStaleOrder。
	ExpectStatus *model.OrderStatus
}

// Create は検証・金額計算・注文と明細の保存を1トランザクションで行う。
// どこかで失敗したら何も残らない。
func (u *OrderUsecase) Create(ctx context.Context, userID int64, in CreateOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, err := u.validator.Validate(ctx, r, in.LocalID, in.Items)
		if err != nil {
			return err
		}

		total, minutes, err := PriceOrder(items)
		if err != nil {
			return err
		}

		now := u.clock.Now().UTC().Truncate(time.Microsecond)
		order, err := r.Orders().Create(ctx, model.Order{
			UserID:           userID,
			LocalID:          in.LocalID,
			Status:           model.OrderStatusPending,
			Total:            total,
			Instructions:     strings.TrimSpace(in.Instructions),
			EstimatedMinutes: minutes,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
		if err != nil {
			return err
		}

		//スナップショット
		rows := make([]model.OrderItem, 0, len(items))
		for _, it := range items {
			rows = append(rows, model.OrderItem{
				ProductID:           it.ProductID,
				ProductNameSnapshot: it.ProductName,
				UnitPrice:           it.UnitPrice,
				Quantity:            it.Quantity,
				Instructions:        strings.TrimSpace(it.Instructions),
				CreatedAt:           now,
			})
		}
		created, err := r.OrderItems().CreateBulk(ctx, order.ID, rows)
		if err != nil {
			return err
		}

		out = toOrderOutput(order, created)
		return nil
	})
	if err != nil {
		u.metrics.OrderCreateFailed(failureReason(err))
		return OrderOutput{}, u.fail(ctx, "create order", err)
	}

	u.metrics.OrderCreated()
	u.publish(ctx, OrderEventCreated, out, "", userID)
	return out, nil
}

func (u *OrderUsecase) Get(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, items, err := loadOrder(ctx, r, orderID)
		if err != nil {
			return err
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, u.fail(ctx, "get order", err)
	}
	return out, nil
}

// Update はステータス・指示・予定時間だけを部分更新する。明細と合計には触らない。
// 同じステータスへの変更は何もしない。監査ログは同じトランザクションで書く。
func (u *OrderUsecase) Update(ctx context.Context, actorUserID int64, orderID int64, in UpdateOrderInput) (OrderOutput, error) {
	if actorUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var next *model.OrderStatus
	if in.Status != nil {
		s := model.OrderStatus(strings.TrimSpace(*in.Status))
		if !s.Valid() {
			return OrderOutput{}, u.fail(ctx, "update order", ErrInvalidStatus)
		}
		next = &s
	}
	if in.EstimatedMinutes != nil && *in.EstimatedMinutes <= 0 {
		return OrderOutput{}, u.fail(ctx, "update order", ErrInvalidEstimate)
	}
	instructions := in.Instructions
	if instructions != nil {
		trimmed := strings.TrimSpace(*instructions)
		instructions = &trimmed
	}

	var (
		out     OrderOutput
		before  model.OrderStatus
		changed bool
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if in.ExpectStatus != nil && *in.ExpectStatus != o.Status {
			return ErrStaleOrder
		}
		before = o.Status

		changes := repo.OrderChanges{
			Instructions:     instructions,
			EstimatedMinutes: in.EstimatedMinutes,
		}
		if next != nil && *next != o.Status {
			if o.Status.Terminal() {
				return ErrOrderClosed
			}
			if !o.Status.CanTransitionTo(*next) {
				return ErrIllegalTransition
			}
			changes.Status = next
			changed = true
		}

		if !changes.Empty() {
			if err := r.Orders().Apply(ctx, orderID, changes); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return ErrOrderNotFound
				}
				return err
			}

			action := model.AuditActionUpdateOrder
			if changed {
				action = model.AuditActionUpdateOrderStatus
			}
			if err := u.audit(ctx, r, actorUserID, action, o, changes); err != nil {
				return err
			}
		}

		updated, items, err := loadOrder(ctx, r, orderID)
		if err != nil {
			return err
		}
		out = toOrderOutput(updated, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, u.fail(ctx, "update order", err)
	}

	if changed {
		u.metrics.StatusChanged(before, model.OrderStatus(out.Status))
		u.publish(ctx, OrderEventStatusChanged, out, before, actorUserID)
	}
	return out, nil
}

// Delete は明細を消してから注文を消す。FKのcascadeには頼らない。
func (u *OrderUsecase) Delete(ctx context.Context, actorUserID int64, orderID int64) error {
	if actorUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var deleted OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, items, err := loadOrder(ctx, r, orderID)
		if err != nil {
			return err
		}

		if err := r.OrderItems().DeleteByOrderID(ctx, orderID); err != nil {
			return err
		}
		if err := r.Orders().Delete(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		beforeJSON, err := json.Marshal(snapshotOf(o))
		if err != nil {
			return err
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionDeleteOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   string(beforeJSON),
			AfterJSON:    "{}",
			CreatedAt:    u.clock.Now().UTC(),
		}); err != nil {
			return err
		}

		deleted = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return u.fail(ctx, "delete order", err)
	}

	u.publish(ctx, OrderEventDeleted, deleted, "", actorUserID)
	return nil
}

func loadOrder(ctx context.Context, r repo.TxRepos, orderID int64) (model.Order, []model.OrderItem, error) {
	o, err := r.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, nil, ErrOrderNotFound
	}
	if err != nil {
		return model.Order{}, nil, err
	}

	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return model.Order{}, nil, err
	}
	return o, items, nil
}

// 監査ログに残す、変更できる項目だけのスナップショット
type orderSnapshot struct {
	Status           model.OrderStatus `json:"status"`
	Instructions     string            `json:"instructions"`
	EstimatedMinutes int               `json:"estimated_minutes"`
}

func snapshotOf(o model.Order) orderSnapshot {
	return orderSnapshot{
		Status:           o.Status,
		Instructions:     o.Instructions,
		EstimatedMinutes: o.EstimatedMinutes,
	}
}

func (u *OrderUsecase) audit(ctx context.Context, r repo.TxRepos, actorUserID int64, action model.AuditAction, o model.Order, changes repo.OrderChanges) error {
	after := snapshotOf(o)
	if changes.Status != nil {
		after.Status = *changes.Status
	}
	if changes.Instructions != nil {
		after.Instructions = *changes.Instructions
	}
	if changes.EstimatedMinutes != nil {
		after.EstimatedMinutes = *changes.EstimatedMinutes
	}

	beforeJSON, err := json.Marshal(snapshotOf(o))
	if err != nil {
		return err
	}
	afterJSON, err := json.Marshal(after)
	if err != nil {
		return err
	}

	return r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   o.ID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    u.clock.Now().UTC(),
	})
}

// publish はコミット後に呼ぶ。失敗してもログだけ。
func (u *OrderUsecase) publish(ctx context.Context, typ string, o OrderOutput, previous model.OrderStatus, actorUserID int64) {
	ev := OrderEvent{
		EventID:        u.ids.NewID(),
		Type:           typ,
		OrderID:        o.ID,
		UserID:         o.UserID,
		LocalID:        o.LocalID,
		Status:         o.Status,
		PreviousStatus: string(previous),
		Total:          o.Total,
		ActorUserID:    actorUserID,
		OccurredAt:     u.clock.Now().UTC(),
	}
	if err := u.events.Publish(ctx, ev); err != nil {
		u.log.WarnContext(ctx, "publish order event failed",
			slog.String("type", typ),
			slog.Int64("order_id", o.ID),
			slog.Any("error", err),
		)
	}
}

// fail はエラーをHTTPErrorにする。5xxだけログに残す。
func (u *OrderUsecase) fail(ctx context.Context, op string, err error) error {
	he := ToHTTPError(err)
	if he.Status >= http.StatusInternalServerError {
		u.log.ErrorContext(ctx, op+" failed",
			slog.Int("status", he.Status),
			slog.Any("error", err),
		)
	}
	return he
}

// メトリクスのラベル用
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrInvariant):
		return "invariant"
	case errors.Is(err, repo.ErrTransient):
		return "store_unavailable"
	default:
		return "internal"
	}
}
