package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"foodplaza/internal/domain/model"
	repo "foodplaza/internal/repository"
)

const (
	defaultListLimit = 100
	maxListLimit     = 100
)

// 一覧の条件。空/nilは無視（AND条件）。Limit 0 は既定値。
type ListOrdersInput struct {
	Status  string
	LocalID *int64
	UserID  *int64
	Skip    int
	Limit   int
}

type OrderQueryUsecase struct {
	tx  repo.TransactionManager
	log *slog.Logger
}

func NewOrderQueryUsecase(tx repo.TransactionManager, logger *slog.Logger) *OrderQueryUsecase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &OrderQueryUsecase{tx: tx, log: logger}
}

func (in ListOrdersInput) filter() (repo.OrderListFilter, error) {
	if in.Skip < 0 {
		return repo.OrderListFilter{}, fmt.Errorf("%w: skip=%d", ErrInvalidPagination, in.Skip)
	}
	limit := in.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit < 1 || limit > maxListLimit {
		return repo.OrderListFilter{}, fmt.Errorf("%w: limit=%d", ErrInvalidPagination, in.Limit)
	}

	status := model.OrderStatus(strings.TrimSpace(in.Status))
	if status != "" && !status.Valid() {
		return repo.OrderListFilter{}, ErrInvalidStatus
	}

	return repo.OrderListFilter{
		Status:  status,
		LocalID: in.LocalID,
		UserID:  in.UserID,
		Offset:  in.Skip,
		Limit:   limit,
	}, nil
}

// List は条件にすべて合う注文を id 昇順で返す。
func (q *OrderQueryUsecase) List(ctx context.Context, in ListOrdersInput) ([]OrderOutput, error) {
	f, err := in.filter()
	if err != nil {
		return []OrderOutput{}, ToHTTPError(err)
	}

	var outs []OrderOutput

	err = q.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		outs, err = listOrders(ctx, r, f)
		return err
	})
	if err != nil {
		return []OrderOutput{}, q.fail(ctx, err)
	}
	return outs, nil
}

// ListByLocal は店舗の存在を確認してから、その店舗の注文を返す。
func (q *OrderQueryUsecase) ListByLocal(ctx context.Context, localID int64, in ListOrdersInput) ([]OrderOutput, error) {
	in.LocalID = &localID
	f, err := in.filter()
	if err != nil {
		return []OrderOutput{}, ToHTTPError(err)
	}

	var outs []OrderOutput

	err = q.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Locals().FindByID(ctx, localID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrLocalNotFound
			}
			return err
		}
		var err error
		outs, err = listOrders(ctx, r, f)
		return err
	})
	if err != nil {
		return []OrderOutput{}, q.fail(ctx, err)
	}
	return outs, nil
}

// Local は権限チェック用に店舗を返す。
func (q *OrderQueryUsecase) Local(ctx context.Context, localID int64) (model.Local, error) {
	if localID <= 0 {
		return model.Local{}, NewHTTPError(http.StatusBadRequest, "invalid local_id")
	}

	var l model.Local

	err := q.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		l, err = r.Locals().FindByID(ctx, localID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrLocalNotFound
		}
		return err
	})
	if err != nil {
		return model.Local{}, q.fail(ctx, err)
	}
	return l, nil
}

// 監査履歴のページ指定。Limit 0 は既定値。
type AuditTrailInput struct {
	Skip  int
	Limit int
}

// AuditTrail は注文の監査ログを古い順に返す。削除済みの注文でも履歴は残る。
func (q *OrderQueryUsecase) AuditTrail(ctx context.Context, orderID int64, in AuditTrailInput) ([]AuditEntryOutput, error) {
	if orderID <= 0 {
		return []AuditEntryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	// 一覧と同じ skip/limit の規則
	f, err := ListOrdersInput{Skip: in.Skip, Limit: in.Limit}.filter()
	if err != nil {
		return []AuditEntryOutput{}, ToHTTPError(err)
	}

	outs := []AuditEntryOutput{}

	err = q.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		logs, err := r.AuditLogs().List(ctx, repo.AuditLogFilter{
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			Offset:       f.Offset,
			Limit:        f.Limit,
		})
		if err != nil {
			return err
		}
		for _, l := range logs {
			outs = append(outs, toAuditEntryOutput(l))
		}
		return nil
	})
	if err != nil {
		return []AuditEntryOutput{}, q.fail(ctx, err)
	}
	return outs, nil
}

func listOrders(ctx context.Context, r repo.TxRepos, f repo.OrderListFilter) ([]OrderOutput, error) {
	orders, err := r.Orders().List(ctx, f)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	itemsByOrder, err := r.OrderItems().ListByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o, itemsByOrder[o.ID]))
	}
	return outs, nil
}

func (q *OrderQueryUsecase) fail(ctx context.Context, err error) error {
	he := ToHTTPError(err)
	if he.Status >= http.StatusInternalServerError {
		q.log.ErrorContext(ctx, "order query failed",
			slog.Int("status", he.Status),
			slog.Any("error", err),
		)
	}
	return he
}
