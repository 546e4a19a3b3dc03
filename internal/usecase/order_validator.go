package usecase

import (
	"context"
	"errors"
	"fmt"

	repo "foodplaza/internal/repository"

	"github.com/shopspring/decimal"
)

// 申告価格の扱い
type PricePolicy string

const (
	// 申告価格は無視してカタログ価格をスナップショットにする
	PriceFromCatalog PricePolicy = "catalog"
	// 申告価格がカタログ価格と違えば ErrPriceMismatch
	PriceMustMatch PricePolicy = "strict"
)

// クライアントが送ってきた明細1行。
type ProposedItem struct {
	ProductID    int64
	Quantity     int64
	UnitPrice    *decimal.Decimal // 任意。PriceMustMatch のときだけ見る
	Instructions string
}

// 検証済みの明細。UnitPrice をそのまま保存する。
type ValidatedItem struct {
	ProductID    int64
	ProductName  string
	Quantity     int64
	UnitPrice    decimal.Decimal
	Instructions string
}

// 検証に使うカタログ。TxRepos がそのまま満たす。
type Catalog interface {
	Locals() repo.LocalRepository
	Products() repo.ProductRepository
}

type OrderValidator struct {
	policy PricePolicy
}

func NewOrderValidator(policy PricePolicy) *OrderValidator {
	if policy == "" {
		policy = PriceFromCatalog
	}
	return &OrderValidator{policy: policy}
}

// Validate は店舗と各明細をカタログと突き合わせる。読むだけで書き込みはしない。
// 店舗 -> 明細の有無 -> 明細ごと（数量・存在・販売中・価格）の順に見て、最初の失敗を返す。
func (v *OrderValidator) Validate(ctx context.Context, catalog Catalog, localID int64, items []ProposedItem) ([]ValidatedItem, error) {
	if _, err := catalog.Locals().FindByID(ctx, localID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: local_id=%d", ErrLocalNotFound, localID)
		}
		return nil, err
	}

	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	out := make([]ValidatedItem, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product_id=%d", ErrInvalidQuantity, it.ProductID)
		}

		p, err := catalog.Products().FindByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, fmt.Errorf("%w: product_id=%d", ErrProductNotFound, it.ProductID)
			}
			return nil, err
		}

		if !p.Available {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, p.Name)
		}

		if v.policy == PriceMustMatch && it.UnitPrice != nil && !it.UnitPrice.Equal(p.Price) {
			return nil, fmt.Errorf("%w: %s", ErrPriceMismatch, p.Name)
		}

		out = append(out, ValidatedItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Quantity:     it.Quantity,
			UnitPrice:    p.Price.Round(2),
			Instructions: it.Instructions,
		})
	}
	return out, nil
}
