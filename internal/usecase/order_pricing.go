package usecase

import "github.com/shopspring/decimal"

// 調理時間の見積もり: 基本30分 + 明細1行につき5分
const (
	baseMinutes    = 30
	minutesPerItem = 5
)

// PriceOrder は合計金額（小数2桁）と調理時間の見積もり（分）を返す。
func PriceOrder(items []ValidatedItem) (decimal.Decimal, int, error) {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}
	total = total.Round(2)

	if !total.IsPositive() {
		return decimal.Decimal{}, 0, ErrInvalidTotal
	}

	return total, EstimateMinutes(len(items)), nil
}

func EstimateMinutes(lines int) int {
	return baseMinutes + minutesPerItem*lines
}
