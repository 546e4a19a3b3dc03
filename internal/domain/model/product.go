package model

import "github.com/shopspring/decimal"

// カタログ側の商品（producto）。このサービスからは読むだけ。
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	MenuID      int64           `gorm:"not null;index" json:"menu_id"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Available   bool            `gorm:"not null;default:true" json:"available"`
	Category    string          `gorm:"type:varchar(50)" json:"category"`
}
