package model

// カタログ側の店舗（local）。plaza に属する。
type Local struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PlazaID   int64  `gorm:"not null;index" json:"plaza_id"`
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	ManagerID *int64 `gorm:"index" json:"manager_id"`
	Status    string `gorm:"type:varchar(20);not null;default:'activo'" json:"status"`
}

func (Local) TableName() string {
	return "locales"
}

// ManagedBy は userID がこの店舗のgerenteかを返す。
func (l Local) ManagedBy(userID int64) bool {
	return l.ManagerID != nil && *l.ManagerID == userID
}
