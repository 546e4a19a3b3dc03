package model

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "gerente"
	RoleCustomer  Role = "cliente"
	RoleDeliverer Role = "repartidor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCustomer, RoleDeliverer:
		return true
	}
	return false
}

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;not null"`
	Name         string `gorm:"type:varchar(100);not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'cliente'"`
	TokenVersion int    `gorm:"not null;default:0"`
	IsActive     bool   `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
