// Package testutil はテスト用のDBとシードデータを用意する。
package testutil

import (
	"testing"
	"time"

	"foodplaza/internal/domain/model"
	"foodplaza/internal/infra/db"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB はテストごとに独立したインメモリSQLiteを開いてマイグレーションまで済ませる。
// 接続は1本に絞るので、トランザクション中に別接続で読むことはない。
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gormDB); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gormDB
}

func SeedLocal(t *testing.T, gormDB *gorm.DB, managerID *int64) model.Local {
	t.Helper()
	l := model.Local{PlazaID: 1, Name: "Tacos El Güero", ManagerID: managerID, Status: "activo"}
	if err := gormDB.Create(&l).Error; err != nil {
		t.Fatalf("seed local: %v", err)
	}
	return l
}

func SeedProduct(t *testing.T, gormDB *gorm.DB, name string, price string, available bool) model.Product {
	t.Helper()
	p := model.Product{MenuID: 1, Name: name, Price: decimal.RequireFromString(price), Available: true}
	if err := gormDB.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	// default:true のため false はゼロ値扱いで無視される。別途更新する。
	if !available {
		if err := gormDB.Model(&model.Product{}).Where("id = ?", p.ID).Update("available", false).Error; err != nil {
			t.Fatalf("seed product availability: %v", err)
		}
		p.Available = false
	}
	return p
}

func SeedUser(t *testing.T, gormDB *gorm.DB, email string, role model.Role, passwordHash string) model.User {
	t.Helper()
	u := model.User{Email: email, Name: email, PasswordHash: passwordHash, Role: role, IsActive: true}
	if err := gormDB.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// MakeJWT は AuthJWT が受け付ける形のアクセストークンを作る。
func MakeJWT(t *testing.T, secret string, sub int64, role model.Role, tv int) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  sub,
		"role": string(role),
		"tv":   tv,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}
