package shop

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/minimall/minimall/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupDB opens a fresh in-memory database. Pool size is pinned to one
// connection so concurrent transactions serialize instead of hitting
// SQLITE_BUSY; on postgres the same serialization comes from row locks.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupDB(t)
	return NewService(db), db
}

func seedProduct(t *testing.T, db *gorm.DB, id int64, name string, price int64, stock int) {
	t.Helper()
	now := time.Now()
	require.NoError(t, db.Create(&domain.Product{
		ID:        id,
		Name:      name,
		Category:  "test",
		Price:     price,
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error)
}

func productStock(t *testing.T, db *gorm.DB, id int64) int {
	t.Helper()
	var p domain.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func ctx() context.Context {
	return context.Background()
}
