package repositories

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/albamarket/alba/internal/models"
)

var testUserSeq atomic.Uint64

// setupTestDB creates an isolated in-memory SQLite database migrated with
// the full schema. A single connection keeps the in-memory database shared
// between the goroutines of concurrency tests.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
		&models.User{},
		&models.AlbaTransaction{},
		&models.Code{},
		&models.CodeUsage{},
		&models.Entitlement{},
		&models.Card{},
		&models.AuditLog{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, balance int64) *models.User {
	t.Helper()

	user := &models.User{
		Email:       fmt.Sprintf("user%d@example.com", testUserSeq.Add(1)),
		Role:        models.RoleUser,
		AlbaBalance: balance,
		SlotsTotal:  2,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestCode(t *testing.T, db *gorm.DB, kind string, expiresAt *time.Time) *models.Code {
	t.Helper()

	code := &models.Code{
		Code:        fmt.Sprintf("SLOT-test%d", testUserSeq.Add(1)),
		Kind:        kind,
		Type:        models.CardTypeProduct,
		Status:      models.CodeStatusActive,
		ExpiresAt:   expiresAt,
		CreatedByID: 1,
	}
	require.NoError(t, db.Create(code).Error)
	return code
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return &user
}

func countTransactions(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.AlbaTransaction{}).
		Where("user_id = ?", userID).Count(&count).Error)
	return count
}
