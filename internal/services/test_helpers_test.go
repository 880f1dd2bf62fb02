package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/albamarket/alba/internal/config"
	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/internal/repositories"
	"github.com/albamarket/alba/pkg/logger"
)

var testEmailSeq atomic.Uint64

func init() {
	logger.Init()
}

// env is the full wired core: every service over one in-memory database.
type env struct {
	db          *gorm.DB
	cfg         *config.Config
	ledger      *LedgerService
	codes       *CodeService
	entitlement *EntitlementService
	referral    *ReferralService
	rules       *RulesService
}

func newTestConfig() *config.Config {
	return &config.Config{
		AppEnv:            "development",
		EntitlementPrice:  30,
		ReferrerBonus:     10,
		ReferredUserBonus: 5,
		FreeEditLimit:     3,
		PaidEditLimit:     5,
		BaseSlots:         2,
		CodeTokenLength:   24,
	}
}

func setupEnv(t *testing.T) *env {
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

	cfg := newTestConfig()
	ledgerRepo := repositories.NewLedgerRepository(db)
	userRepo := repositories.NewUserRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	codeRepo := repositories.NewCodeRepository(db)
	cardRepo := repositories.NewCardRepository(db)
	entitlementRepo := repositories.NewEntitlementRepository(db)
	referralRepo := repositories.NewReferralRepository(db)

	return &env{
		db:          db,
		cfg:         cfg,
		ledger:      NewLedgerService(ledgerRepo, userRepo, auditRepo, cfg),
		codes:       NewCodeService(codeRepo, cardRepo, auditRepo, cfg),
		entitlement: NewEntitlementService(entitlementRepo, ledgerRepo, cfg),
		referral:    NewReferralService(referralRepo, userRepo, cfg),
		rules:       NewRulesService(userRepo, cfg),
	}
}

func (e *env) createUser(t *testing.T, balance int64, verified bool) *models.User {
	t.Helper()

	user := &models.User{
		Email:         fmt.Sprintf("user%d@example.com", testEmailSeq.Add(1)),
		Role:          models.RoleUser,
		EmailVerified: verified,
		AlbaBalance:   balance,
		SlotsTotal:    e.cfg.BaseSlots,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *env) createAdmin(t *testing.T) *models.User {
	t.Helper()

	admin := &models.User{
		Email:         fmt.Sprintf("admin%d@example.com", testEmailSeq.Add(1)),
		Role:          models.RoleAdmin,
		EmailVerified: true,
	}
	require.NoError(t, e.db.Create(admin).Error)
	return admin
}

func (e *env) reloadUser(t *testing.T, id uint) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, e.db.First(&user, id).Error)
	return &user
}
