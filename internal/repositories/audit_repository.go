package repositories

import (
	"gorm.io/gorm"

	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/pkg/errors"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(entry *models.AuditLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create audit entry")
	}
	return nil
}

func (r *AuditRepository) ListRecent(limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	result := r.db.Order("created_at DESC, id DESC").Limit(limit).Find(&entries)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list audit entries")
	}
	return entries, nil
}
