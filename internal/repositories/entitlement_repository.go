package repositories

import (
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/pkg/errors"
)

type EntitlementRepository struct {
	db *gorm.DB
}

func NewEntitlementRepository(db *gorm.DB) *EntitlementRepository {
	return &EntitlementRepository{db: db}
}

// FindByIdempotencyKey returns the entitlement for (owner, type, key), or
// nil when none exists.
func (r *EntitlementRepository) FindByIdempotencyKey(ownerID uint, entType, key string) (*models.Entitlement, error) {
	var ent models.Entitlement
	result := r.db.Where("owner_id = ? AND type = ? AND idempotency_key = ?", ownerID, entType, key).
		First(&ent)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to find entitlement")
	}
	return &ent, nil
}

// Purchase debits the price, appends the spend ledger entry and creates the
// entitlement as one unit of work. Either all three happen or none do. A
// unique-key violation on the entitlement means a concurrent purchase with
// the same idempotency key committed first; the whole unit rolls back and
// the caller re-reads the winner's row.
func (r *EntitlementRepository) Purchase(ownerID uint, entType, key string, price int64) (*models.Entitlement, *models.AlbaTransaction, error) {
	eventID := uuid.NewString()
	var ent models.Entitlement
	var rec models.AlbaTransaction

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := debitBalance(tx, ownerID, price); err != nil {
			return err
		}

		rec = models.AlbaTransaction{
			UserID:          ownerID,
			Amount:          -price,
			Type:            models.TxTypeSpend,
			Reason:          models.ReasonCardEntitlementPurchase,
			RelatedCardType: entType,
			EventID:         eventID,
			Description:     "entitlement purchase",
		}
		if err := appendTransaction(tx, &rec); err != nil {
			return err
		}

		ent = models.Entitlement{
			OwnerID:              ownerID,
			Type:                 entType,
			Status:               models.EntitlementStatusAvailable,
			Source:               models.EntitlementSourcePurchase,
			IdempotencyKey:       key,
			EventID:              eventID,
			RelatedTransactionID: rec.ID,
		}
		if err := tx.Create(&ent).Error; err != nil {
			if stderrors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.Wrap(err, errors.ErrCodeConflict, "purchase already recorded for this key")
			}
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create entitlement")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &ent, &rec, nil
}

// ListAvailable returns the owner's unconsumed entitlements, newest first.
func (r *EntitlementRepository) ListAvailable(ownerID uint) ([]models.Entitlement, error) {
	var entitlements []models.Entitlement
	result := r.db.Where("owner_id = ? AND status = ?", ownerID, models.EntitlementStatusAvailable).
		Order("created_at DESC, id DESC").
		Find(&entitlements)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list entitlements")
	}
	return entitlements, nil
}

// Consume performs the compare-and-swap transition available -> consumed.
func (r *EntitlementRepository) Consume(id uint) (*models.Entitlement, error) {
	result := r.db.Model(&models.Entitlement{}).
		Where("id = ? AND status = ?", id, models.EntitlementStatusAvailable).
		Updates(map[string]interface{}{
			"status":      models.EntitlementStatusConsumed,
			"consumed_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to consume entitlement")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Entitlement{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to look up entitlement")
		}
		if count == 0 {
			return nil, errors.New(errors.ErrCodeNotFound, "entitlement not found")
		}
		return nil, errors.New(errors.ErrCodeAlreadyConsumed, "entitlement already consumed")
	}

	var ent models.Entitlement
	if err := r.db.First(&ent, id).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to reload entitlement")
	}
	return &ent, nil
}
