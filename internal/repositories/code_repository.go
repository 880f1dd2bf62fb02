package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/pkg/errors"
)

type CodeRepository struct {
	db *gorm.DB
}

func NewCodeRepository(db *gorm.DB) *CodeRepository {
	return &CodeRepository{db: db}
}

func (r *CodeRepository) CreateBatch(codes []models.Code) error {
	if err := r.db.Create(&codes).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create codes")
	}
	return nil
}

func (r *CodeRepository) Create(code *models.Code) error {
	if err := r.db.Create(code).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create code")
	}
	return nil
}

func (r *CodeRepository) FindByValue(value string) (*models.Code, error) {
	var code models.Code
	result := r.db.Where("code = ?", value).First(&code)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "code not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to find code")
	}
	return &code, nil
}

// MarkExpired flips an active code to expired. Write-once: a code that was
// already redeemed or expired is left untouched.
func (r *CodeRepository) MarkExpired(codeID uint) error {
	result := r.db.Model(&models.Code{}).
		Where("id = ? AND status = ?", codeID, models.CodeStatusActive).
		Update("status", models.CodeStatusExpired)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to expire code")
	}
	return nil
}

// markUsed performs the compare-and-swap transition active -> used inside
// tx. Zero rows affected means a concurrent redeemer won the race.
func markUsed(tx *gorm.DB, codeID, userID uint, now time.Time) error {
	result := tx.Model(&models.Code{}).
		Where("id = ? AND status = ?", codeID, models.CodeStatusActive).
		Updates(map[string]interface{}{
			"status":     models.CodeStatusUsed,
			"used_by_id": userID,
			"used_at":    now,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to redeem code")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeConflict, "code was redeemed by another request")
	}
	return nil
}

// RedeemSlot marks the code used, records the usage and raises the user's
// slot total by one, all in one database transaction.
func (r *CodeRepository) RedeemSlot(code *models.Code, userID uint, ip, userAgent string) (*models.Code, error) {
	now := time.Now().UTC()
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := markUsed(tx, code.ID, userID, now); err != nil {
			return err
		}

		usage := models.CodeUsage{
			UserID:    userID,
			CodeID:    code.ID,
			Kind:      code.Kind,
			Type:      code.Type,
			IP:        ip,
			UserAgent: userAgent,
		}
		if err := tx.Create(&usage).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeConflict, "code already used by this user")
		}

		result := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("slots_total", gorm.Expr("slots_total + 1"))
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to raise slot total")
		}
		if result.RowsAffected == 0 {
			return errors.New(errors.ErrCodeNotFound, "user not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.reload(code.ID)
}

// ConsumeActivation marks the code used, records the usage and flips the
// bound card to the paid tier, all in one database transaction.
func (r *CodeRepository) ConsumeActivation(code *models.Code, userID uint, ip, userAgent string) (*models.Code, error) {
	now := time.Now().UTC()
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := markUsed(tx, code.ID, userID, now); err != nil {
			return err
		}

		usage := models.CodeUsage{
			UserID:    userID,
			CodeID:    code.ID,
			Kind:      code.Kind,
			Type:      code.Type,
			IP:        ip,
			UserAgent: userAgent,
			CardID:    code.CardID,
		}
		if err := tx.Create(&usage).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeConflict, "code already used by this user")
		}

		result := tx.Model(&models.Card{}).
			Where("id = ?", *code.CardID).
			Update("tier", models.CardTierPaid)
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to activate card")
		}
		if result.RowsAffected == 0 {
			return errors.New(errors.ErrCodeNotFound, "bound card not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.reload(code.ID)
}

func (r *CodeRepository) reload(codeID uint) (*models.Code, error) {
	var code models.Code
	if err := r.db.First(&code, codeID).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to reload code")
	}
	return &code, nil
}
