package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/pkg/errors"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// SetBinding assigns the referrer exactly once. The write is conditioned on
// referred_by_id still being NULL, so a second call can never overwrite the
// first binding.
func (r *ReferralRepository) SetBinding(userID, referrerID uint) (*models.User, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND referred_by_id IS NULL", userID).
		Update("referred_by_id", referrerID)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to set referral binding")
	}
	if result.RowsAffected == 0 {
		var user models.User
		if err := r.db.First(&user, userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errors.New(errors.ErrCodeNotFound, "user not found")
			}
			return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to look up user")
		}
		return nil, errors.New(errors.ErrCodeAlreadySet, "referrer is already assigned")
	}

	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to reload user")
	}
	return &user, nil
}

// GrantBonusPair pays the one-time referral bonus to both sides. The
// ref_bonus_granted flag is claimed with a conditional update inside the
// same transaction as the two credits, so concurrent callers cannot both
// pay. Returns whether this call performed the grant.
func (r *ReferralRepository) GrantBonusPair(userID, referrerID uint, referrerAmount, referredAmount int64) (bool, error) {
	eventID := uuid.NewString()
	granted := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// The flag and the ledger can only disagree if a past grant was
		// interrupted between commit and flag write on a store without
		// transactions. If the ledger already has the bonus, just repair
		// the flag.
		var existing int64
		err := tx.Model(&models.AlbaTransaction{}).
			Where("type = ? AND reason = ? AND related_user_id = ?",
				models.TxTypeEarn, models.ReasonReferralBonus, userID).
			Count(&existing).Error
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to check existing bonus")
		}
		if existing > 0 {
			return setBonusGrantedFlag(tx, userID)
		}

		result := tx.Model(&models.User{}).
			Where("id = ? AND ref_bonus_granted = ?", userID, false).
			Update("ref_bonus_granted", true)
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to claim bonus flag")
		}
		if result.RowsAffected == 0 {
			// Another caller claimed the bonus first.
			return nil
		}

		if err := creditBalance(tx, referrerID, referrerAmount); err != nil {
			return err
		}
		referrerRec := models.AlbaTransaction{
			UserID:        referrerID,
			Amount:        referrerAmount,
			Type:          models.TxTypeEarn,
			Reason:        models.ReasonReferralBonus,
			RelatedUserID: &userID,
			EventID:       eventID,
			Description:   "referral bonus",
		}
		if err := appendTransaction(tx, &referrerRec); err != nil {
			return err
		}

		if err := creditBalance(tx, userID, referredAmount); err != nil {
			return err
		}
		referredRec := models.AlbaTransaction{
			UserID:        userID,
			Amount:        referredAmount,
			Type:          models.TxTypeEarn,
			Reason:        models.ReasonReferredUserBonus,
			RelatedUserID: &referrerID,
			EventID:       eventID,
			Description:   "referred user bonus",
		}
		if err := appendTransaction(tx, &referredRec); err != nil {
			return err
		}

		granted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return granted, nil
}

func setBonusGrantedFlag(tx *gorm.DB, userID uint) error {
	err := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("ref_bonus_granted", true).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to set bonus flag")
	}
	return nil
}

// Stats returns how many referred users earned this user a bonus and the
// total ALBA those bonuses added up to.
func (r *ReferralRepository) Stats(userID uint) (count int64, total int64, err error) {
	row := r.db.Model(&models.AlbaTransaction{}).
		Select("COUNT(*), COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND reason = ?", userID, models.ReasonReferralBonus).
		Row()
	if scanErr := row.Scan(&count, &total); scanErr != nil {
		return 0, 0, errors.Wrap(scanErr, errors.ErrCodeInternalError, "failed to compute referral stats")
	}
	return count, total, nil
}
