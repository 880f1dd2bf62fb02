package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/pkg/errors"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// creditBalance adds amount to the user's balance inside tx.
func creditBalance(tx *gorm.DB, userID uint, amount int64) error {
	result := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("alba_balance", gorm.Expr("alba_balance + ?", amount))
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to credit balance")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "user not found")
	}
	return nil
}

// debitBalance subtracts amount from the user's balance inside tx. The
// balance check and the decrement are one conditional UPDATE, so two
// concurrent spends can never both pass the check and overdraw the account.
func debitBalance(tx *gorm.DB, userID uint, amount int64) error {
	result := tx.Model(&models.User{}).
		Where("id = ? AND alba_balance >= ?", userID, amount).
		Update("alba_balance", gorm.Expr("alba_balance - ?", amount))
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to debit balance")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to look up user")
		}
		if count == 0 {
			return errors.New(errors.ErrCodeNotFound, "user not found")
		}
		return errors.New(errors.ErrCodeInsufficientFunds,
			fmt.Sprintf("insufficient balance for spend of %d", amount))
	}
	return nil
}

func appendTransaction(tx *gorm.DB, rec *models.AlbaTransaction) error {
	if err := tx.Create(rec).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to append transaction")
	}
	return nil
}

// Credit increases the user's balance and appends the ledger entry in one
// database transaction. rec.Amount and rec.UserID are set from the
// arguments; the caller fills type, reason and related fields.
func (r *LedgerRepository) Credit(userID uint, amount int64, rec models.AlbaTransaction) (*models.AlbaTransaction, error) {
	rec.UserID = userID
	rec.Amount = amount
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := creditBalance(tx, userID, amount); err != nil {
			return err
		}
		return appendTransaction(tx, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Debit decreases the user's balance and appends the ledger entry in one
// database transaction. Fails without mutation when the balance does not
// cover the amount.
func (r *LedgerRepository) Debit(userID uint, amount int64, rec models.AlbaTransaction) (*models.AlbaTransaction, error) {
	rec.UserID = userID
	rec.Amount = -amount
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := debitBalance(tx, userID, amount); err != nil {
			return err
		}
		return appendTransaction(tx, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListByUser returns the user's ledger entries, newest first.
func (r *LedgerRepository) ListByUser(userID uint, limit int) ([]models.AlbaTransaction, error) {
	var transactions []models.AlbaTransaction
	result := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&transactions)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list transactions")
	}
	return transactions, nil
}

func (r *LedgerRepository) GetTransaction(id uint) (*models.AlbaTransaction, error) {
	var rec models.AlbaTransaction
	result := r.db.First(&rec, id)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "transaction not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get transaction")
	}
	return &rec, nil
}

func (r *LedgerRepository) GetBalance(userID uint) (int64, error) {
	var user models.User
	result := r.db.Select("alba_balance").First(&user, userID)
	if result.Error == gorm.ErrRecordNotFound {
		return 0, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get balance")
	}
	return user.AlbaBalance, nil
}
