package repositories

import (
	"gorm.io/gorm"

	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/pkg/errors"
)

type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) GetByID(id uint) (*models.Card, error) {
	var card models.Card
	result := r.db.First(&card, id)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "card not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get card")
	}
	return &card, nil
}

func (r *CardRepository) Create(card *models.Card) error {
	if err := r.db.Create(card).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create card")
	}
	return nil
}

// IncrementEditCount bumps the edit counter after a successful edit. The
// per-tier limit check happens in the rules gate before the edit runs.
func (r *CardRepository) IncrementEditCount(cardID uint) error {
	result := r.db.Model(&models.Card{}).
		Where("id = ?", cardID).
		Update("edit_count", gorm.Expr("edit_count + 1"))
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to increment edit count")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "card not found")
	}
	return nil
}
