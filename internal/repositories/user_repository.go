package repositories

import (
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/pkg/errors"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Wrap(err, errors.ErrCodeAlreadyExists, "email is already registered")
		}
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create user")
	}
	return nil
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	result := r.db.First(&user, id)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get user")
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	result := r.db.Where("email = ?", email).First(&user)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get user")
	}
	return &user, nil
}

// ConsumeSlot increments slots_used only while it is below slots_total.
// The comparison and the increment are one conditional UPDATE.
func (r *UserRepository) ConsumeSlot(userID uint) error {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND slots_used < slots_total", userID).
		Update("slots_used", gorm.Expr("slots_used + 1"))
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to consume slot")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to look up user")
		}
		if count == 0 {
			return errors.New(errors.ErrCodeNotFound, "user not found")
		}
		return errors.New(errors.ErrCodeSlotLimitReached, "all listing slots are in use")
	}
	return nil
}
