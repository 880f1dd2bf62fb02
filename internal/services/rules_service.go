package services

import (
	"fmt"

	"github.com/albamarket/alba/internal/config"
	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/internal/repositories"
	"github.com/albamarket/alba/pkg/errors"
)

// RulesService holds the cross-cutting invariant checks the other
// components and the card CRUD layer share.
type RulesService struct {
	userRepo *repositories.UserRepository
	cfg      *config.Config
}

func NewRulesService(userRepo *repositories.UserRepository, cfg *config.Config) *RulesService {
	return &RulesService{userRepo: userRepo, cfg: cfg}
}

// ProvisionUser creates the account record with its starting slot
// allotment. Called by the signup layer once the email is known.
func (s *RulesService) ProvisionUser(email string) (*models.User, error) {
	if email == "" {
		return nil, errors.New(errors.ErrCodeValidation, "email is required")
	}
	user := &models.User{
		Email:      email,
		Role:       models.RoleUser,
		SlotsTotal: s.cfg.BaseSlots,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// AssertVerified fails unless the caller is an authenticated, email-verified
// user.
func (s *RulesService) AssertVerified(user *models.User) error {
	if user == nil {
		return errors.New(errors.ErrCodeUnauthorized, "authentication required")
	}
	if !user.EmailVerified {
		return errors.New(errors.ErrCodeNotVerified, "email address is not verified")
	}
	return nil
}

// ConsumeSlot takes one of the user's listing slots. The used-below-total
// check and the increment are a single conditional update.
func (s *RulesService) ConsumeSlot(userID uint) error {
	return s.userRepo.ConsumeSlot(userID)
}

// EditLimit returns the per-tier edit allowance.
func (s *RulesService) EditLimit(tier string) int {
	if tier == models.CardTierPaid {
		return s.cfg.PaidEditLimit
	}
	return s.cfg.FreeEditLimit
}

// AssertEditAllowed fails once a card has used up its tier's edit
// allowance.
func (s *RulesService) AssertEditAllowed(card *models.Card) error {
	if card == nil {
		return errors.New(errors.ErrCodeValidation, "card is required")
	}
	limit := s.EditLimit(card.Tier)
	if card.EditCount >= limit {
		return errors.New(errors.ErrCodeEditLimitReached,
			fmt.Sprintf("card reached its edit limit of %d", limit))
	}
	return nil
}
