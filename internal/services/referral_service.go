package services

import (
	"github.com/albamarket/alba/internal/config"
	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/internal/repositories"
	"github.com/albamarket/alba/pkg/errors"
	"github.com/albamarket/alba/pkg/logger"
)

type ReferralStats struct {
	SuccessfulReferrals    int64
	TotalAlbaFromReferrals int64
	ReferralBonusAmount    int64
}

type ReferralService struct {
	referralRepo *repositories.ReferralRepository
	userRepo     *repositories.UserRepository
	cfg          *config.Config
}

func NewReferralService(
	referralRepo *repositories.ReferralRepository,
	userRepo *repositories.UserRepository,
	cfg *config.Config,
) *ReferralService {
	return &ReferralService{
		referralRepo: referralRepo,
		userRepo:     userRepo,
		cfg:          cfg,
	}
}

// SetReferralBinding assigns the referrer to a user, at most once. The
// binding is immutable: a second call fails and leaves the first binding
// in place.
func (s *ReferralService) SetReferralBinding(userID, referrerID uint) (*models.User, error) {
	if userID == referrerID {
		return nil, errors.New(errors.ErrCodeSelfReferral, "users cannot refer themselves")
	}
	if _, err := s.userRepo.GetByID(referrerID); err != nil {
		return nil, err
	}

	user, err := s.referralRepo.SetBinding(userID, referrerID)
	if err != nil {
		return nil, err
	}

	logger.Info("referral binding set", "user_id", userID, "referrer_id", referrerID)
	return user, nil
}

// GrantReferralBonusIfEligible pays the one-time referral bonus once the
// referred user is verified. Idempotent: repeated calls and concurrent
// calls produce exactly one bonus pair.
func (s *ReferralService) GrantReferralBonusIfEligible(userID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if !user.EmailVerified || user.ReferredByID == nil || user.RefBonusGranted {
		return nil
	}
	// Unreachable when bindings go through SetReferralBinding, which
	// rejects self-referrals.
	if *user.ReferredByID == user.ID {
		return nil
	}

	granted, err := s.referralRepo.GrantBonusPair(
		user.ID, *user.ReferredByID, s.cfg.ReferrerBonus, s.cfg.ReferredUserBonus)
	if err != nil {
		return err
	}
	if granted {
		logger.Info("referral bonus granted",
			"user_id", user.ID, "referrer_id", *user.ReferredByID,
			"referrer_bonus", s.cfg.ReferrerBonus, "referred_bonus", s.cfg.ReferredUserBonus)
	}
	return nil
}

// GetReferralStats derives the user's referral performance from the ledger.
func (s *ReferralService) GetReferralStats(userID uint) (*ReferralStats, error) {
	count, total, err := s.referralRepo.Stats(userID)
	if err != nil {
		return nil, err
	}
	return &ReferralStats{
		SuccessfulReferrals:    count,
		TotalAlbaFromReferrals: total,
		ReferralBonusAmount:    s.cfg.ReferrerBonus,
	}, nil
}
