package services

import (
	"fmt"

	"github.com/albamarket/alba/internal/config"
	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/internal/repositories"
	"github.com/albamarket/alba/internal/security"
	"github.com/albamarket/alba/pkg/errors"
	"github.com/albamarket/alba/pkg/logger"
)

// spendReasons is the fixed allow-list of reasons a spend may carry. Any
// other reason is rejected before the store is touched.
var spendReasons = map[string]bool{
	models.ReasonCardEntitlementPurchase: true,
	models.ReasonAdminGrant:              true,
	models.ReasonManualAdjustment:        true,
}

// adminReasons are the reasons recorded as type "grant" rather than "earn".
var adminReasons = map[string]bool{
	models.ReasonAdminGrant:       true,
	models.ReasonManualAdjustment: true,
}

type LedgerService struct {
	ledgerRepo *repositories.LedgerRepository
	userRepo   *repositories.UserRepository
	auditRepo  *repositories.AuditRepository
	cfg        *config.Config
}

func NewLedgerService(
	ledgerRepo *repositories.LedgerRepository,
	userRepo *repositories.UserRepository,
	auditRepo *repositories.AuditRepository,
	cfg *config.Config,
) *LedgerService {
	return &LedgerService{
		ledgerRepo: ledgerRepo,
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		cfg:        cfg,
	}
}

// GrantAlba increments the user's balance and appends the matching ledger
// entry. When actorID is set the grant is an administrative action and an
// audit entry is written as well.
func (s *LedgerService) GrantAlba(userID uint, amount int64, reason string, actorID *uint) (*models.User, error) {
	if amount <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "grant amount must be positive")
	}
	if reason == "" {
		return nil, errors.New(errors.ErrCodeValidation, "grant reason is required")
	}

	txType := models.TxTypeEarn
	if adminReasons[reason] {
		txType = models.TxTypeGrant
	}

	rec := models.AlbaTransaction{
		Type:          txType,
		Reason:        reason,
		RelatedUserID: actorID,
	}
	if _, err := s.ledgerRepo.Credit(userID, amount, rec); err != nil {
		return nil, err
	}

	if actorID != nil {
		entry := &models.AuditLog{
			ActorID:      *actorID,
			Action:       models.AuditActionGrantAlba,
			TargetUserID: &userID,
			Amount:       amount,
			Detail:       security.SanitizeText(fmt.Sprintf("reason=%s", reason)),
		}
		if err := s.auditRepo.Create(entry); err != nil {
			logger.Error("failed to write audit entry for grant",
				"actor_id", *actorID, "user_id", userID, "error", err)
		}
	}

	logger.Info("alba granted", "user_id", userID, "amount", amount, "reason", reason)
	return s.userRepo.GetByID(userID)
}

// SpendAlba debits the user's balance after checking the reason against the
// allow-list. The balance check and the decrement are one atomic
// conditional update in the repository.
func (s *LedgerService) SpendAlba(userID uint, amount int64, reason, relatedCardType string, relatedCardID *uint) (*models.User, error) {
	if !spendReasons[reason] {
		return nil, errors.New(errors.ErrCodeForbidden,
			fmt.Sprintf("spend reason %q is not allowed", reason))
	}
	if amount <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "spend amount must be positive")
	}

	rec := models.AlbaTransaction{
		Type:            models.TxTypeSpend,
		Reason:          reason,
		RelatedCardType: relatedCardType,
		RelatedCardID:   relatedCardID,
	}
	if _, err := s.ledgerRepo.Debit(userID, amount, rec); err != nil {
		return nil, err
	}

	logger.Info("alba spent", "user_id", userID, "amount", amount, "reason", reason)
	return s.userRepo.GetByID(userID)
}

const (
	defaultTransactionPage = 50
	maxTransactionPage     = 200
)

// ListTransactions returns one bounded page of the user's ledger, newest
// first.
func (s *LedgerService) ListTransactions(userID uint, limit int) ([]models.AlbaTransaction, error) {
	if limit <= 0 {
		limit = defaultTransactionPage
	}
	if limit > maxTransactionPage {
		limit = maxTransactionPage
	}
	return s.ledgerRepo.ListByUser(userID, limit)
}

func (s *LedgerService) GetBalance(userID uint) (int64, error) {
	return s.ledgerRepo.GetBalance(userID)
}
