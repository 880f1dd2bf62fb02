package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/albamarket/alba/internal/config"
	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/internal/repositories"
	"github.com/albamarket/alba/pkg/errors"
	"github.com/albamarket/alba/pkg/logger"
)

var entitlementTypes = map[string]bool{
	models.CardTypeProduct: true,
	models.CardTypeService: true,
}

// PurchaseResult carries the outcome of an entitlement purchase. Replayed
// is true when an earlier purchase with the same idempotency key already
// existed; the balance is not debited again in that case.
type PurchaseResult struct {
	Entitlement *models.Entitlement
	Transaction *models.AlbaTransaction
	Replayed    bool
}

type EntitlementService struct {
	entitlementRepo *repositories.EntitlementRepository
	ledgerRepo      *repositories.LedgerRepository
	cfg             *config.Config
}

func NewEntitlementService(
	entitlementRepo *repositories.EntitlementRepository,
	ledgerRepo *repositories.LedgerRepository,
	cfg *config.Config,
) *EntitlementService {
	return &EntitlementService{
		entitlementRepo: entitlementRepo,
		ledgerRepo:      ledgerRepo,
		cfg:             cfg,
	}
}

// Purchase buys one entitlement of the given type for the fixed price. A
// retried call with the same idempotency key returns the original
// entitlement without touching the balance. Callers that omit the key get a
// generated one, which keeps the uniqueness invariant but gives the request
// no replay protection.
func (s *EntitlementService) Purchase(userID uint, entType, idempotencyKey string) (*PurchaseResult, error) {
	if !entitlementTypes[entType] {
		return nil, errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("unknown entitlement type %q", entType))
	}
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	if existing, err := s.entitlementRepo.FindByIdempotencyKey(userID, entType, idempotencyKey); err != nil {
		return nil, err
	} else if existing != nil {
		return s.replay(existing)
	}

	ent, rec, err := s.entitlementRepo.Purchase(userID, entType, idempotencyKey, s.cfg.EntitlementPrice)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeConflict) {
			// A concurrent request with the same key committed first;
			// its result is this request's result.
			existing, findErr := s.entitlementRepo.FindByIdempotencyKey(userID, entType, idempotencyKey)
			if findErr == nil && existing != nil {
				return s.replay(existing)
			}
		}
		return nil, err
	}

	logger.Info("entitlement purchased",
		"user_id", userID, "type", entType, "entitlement_id", ent.ID, "price", s.cfg.EntitlementPrice)
	return &PurchaseResult{Entitlement: ent, Transaction: rec}, nil
}

func (s *EntitlementService) replay(ent *models.Entitlement) (*PurchaseResult, error) {
	res := &PurchaseResult{Entitlement: ent, Replayed: true}
	if ent.RelatedTransactionID != 0 {
		if rec, err := s.ledgerRepo.GetTransaction(ent.RelatedTransactionID); err == nil {
			res.Transaction = rec
		}
	}
	return res, nil
}

// GetAvailable returns the user's unconsumed entitlements, newest first.
func (s *EntitlementService) GetAvailable(userID uint) ([]models.Entitlement, error) {
	return s.entitlementRepo.ListAvailable(userID)
}

// Consume marks an entitlement consumed, exactly once. Called when a card
// is created against it.
func (s *EntitlementService) Consume(entitlementID uint) (*models.Entitlement, error) {
	ent, err := s.entitlementRepo.Consume(entitlementID)
	if err != nil {
		return nil, err
	}
	logger.Info("entitlement consumed", "entitlement_id", ent.ID, "owner_id", ent.OwnerID)
	return ent, nil
}
