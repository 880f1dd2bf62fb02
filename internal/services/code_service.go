package services

import (
	"fmt"
	"time"

	"github.com/albamarket/alba/internal/config"
	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/internal/repositories"
	"github.com/albamarket/alba/internal/security"
	"github.com/albamarket/alba/pkg/errors"
	"github.com/albamarket/alba/pkg/logger"
	"github.com/albamarket/alba/pkg/utils"
)

var codeCardTypes = map[string]bool{
	models.CardTypeProduct: true,
	models.CardTypeService: true,
	models.CardTypeBanner:  true,
}

type CodeService struct {
	codeRepo  *repositories.CodeRepository
	cardRepo  *repositories.CardRepository
	auditRepo *repositories.AuditRepository
	cfg       *config.Config
}

func NewCodeService(
	codeRepo *repositories.CodeRepository,
	cardRepo *repositories.CardRepository,
	auditRepo *repositories.AuditRepository,
	cfg *config.Config,
) *CodeService {
	return &CodeService{
		codeRepo:  codeRepo,
		cardRepo:  cardRepo,
		auditRepo: auditRepo,
		cfg:       cfg,
	}
}

// CreateCodes generates count single-use slot codes with crypto-random
// tokens. All codes start active.
func (s *CodeService) CreateCodes(count int, kind, cardType string, expiresAt *time.Time, createdBy uint) ([]models.Code, error) {
	if count <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "code count must be positive")
	}
	if kind != models.CodeKindSlot && kind != models.CodeKindPaymentActivation {
		return nil, errors.New(errors.ErrCodeValidation, fmt.Sprintf("unknown code kind %q", kind))
	}
	if !codeCardTypes[cardType] {
		return nil, errors.New(errors.ErrCodeValidation, fmt.Sprintf("unknown card type %q", cardType))
	}

	codes := make([]models.Code, count)
	for i := range codes {
		codes[i] = models.Code{
			Code:        s.newToken(kind),
			Kind:        kind,
			Type:        cardType,
			Status:      models.CodeStatusActive,
			ExpiresAt:   expiresAt,
			CreatedByID: createdBy,
		}
	}
	if err := s.codeRepo.CreateBatch(codes); err != nil {
		return nil, err
	}

	entry := &models.AuditLog{
		ActorID: createdBy,
		Action:  models.AuditActionCreateCodes,
		Amount:  int64(count),
		Detail:  security.SanitizeText(fmt.Sprintf("kind=%s type=%s", kind, cardType)),
	}
	if err := s.auditRepo.Create(entry); err != nil {
		logger.Error("failed to write audit entry for code batch", "actor_id", createdBy, "error", err)
	}

	logger.Info("codes created", "count", count, "kind", kind, "type", cardType, "created_by", createdBy)
	return codes, nil
}

// RedeemSlotCode redeems a slot code for the calling user, raising their
// slot total by one. Exactly one concurrent caller can win an active code;
// everyone else gets a conflict.
func (s *CodeService) RedeemSlotCode(user *models.User, codeValue, ip, userAgent string) (*models.Code, error) {
	if user == nil {
		return nil, errors.New(errors.ErrCodeUnauthorized, "authentication required")
	}

	code, err := s.checkRedeemable(codeValue, models.CodeKindSlot)
	if err != nil {
		return nil, err
	}

	redeemed, err := s.codeRepo.RedeemSlot(code, user.ID,
		security.SanitizeString(ip), security.SanitizeText(userAgent))
	if err != nil {
		return nil, err
	}

	logger.Info("slot code redeemed", "user_id", user.ID, "code_id", code.ID)
	return redeemed, nil
}

// IssuePaymentActivationCode creates a payment-activation code reserved for
// one user and bound to one of their cards.
func (s *CodeService) IssuePaymentActivationCode(userID uint, cardID, createdBy uint) (*models.Code, error) {
	card, err := s.cardRepo.GetByID(cardID)
	if err != nil {
		return nil, err
	}
	if card.OwnerID != userID {
		return nil, errors.New(errors.ErrCodeValidation, "card does not belong to the target user")
	}

	code := &models.Code{
		Code:              s.newToken(models.CodeKindPaymentActivation),
		Kind:              models.CodeKindPaymentActivation,
		Type:              card.Type,
		Status:            models.CodeStatusActive,
		CreatedByID:       createdBy,
		ReservedForUserID: &userID,
		CardID:            &cardID,
	}
	if err := s.codeRepo.Create(code); err != nil {
		return nil, err
	}

	logger.Info("payment activation code issued",
		"user_id", userID, "card_id", cardID, "created_by", createdBy)
	return code, nil
}

// ConsumePaymentActivationCode redeems a payment-activation code, flipping
// the bound card to the paid tier. Only the reserved user may consume it.
func (s *CodeService) ConsumePaymentActivationCode(userID uint, codeValue, ip, userAgent string) (*models.Code, error) {
	code, err := s.checkRedeemable(codeValue, models.CodeKindPaymentActivation)
	if err != nil {
		return nil, err
	}
	if code.ReservedForUserID == nil || *code.ReservedForUserID != userID {
		return nil, errors.New(errors.ErrCodeForbidden, "code is reserved for another user")
	}
	if code.CardID == nil {
		return nil, errors.New(errors.ErrCodeInvalidState, "code has no bound card")
	}

	consumed, err := s.codeRepo.ConsumeActivation(code, userID,
		security.SanitizeString(ip), security.SanitizeText(userAgent))
	if err != nil {
		return nil, err
	}

	logger.Info("payment activation code consumed",
		"user_id", userID, "code_id", code.ID, "card_id", *code.CardID)
	return consumed, nil
}

// checkRedeemable looks the code up and runs the shared pre-redemption
// checks: lazy expiry, kind and status.
func (s *CodeService) checkRedeemable(codeValue, wantKind string) (*models.Code, error) {
	code, err := s.codeRepo.FindByValue(codeValue)
	if err != nil {
		return nil, err
	}

	if code.Status == models.CodeStatusActive && code.IsExpired(time.Now().UTC()) {
		// Expiry is lazy: the first access past expires_at writes the
		// expired status.
		if err := s.codeRepo.MarkExpired(code.ID); err != nil {
			logger.Error("failed to mark code expired", "code_id", code.ID, "error", err)
		}
		return nil, errors.New(errors.ErrCodeExpired, "code has expired")
	}
	if code.Kind != wantKind {
		return nil, errors.New(errors.ErrCodeInvalidState,
			fmt.Sprintf("code is a %s code", code.Kind))
	}
	switch code.Status {
	case models.CodeStatusActive:
		return code, nil
	case models.CodeStatusExpired:
		return nil, errors.New(errors.ErrCodeExpired, "code has expired")
	default:
		return nil, errors.New(errors.ErrCodeInvalidState, "code is not active")
	}
}

func (s *CodeService) newToken(kind string) string {
	prefix := models.CodePrefixSlot
	if kind == models.CodeKindPaymentActivation {
		prefix = models.CodePrefixActivation
	}
	return prefix + utils.GenerateToken(s.cfg.CodeTokenLength)
}
