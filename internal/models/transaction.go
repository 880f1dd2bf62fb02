package models

import (
	"time"
)

// AlbaTransaction is the append-only ledger entry. Amount is positive for
// earn/grant and negative for spend. Rows are never updated after creation.
type AlbaTransaction struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          uint   `gorm:"not null;index"`
	User            User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Amount          int64  `gorm:"not null"`
	Type            string `gorm:"type:varchar(20);not null;index"`
	Reason          string `gorm:"type:varchar(50);not null;index"`
	RelatedUserID   *uint  `gorm:"index"`
	RelatedCodeID   *uint
	RelatedCardType string `gorm:"type:varchar(20)"`
	RelatedCardID   *uint
	EventID         string    `gorm:"type:varchar(36);index"`
	Description     string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index"`
}

// Transaction type constants
const (
	TxTypeEarn  = "earn"
	TxTypeSpend = "spend"
	TxTypeGrant = "grant"
)

// Transaction reason constants
const (
	ReasonAdminGrant              = "admin_grant"
	ReasonManualAdjustment        = "manual_adjustment"
	ReasonCardEntitlementPurchase = "card_entitlement_purchase"
	ReasonReferralBonus           = "referral_bonus"
	ReasonReferredUserBonus       = "referred_user_bonus"
)

func (AlbaTransaction) TableName() string {
	return "alba_transactions"
}
