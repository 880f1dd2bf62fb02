package models

import (
	"time"
)

// Code is a single-use redemption token. Possession of the token string is
// the only redemption credential, so tokens are generated from crypto/rand.
type Code struct {
	ID                uint   `gorm:"primaryKey"`
	Code              string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Kind              string `gorm:"type:varchar(30);not null;index"`
	Type              string `gorm:"type:varchar(20);not null"`
	Status            string `gorm:"type:varchar(20);default:'active';not null;index"`
	ExpiresAt         *time.Time
	CreatedByID       uint `gorm:"not null"`
	UsedByID          *uint
	UsedAt            *time.Time
	ReservedForUserID *uint
	CardID            *uint
	Meta              string    `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

// Code kind constants
const (
	CodeKindSlot              = "slot"
	CodeKindPaymentActivation = "payment_activation"
)

// Code status constants
const (
	CodeStatusActive  = "active"
	CodeStatusUsed    = "used"
	CodeStatusExpired = "expired"
)

// Token prefixes per code kind
const (
	CodePrefixSlot       = "SLOT-"
	CodePrefixActivation = "ACT-"
)

// IsExpired reports whether the code's expiry moment has passed. Codes with
// no expiry never expire.
func (c *Code) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

func (Code) TableName() string {
	return "codes"
}

// CodeUsage is the audit record of a successful redemption. The composite
// unique index on (user_id, code_id) is a second guard against double
// counting, independent of the code's own status field.
type CodeUsage struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index:idx_code_usage_unique,unique"`
	CodeID    uint   `gorm:"not null;index:idx_code_usage_unique,unique"`
	Kind      string `gorm:"type:varchar(30);not null"`
	Type      string `gorm:"type:varchar(20);not null"`
	IP        string `gorm:"type:varchar(45)"`
	UserAgent string `gorm:"type:varchar(500)"`
	CardID    *uint
	UsedAt    time.Time `gorm:"autoCreateTime"`
}

func (CodeUsage) TableName() string {
	return "code_usages"
}
