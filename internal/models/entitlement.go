package models

import (
	"time"
)

// Entitlement is a purchased, single-use right to create one extra card of
// a given type. The composite unique index on (owner_id, type,
// idempotency_key) makes a retried purchase with the same key converge on
// one row.
type Entitlement struct {
	ID                   uint   `gorm:"primaryKey"`
	OwnerID              uint   `gorm:"not null;index;index:idx_entitlement_idem,unique"`
	Type                 string `gorm:"type:varchar(20);not null;index:idx_entitlement_idem,unique"`
	Status               string `gorm:"type:varchar(20);default:'available';not null;index"`
	Source               string `gorm:"type:varchar(30);not null"`
	IdempotencyKey       string `gorm:"type:varchar(64);not null;index:idx_entitlement_idem,unique"`
	EventID              string `gorm:"type:varchar(36);uniqueIndex;not null"`
	RelatedTransactionID uint
	ConsumedAt           *time.Time
	CreatedAt            time.Time `gorm:"autoCreateTime"`
}

// Entitlement status constants
const (
	EntitlementStatusAvailable = "available"
	EntitlementStatusConsumed  = "consumed"
)

// Entitlement source constants
const (
	EntitlementSourcePurchase = "purchase"
)

func (Entitlement) TableName() string {
	return "entitlements"
}
