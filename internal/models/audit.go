package models

import (
	"time"
)

// AuditLog records administrative balance actions. Write-only; rows are
// never edited.
type AuditLog struct {
	ID           uint   `gorm:"primaryKey"`
	ActorID      uint   `gorm:"not null;index"`
	Action       string `gorm:"type:varchar(50);not null"`
	TargetUserID *uint  `gorm:"index"`
	Amount       int64
	Detail       string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index"`
}

// Audit action constants
const (
	AuditActionGrantAlba   = "grant_alba"
	AuditActionCreateCodes = "create_codes"
)

func (AuditLog) TableName() string {
	return "audit_logs"
}
