package models

import (
	"time"
)

// Card is the minimal listing shape this core needs: the rules gate reads
// tier and edit count, and payment-activation codes bind to one card.
// Full listing CRUD lives outside this module.
type Card struct {
	ID        uint   `gorm:"primaryKey"`
	OwnerID   uint   `gorm:"not null;index"`
	Type      string `gorm:"type:varchar(20);not null;index"`
	Tier      string `gorm:"type:varchar(20);default:'free';not null"`
	EditCount int    `gorm:"default:0;not null"`
	Status    string `gorm:"type:varchar(20);default:'active';not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Card type constants
const (
	CardTypeProduct = "product"
	CardTypeService = "service"
	CardTypeBanner  = "banner"
)

// Card tier constants
const (
	CardTierFree = "free"
	CardTierPaid = "paid"
)

func (Card) TableName() string {
	return "cards"
}
