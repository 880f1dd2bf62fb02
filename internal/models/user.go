package models

import (
	"time"
)

type User struct {
	ID              uint   `gorm:"primaryKey"`
	Email           string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Role            string `gorm:"type:varchar(20);default:'user';not null"`
	EmailVerified   bool   `gorm:"default:false;not null"`
	AlbaBalance     int64  `gorm:"default:0;not null"`
	SlotsTotal      int    `gorm:"default:0;not null"`
	SlotsUsed       int    `gorm:"default:0;not null"`
	ReferredByID    *uint  `gorm:"index"`
	RefBonusGranted bool   `gorm:"default:false;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// User role constants
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (User) TableName() string {
	return "users"
}
