package model

import (
	"time"
)

// Wallet is a single-row snapshot partition.
type Wallet struct {
	Id               int     `gorm:"primaryKey"`
	TotalCredits     float64 `gorm:"not null"`
	DailyFreeCredits float64
	BonusCredits     float64
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (Wallet) TableName() string {
	return "wallet_snapshot"
}
