package model

import (
	"time"
)

type Session struct {
	CharacterId   string    `gorm:"type:text;primaryKey"`
	SessionId     string    `gorm:"type:text;index"`
	DisplayName   string    `gorm:"type:text"`
	AvatarRef     string    `gorm:"type:text"`
	BackgroundRef string    `gorm:"type:text"`
	LastSyncedAt  time.Time
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Session) TableName() string {
	return "sessions"
}
