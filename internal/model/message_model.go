package model

import (
	"time"
)

type Message struct {
	Id          string `gorm:"type:text;primaryKey"`
	CharacterId string `gorm:"type:text;not null;index"`
	Role        string `gorm:"type:text;not null"`
	Content     string `gorm:"type:text"`
	Kind        string `gorm:"type:text;not null"`
	Delivery    string `gorm:"type:text;not null"`
	CreatedAt   time.Time
	// Position preserves ledger insertion order independent of CreatedAt,
	// since an optimistic message may carry a client timestamp that sorts
	// after later server messages.
	Position int `gorm:"not null"`
}

func (Message) TableName() string {
	return "messages_by_session"
}
