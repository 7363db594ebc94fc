package entity

import (
	"strings"
	"time"

	"ai-companion-core/internal/constant"
)

// Message belongs to exactly one session. Optimistic (locally authored)
// messages carry a local id and Delivery=pending until reconciled against the
// server copy; server messages arrive confirmed.
type Message struct {
	Id          string
	CharacterId string
	Role        string
	Content     string
	Kind        string
	Delivery    string
	CreatedAt   time.Time
}

func (m *Message) IsLocal() bool {
	return strings.HasPrefix(m.Id, constant.LocalMessageIdPrefix)
}

func (m *Message) Confirmed() bool {
	return m.Delivery == constant.MessageDeliveryConfirmed
}
