package entity

import (
	"time"
)

// Session is the durable conversation thread between the user and one
// character. Until the server assigns SessionId the session is pending.
type Session struct {
	SessionId     string
	CharacterId   string
	DisplayName   string
	AvatarRef     string
	BackgroundRef string
	LastSyncedAt  time.Time
}

func (s *Session) Pending() bool {
	return s.SessionId == ""
}
