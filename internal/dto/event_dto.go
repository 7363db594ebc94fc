package dto

import "time"

// ExchangeCompletedEvent is published after every send attempt, success or
// not. Subscribers (intimacy refresh, wallet resync) must tolerate both.
type ExchangeCompletedEvent struct {
	CharacterId string    `json:"character_id"`
	SessionId   string    `json:"session_id"`
	Succeeded   bool      `json:"succeeded"`
	OccurredAt  time.Time `json:"occurred_at"`
}
