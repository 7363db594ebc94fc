package entity

import "time"

// Wallet is the spendable credit balance. TotalCredits is the only field the
// credit ledger ever mutates locally; the breakdown fields are display-only
// and always come whole from the server.
type Wallet struct {
	TotalCredits     float64
	DailyFreeCredits float64
	BonusCredits     float64
	UpdatedAt        time.Time
}
