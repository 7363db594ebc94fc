package state

import (
	"context"
	"sync"

	"ai-companion-core/internal/entity"
	"ai-companion-core/internal/pkg/logger"
	"ai-companion-core/internal/repository/contract"
)

// CreditLedger is the wallet. The only local mutation is the clamped
// deduction applied with a server-declared cost; everything else is a
// wholesale overwrite from server-reported state.
type CreditLedger struct {
	mu     sync.RWMutex
	wallet entity.Wallet

	repo contract.WalletRepository
	log  logger.ILogger
}

func NewCreditLedger(repo contract.WalletRepository, log logger.ILogger) *CreditLedger {
	return &CreditLedger{
		repo: repo,
		log:  log,
	}
}

func (c *CreditLedger) Hydrate(ctx context.Context) error {
	wallet, err := c.repo.Load(ctx)
	if err != nil {
		return err
	}
	if wallet == nil {
		return nil
	}
	c.mu.Lock()
	c.wallet = *wallet
	c.mu.Unlock()
	return nil
}

func (c *CreditLedger) Balance() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.wallet.TotalCredits
}

func (c *CreditLedger) Snapshot() entity.Wallet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.wallet
}

// Deduct applies a server-declared cost, clamped at zero. The client never
// computes a cost itself. Returns the new balance.
func (c *CreditLedger) Deduct(amount float64) float64 {
	c.mu.Lock()
	c.wallet.TotalCredits -= amount
	if c.wallet.TotalCredits < 0 {
		c.wallet.TotalCredits = 0
	}
	balance := c.wallet.TotalCredits
	c.mu.Unlock()
	c.persist()
	return balance
}

// Overwrite replaces the wallet with authoritative server state. No local
// credit increment is ever inferred.
func (c *CreditLedger) Overwrite(wallet *entity.Wallet) {
	c.mu.Lock()
	c.wallet = *wallet
	c.mu.Unlock()
	c.persist()
}

func (c *CreditLedger) persist() {
	snapshot := c.Snapshot()
	go func() {
		if err := c.repo.Save(context.Background(), &snapshot); err != nil {
			c.log.Warn("credit-ledger", "failed to persist wallet", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()
}
