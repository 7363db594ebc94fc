package contract

import (
	"context"

	"ai-companion-core/internal/entity"
)

type WalletRepository interface {
	Save(ctx context.Context, wallet *entity.Wallet) error
	// Load returns nil without error when no snapshot has been persisted yet.
	Load(ctx context.Context) (*entity.Wallet, error)
}
