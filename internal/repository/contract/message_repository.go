package contract

import (
	"context"

	"ai-companion-core/internal/entity"
)

type MessageRepository interface {
	// ReplaceForCharacter overwrites the persisted ledger for one character
	// with the given messages in ledger order.
	ReplaceForCharacter(ctx context.Context, characterId string, messages []*entity.Message) error
	LoadAll(ctx context.Context) (map[string][]*entity.Message, error)
}
