package state

import (
	"context"
	"sync"

	"ai-companion-core/internal/constant"
	"ai-companion-core/internal/entity"
	"ai-companion-core/internal/pkg/logger"
	"ai-companion-core/internal/repository/contract"
)

// MessageLedger holds the per-character ordered message lists. Order is
// insertion order: an unreconciled optimistic message may sit after messages
// with a later server timestamp, which is tolerated because user-authored
// order dominates UX expectations.
type MessageLedger struct {
	mu       sync.RWMutex
	messages map[string][]*entity.Message

	repo contract.MessageRepository
	log  logger.ILogger
}

func NewMessageLedger(repo contract.MessageRepository, log logger.ILogger) *MessageLedger {
	return &MessageLedger{
		messages: make(map[string][]*entity.Message),
		repo:     repo,
		log:      log,
	}
}

func (l *MessageLedger) Hydrate(ctx context.Context) error {
	byCharacter, err := l.repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for characterId, msgs := range byCharacter {
		bucket := make([]*entity.Message, len(msgs))
		for i, m := range msgs {
			copied := *m
			bucket[i] = &copied
		}
		l.messages[characterId] = bucket
	}
	return nil
}

// Append adds a message at the end of the character's ledger.
func (l *MessageLedger) Append(characterId string, msg *entity.Message) {
	copied := *msg
	l.mu.Lock()
	l.messages[characterId] = append(l.messages[characterId], &copied)
	l.mu.Unlock()
	l.persist(characterId)
}

// Reconcile promotes the optimistic message localId to its confirmed server
// copy, in place, preserving ledger position. Returns false when localId is
// no longer in the ledger.
func (l *MessageLedger) Reconcile(characterId, localId string, confirmed *entity.Message) bool {
	l.mu.Lock()
	found := false
	for i, m := range l.messages[characterId] {
		if m.Id == localId {
			copied := *confirmed
			copied.Delivery = constant.MessageDeliveryConfirmed
			l.messages[characterId][i] = &copied
			found = true
			break
		}
	}
	l.mu.Unlock()
	if found {
		l.persist(characterId)
	}
	return found
}

// Confirm flips an optimistic message to confirmed without changing its id or
// content, for backends that do not echo the user message.
func (l *MessageLedger) Confirm(characterId, localId string) bool {
	return l.setDelivery(characterId, localId, constant.MessageDeliveryConfirmed)
}

// MarkFailed records a send failure on the optimistic message. The message
// stays in the ledger: from the user's perspective it was genuinely sent.
func (l *MessageLedger) MarkFailed(characterId, localId string) bool {
	return l.setDelivery(characterId, localId, constant.MessageDeliveryFailed)
}

func (l *MessageLedger) setDelivery(characterId, localId, delivery string) bool {
	l.mu.Lock()
	found := false
	for _, m := range l.messages[characterId] {
		if m.Id == localId {
			m.Delivery = delivery
			found = true
			break
		}
	}
	l.mu.Unlock()
	if found {
		l.persist(characterId)
	}
	return found
}

// ReplaceHistory overwrites the character's ledger with the authoritative
// server history. An empty history never erases cached messages: a failed or
// empty fetch must not produce a visible "conversation disappeared" flash.
// Returns true when the ledger was replaced.
func (l *MessageLedger) ReplaceHistory(characterId string, msgs []*entity.Message) bool {
	l.mu.Lock()
	if len(msgs) == 0 && len(l.messages[characterId]) > 0 {
		l.mu.Unlock()
		return false
	}
	bucket := make([]*entity.Message, len(msgs))
	for i, m := range msgs {
		copied := *m
		bucket[i] = &copied
	}
	l.messages[characterId] = bucket
	l.mu.Unlock()
	l.persist(characterId)
	return true
}

// Messages returns a snapshot copy of the character's ledger.
func (l *MessageLedger) Messages(characterId string) []entity.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]entity.Message, len(l.messages[characterId]))
	for i, m := range l.messages[characterId] {
		out[i] = *m
	}
	return out
}

func (l *MessageLedger) persist(characterId string) {
	l.mu.RLock()
	snapshot := make([]*entity.Message, len(l.messages[characterId]))
	for i, m := range l.messages[characterId] {
		copied := *m
		snapshot[i] = &copied
	}
	l.mu.RUnlock()

	go func() {
		if err := l.repo.ReplaceForCharacter(context.Background(), characterId, snapshot); err != nil {
			l.log.Warn("message-ledger", "failed to persist messages", map[string]interface{}{
				"character_id": characterId,
				"error":        err.Error(),
			})
		}
	}()
}
