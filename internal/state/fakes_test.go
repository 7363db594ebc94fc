package state

import (
	"context"
	"sync"

	"ai-companion-core/internal/entity"
)

// In-memory repository fakes. The real implementations live behind the same
// contracts in internal/repository/implementation.

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
	saves    int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (r *fakeSessionRepo) Save(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.CharacterId] = &copied
	r.saves++
	return nil
}

func (r *fakeSessionRepo) LoadAll(_ context.Context) ([]*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeSessionRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[string][]*entity.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[string][]*entity.Message)}
}

func (r *fakeMessageRepo) ReplaceForCharacter(_ context.Context, characterId string, messages []*entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket := make([]*entity.Message, len(messages))
	for i, m := range messages {
		copied := *m
		bucket[i] = &copied
	}
	r.messages[characterId] = bucket
	return nil
}

func (r *fakeMessageRepo) LoadAll(_ context.Context) (map[string][]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]*entity.Message, len(r.messages))
	for k, msgs := range r.messages {
		bucket := make([]*entity.Message, len(msgs))
		for i, m := range msgs {
			copied := *m
			bucket[i] = &copied
		}
		out[k] = bucket
	}
	return out, nil
}

func (r *fakeMessageRepo) persistedCount(characterId string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages[characterId])
}

type fakeWalletRepo struct {
	mu     sync.Mutex
	wallet *entity.Wallet
}

func (r *fakeWalletRepo) Save(_ context.Context, wallet *entity.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *wallet
	r.wallet = &copied
	return nil
}

func (r *fakeWalletRepo) Load(_ context.Context) (*entity.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.wallet == nil {
		return nil, nil
	}
	copied := *r.wallet
	return &copied, nil
}
