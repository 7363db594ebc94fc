package service

import (
	"context"
	"sync"

	"ai-companion-core/internal/dto"
	"ai-companion-core/internal/entity"
	"ai-companion-core/internal/pkg/logger"
	"ai-companion-core/internal/state"
)

// fakeBackend implements backend.IClient with per-call overrides so each test
// scripts exactly the server behavior it needs.
type fakeBackend struct {
	mu sync.Mutex

	getOrCreateFn func(ctx context.Context, characterId string) (*dto.SessionResponse, error)
	historyFn     func(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error)
	sendFn        func(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	intimacyFn    func(ctx context.Context, characterId string) (*dto.IntimacyStatusResponse, error)
	pushesFn      func(ctx context.Context) ([]dto.PendingPushDTO, error)
	walletFn      func(ctx context.Context) (*dto.WalletResponse, error)

	getOrCreateCalls int
	historyCalls     int
	sendCalls        int
}

func (f *fakeBackend) GetOrCreateSession(ctx context.Context, characterId string) (*dto.SessionResponse, error) {
	f.mu.Lock()
	f.getOrCreateCalls++
	fn := f.getOrCreateFn
	f.mu.Unlock()
	if fn == nil {
		return &dto.SessionResponse{SessionId: "s-" + characterId, CharacterId: characterId}, nil
	}
	return fn(ctx, characterId)
}

func (f *fakeBackend) GetSessionHistory(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error) {
	f.mu.Lock()
	f.historyCalls++
	fn := f.historyFn
	f.mu.Unlock()
	if fn == nil {
		return &dto.SessionHistoryResponse{}, nil
	}
	return fn(ctx, sessionId)
}

func (f *fakeBackend) SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	f.mu.Lock()
	f.sendCalls++
	fn := f.sendFn
	f.mu.Unlock()
	if fn == nil {
		return &dto.SendMessageResponse{
			Message: dto.MessageDTO{Id: "srv-reply", Role: "assistant", Content: "ok"},
		}, nil
	}
	return fn(ctx, req)
}

func (f *fakeBackend) GetIntimacyStatus(ctx context.Context, characterId string) (*dto.IntimacyStatusResponse, error) {
	f.mu.Lock()
	fn := f.intimacyFn
	f.mu.Unlock()
	if fn == nil {
		return &dto.IntimacyStatusResponse{CurrentLevel: 1, XpForNextLevel: 100}, nil
	}
	return fn(ctx, characterId)
}

func (f *fakeBackend) GetPendingPushes(ctx context.Context) ([]dto.PendingPushDTO, error) {
	f.mu.Lock()
	fn := f.pushesFn
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx)
}

func (f *fakeBackend) GetWallet(ctx context.Context) (*dto.WalletResponse, error) {
	f.mu.Lock()
	fn := f.walletFn
	f.mu.Unlock()
	if fn == nil {
		return &dto.WalletResponse{}, nil
	}
	return fn(ctx)
}

func (f *fakeBackend) calls() (getOrCreate, history, send int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getOrCreateCalls, f.historyCalls, f.sendCalls
}

// Repository fakes behind the state-store contracts.

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (r *memSessionRepo) Save(_ context.Context, s *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.sessions[s.CharacterId] = &copied
	return nil
}

func (r *memSessionRepo) LoadAll(_ context.Context) ([]*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

type memMessageRepo struct {
	mu       sync.Mutex
	messages map[string][]*entity.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{messages: make(map[string][]*entity.Message)}
}

func (r *memMessageRepo) ReplaceForCharacter(_ context.Context, characterId string, msgs []*entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket := make([]*entity.Message, len(msgs))
	for i, m := range msgs {
		copied := *m
		bucket[i] = &copied
	}
	r.messages[characterId] = bucket
	return nil
}

func (r *memMessageRepo) LoadAll(_ context.Context) (map[string][]*entity.Message, error) {
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

type memWalletRepo struct {
	mu     sync.Mutex
	wallet *entity.Wallet
}

func (r *memWalletRepo) Save(_ context.Context, w *entity.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *w
	r.wallet = &copied
	return nil
}

func (r *memWalletRepo) Load(_ context.Context) (*entity.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.wallet == nil {
		return nil, nil
	}
	copied := *r.wallet
	return &copied, nil
}

// recordingPublisher captures exchange events instead of hitting a pubsub.
type recordingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

// recordingIntimacy satisfies IIntimacyService without network calls.
type recordingIntimacy struct {
	mu       sync.Mutex
	refreshe []string
}

func (r *recordingIntimacy) StatusFor(characterId string) *entity.IntimacyStatus {
	return entity.DefaultIntimacyStatus(characterId)
}

func (r *recordingIntimacy) Refresh(_ context.Context, characterId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshe = append(r.refreshe, characterId)
	return nil
}

func (r *recordingIntimacy) Consume(_ context.Context) error { return nil }

func (r *recordingIntimacy) refreshCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.refreshe)
}

type chatSyncFixture struct {
	backend   *fakeBackend
	sessions  *state.SessionCache
	ledger    *state.MessageLedger
	credits   *state.CreditLedger
	intimacy  *recordingIntimacy
	publisher *recordingPublisher
	svc       IChatSyncService
}

func newChatSyncFixture(backendClient *fakeBackend) *chatSyncFixture {
	nop := logger.NewNopLogger()
	f := &chatSyncFixture{
		backend:   backendClient,
		sessions:  state.NewSessionCache(newMemSessionRepo(), nop),
		ledger:    state.NewMessageLedger(newMemMessageRepo(), nop),
		credits:   state.NewCreditLedger(&memWalletRepo{}, nop),
		intimacy:  &recordingIntimacy{},
		publisher: &recordingPublisher{},
	}
	f.svc = NewChatSyncService(backendClient, f.sessions, f.ledger, f.credits, f.intimacy, f.publisher, nop)
	return f
}
