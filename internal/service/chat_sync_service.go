package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ai-companion-core/internal/backend"
	"ai-companion-core/internal/constant"
	"ai-companion-core/internal/dto"
	"ai-companion-core/internal/entity"
	"ai-companion-core/internal/mapper"
	"ai-companion-core/internal/pkg/logger"
	"ai-companion-core/internal/state"
)

// IChatSyncService orchestrates session sync and the optimistic send
// protocol. Open runs the fixed 4-step initialization; Send and RequestPhoto
// share the 6-step send protocol.
type IChatSyncService interface {
	Open(ctx context.Context, characterId string) (*dto.ChatView, error)
	Send(ctx context.Context, characterId, text string) (*dto.SendResult, error)
	RequestPhoto(ctx context.Context, characterId string) (*dto.SendResult, error)
	Typing(characterId string) bool
}

type chatSyncService struct {
	backend   backend.IClient
	sessions  *state.SessionCache
	ledger    *state.MessageLedger
	credits   *state.CreditLedger
	intimacy  IIntimacyService
	publisher IPublisherService
	mapper    *mapper.ChatMapper
	log       logger.ILogger

	mu          sync.Mutex
	generations map[string]uint64
	typing      map[string]bool

	localSeq atomic.Uint64
}

func NewChatSyncService(
	backendClient backend.IClient,
	sessions *state.SessionCache,
	ledger *state.MessageLedger,
	credits *state.CreditLedger,
	intimacy IIntimacyService,
	publisher IPublisherService,
	log logger.ILogger,
) IChatSyncService {
	return &chatSyncService{
		backend:     backendClient,
		sessions:    sessions,
		ledger:      ledger,
		credits:     credits,
		intimacy:    intimacy,
		publisher:   publisher,
		mapper:      mapper.NewChatMapper(),
		log:         log,
		generations: make(map[string]uint64),
		typing:      make(map[string]bool),
	}
}

// Open enters a character's chat. Steps 2-4 fail independently: each failure
// leaves the previous known-good state in place, and the screen renders with
// whatever partial state is available. There is no retry loop; the next Open
// retries naturally.
func (s *chatSyncService) Open(ctx context.Context, characterId string) (*dto.ChatView, error) {
	if characterId == "" {
		return nil, fmt.Errorf("character id is required")
	}
	gen := s.bumpGeneration(characterId)
	view := &dto.ChatView{}

	// Step 1: cache probe. Never touches the network, so reopening a cached
	// conversation paints instantly.
	if cached, ok := s.sessions.GetByCharacter(characterId); ok {
		view.Session = cached
		view.Messages = s.ledger.Messages(characterId)
	}

	// Step 2: progression refresh, fire-and-forget. Its failure is logged
	// inside the intimacy service and never blocks the sequence.
	go func() {
		_ = s.intimacy.Refresh(context.Background(), characterId)
	}()

	// Step 3: get-or-create session. The server is authoritative and the
	// call is idempotent; the result clobbers stale cached display fields.
	resp, err := s.backend.GetOrCreateSession(ctx, characterId)
	if err != nil {
		s.log.Warn("chat-sync", "get-or-create session failed", map[string]interface{}{
			"character_id": characterId,
			"error":        err.Error(),
		})
		return view, nil
	}
	if s.superseded(characterId, gen) {
		return view, nil
	}
	session := s.mapper.SessionFromDTO(resp)
	s.sessions.Upsert(session)
	view.Session = session

	// Step 4: history fetch. Only a non-empty history replaces the ledger.
	history, err := s.backend.GetSessionHistory(ctx, session.SessionId)
	if err != nil {
		s.log.Warn("chat-sync", "history fetch failed", map[string]interface{}{
			"character_id": characterId,
			"session_id":   session.SessionId,
			"error":        err.Error(),
		})
		return view, nil
	}
	if s.superseded(characterId, gen) {
		return view, nil
	}
	msgs := make([]*entity.Message, 0, len(history.Messages))
	for i := range history.Messages {
		msgs = append(msgs, s.mapper.MessageFromDTO(characterId, &history.Messages[i]))
	}
	s.ledger.ReplaceHistory(characterId, msgs)
	view.Messages = s.ledger.Messages(characterId)
	return view, nil
}

func (s *chatSyncService) Send(ctx context.Context, characterId, text string) (*dto.SendResult, error) {
	return s.send(ctx, characterId, text, constant.SendRequestTypeChat)
}

// RequestPhoto is not a separate state machine, just Send with a fixed text
// and a request-type hint for the backend.
func (s *chatSyncService) RequestPhoto(ctx context.Context, characterId string) (*dto.SendResult, error) {
	return s.send(ctx, characterId, constant.PhotoRequestText, constant.SendRequestTypePhoto)
}

func (s *chatSyncService) send(ctx context.Context, characterId, text, requestType string) (*dto.SendResult, error) {
	session, ok := s.sessions.GetByCharacter(characterId)
	if !ok || session.Pending() {
		return nil, fmt.Errorf("no synced session for character %s, open the chat first", characterId)
	}
	gen := s.currentGeneration(characterId)

	// Step 1: optimistic insert with a local id, then show typing.
	local := &entity.Message{
		Id:          s.nextLocalId(),
		CharacterId: characterId,
		Role:        constant.ChatMessageRoleUser,
		Content:     text,
		Kind:        constant.ChatMessageKindText,
		Delivery:    constant.MessageDeliveryPending,
		CreatedAt:   time.Now(),
	}
	s.ledger.Append(characterId, local)
	s.setTyping(characterId, true)

	// Step 6 runs regardless of outcome: the exchange event drives the
	// intimacy refresh and wallet resync without coupling to this result.
	var sendErr error
	defer func() {
		s.publishExchange(characterId, session.SessionId, sendErr == nil)
	}()

	// Step 2: network round-trip.
	resp, err := s.backend.SendMessage(ctx, &dto.SendMessageRequest{
		SessionId:   session.SessionId,
		Text:        text,
		RequestType: requestType,
	})
	if err != nil {
		// Step 5: the optimistic message stays in the ledger; from the
		// user's perspective it was genuinely sent.
		sendErr = err
		s.setTyping(characterId, false)
		s.ledger.MarkFailed(characterId, local.Id)
		return nil, fmt.Errorf("send message: %w", err)
	}

	if s.superseded(characterId, gen) {
		// A newer Open for this character owns the screen now, so the reply
		// and the promotion are dropped. The credit ledger is account-wide,
		// not screen-scoped: the server already charged for this exchange,
		// so the declared cost still applies.
		if resp.CreditsDeducted != nil {
			s.credits.Deduct(*resp.CreditsDeducted)
		}
		s.setTyping(characterId, false)
		s.log.Debug("chat-sync", "dropping send completion for superseded chat", map[string]interface{}{
			"character_id": characterId,
		})
		return nil, fmt.Errorf("chat for character %s was superseded while sending", characterId)
	}

	// Promote the optimistic message; prefer the server echo when present.
	if resp.UserMessage != nil {
		s.ledger.Reconcile(characterId, local.Id, s.mapper.MessageFromDTO(characterId, resp.UserMessage))
	} else {
		s.ledger.Confirm(characterId, local.Id)
	}

	// Step 3: append the assistant reply, clear typing.
	reply := s.mapper.MessageFromDTO(characterId, &resp.Message)
	if reply.Role == "" {
		reply.Role = constant.ChatMessageRoleAssistant
	}
	s.ledger.Append(characterId, reply)
	s.setTyping(characterId, false)

	// Step 4: apply the server-declared cost, never a client-side guess.
	result := &dto.SendResult{Reply: reply}
	if resp.CreditsDeducted != nil {
		result.CreditsDeducted = *resp.CreditsDeducted
		result.Balance = s.credits.Deduct(*resp.CreditsDeducted)
	} else {
		result.Balance = s.credits.Balance()
	}
	return result, nil
}

func (s *chatSyncService) Typing(characterId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing[characterId]
}

func (s *chatSyncService) setTyping(characterId string, value bool) {
	s.mu.Lock()
	s.typing[characterId] = value
	s.mu.Unlock()
}

// bumpGeneration starts a new screen generation for the character. Late
// completions tagged with an older generation are dropped instead of applied.
func (s *chatSyncService) bumpGeneration(characterId string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[characterId]++
	return s.generations[characterId]
}

func (s *chatSyncService) currentGeneration(characterId string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[characterId]
}

func (s *chatSyncService) superseded(characterId string, gen uint64) bool {
	return s.currentGeneration(characterId) != gen
}

func (s *chatSyncService) nextLocalId() string {
	return fmt.Sprintf("%s%d", constant.LocalMessageIdPrefix, s.localSeq.Add(1))
}

func (s *chatSyncService) publishExchange(characterId, sessionId string, succeeded bool) {
	event := dto.ExchangeCompletedEvent{
		CharacterId: characterId,
		SessionId:   sessionId,
		Succeeded:   succeeded,
		OccurredAt:  time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), payload); err != nil {
		s.log.Debug("chat-sync", "failed to publish exchange event", map[string]interface{}{
			"character_id": characterId,
			"error":        err.Error(),
		})
	}
}
