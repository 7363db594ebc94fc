package service

import (
	"context"
	"encoding/json"
	"sync"

	"ai-companion-core/internal/backend"
	"ai-companion-core/internal/dto"
	"ai-companion-core/internal/entity"
	"ai-companion-core/internal/mapper"
	"ai-companion-core/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IIntimacyService keeps the per-character progression snapshot approximately
// in sync. Best effort only: a failed refresh keeps the previous snapshot and
// never surfaces to the chat flow.
type IIntimacyService interface {
	StatusFor(characterId string) *entity.IntimacyStatus
	Refresh(ctx context.Context, characterId string) error
	Consume(ctx context.Context) error
}

type intimacyService struct {
	backend   backend.IClient
	pubSub    *gochannel.GoChannel
	topicName string
	mapper    *mapper.ChatMapper
	log       logger.ILogger

	mu       sync.RWMutex
	statuses map[string]*entity.IntimacyStatus
}

func NewIntimacyService(
	backendClient backend.IClient,
	pubSub *gochannel.GoChannel,
	topicName string,
	log logger.ILogger,
) IIntimacyService {
	return &intimacyService{
		backend:   backendClient,
		pubSub:    pubSub,
		topicName: topicName,
		mapper:    mapper.NewChatMapper(),
		log:       log,
		statuses:  make(map[string]*entity.IntimacyStatus),
	}
}

// StatusFor returns the latest snapshot, or the level-1 default when nothing
// has ever been fetched for this character.
func (s *intimacyService) StatusFor(characterId string) *entity.IntimacyStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if status, ok := s.statuses[characterId]; ok {
		copied := *status
		return &copied
	}
	return entity.DefaultIntimacyStatus(characterId)
}

// Refresh fetches and replaces the snapshot wholesale. No merge logic: a
// stale-but-consistent snapshot beats a partially merged one.
func (s *intimacyService) Refresh(ctx context.Context, characterId string) error {
	resp, err := s.backend.GetIntimacyStatus(ctx, characterId)
	if err != nil {
		s.log.Debug("intimacy", "progression fetch failed, keeping previous snapshot", map[string]interface{}{
			"character_id": characterId,
			"error":        err.Error(),
		})
		return err
	}
	status := s.mapper.IntimacyFromDTO(characterId, resp)
	s.mu.Lock()
	s.statuses[characterId] = status
	s.mu.Unlock()
	return nil
}

// Consume subscribes to exchange-completed events and refreshes in the
// background, keeping progression decoupled from the send path.
func (s *intimacyService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *intimacyService) processMessage(ctx context.Context, msg *message.Message) {
	var event dto.ExchangeCompletedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		s.log.Warn("intimacy", "failed to unmarshal exchange event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	// Errors already logged inside Refresh; an exchange event is consumed
	// exactly once either way.
	_ = s.Refresh(ctx, event.CharacterId)
	msg.Ack()
}
