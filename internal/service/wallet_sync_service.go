package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ai-companion-core/internal/backend"
	"ai-companion-core/internal/dto"
	"ai-companion-core/internal/mapper"
	"ai-companion-core/internal/pkg/logger"
	"ai-companion-core/internal/state"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IWalletSyncService keeps the local wallet converging on the server's
// authoritative balance. A send can succeed server-side while the response is
// lost on the wire, deducting credits the client never saw; the periodic
// resync plus a resync after every failed exchange closes that gap.
type IWalletSyncService interface {
	Resync(ctx context.Context) error
	Consume(ctx context.Context) error
	Start(ctx context.Context)
	Stop()
}

type walletSyncService struct {
	backend   backend.IClient
	credits   *state.CreditLedger
	pubSub    *gochannel.GoChannel
	topicName string
	mapper    *mapper.ChatMapper
	log       logger.ILogger
	interval  time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewWalletSyncService(
	backendClient backend.IClient,
	credits *state.CreditLedger,
	pubSub *gochannel.GoChannel,
	topicName string,
	interval time.Duration,
	log logger.ILogger,
) IWalletSyncService {
	return &walletSyncService{
		backend:   backendClient,
		credits:   credits,
		pubSub:    pubSub,
		topicName: topicName,
		mapper:    mapper.NewChatMapper(),
		log:       log,
		interval:  interval,
	}
}

// Resync overwrites the wallet with server state. Failures keep the previous
// snapshot; the next tick retries.
func (s *walletSyncService) Resync(ctx context.Context) error {
	resp, err := s.backend.GetWallet(ctx)
	if err != nil {
		s.log.Debug("wallet-sync", "wallet resync failed", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	s.credits.Overwrite(s.mapper.WalletFromDTO(resp))
	return nil
}

// Consume watches exchange events and resyncs after failed sends, when the
// server may have processed a message whose response never arrived.
func (s *walletSyncService) Consume(ctx context.Context) error {
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

func (s *walletSyncService) processMessage(ctx context.Context, msg *message.Message) {
	var event dto.ExchangeCompletedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		msg.Ack()
		return
	}
	if !event.Succeeded {
		_ = s.Resync(ctx)
	}
	msg.Ack()
}

func (s *walletSyncService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	stopCh := make(chan struct{})
	s.stopCh = stopCh
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = s.Resync(ctx)
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *walletSyncService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
}
