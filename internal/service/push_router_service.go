package service

import (
	"context"
	"sync"
	"time"

	"ai-companion-core/internal/backend"
	"ai-companion-core/internal/config"
	"ai-companion-core/internal/entity"
	"ai-companion-core/internal/mapper"
	"ai-companion-core/internal/pkg/logger"

	"github.com/patrickmn/go-cache"
)

// Navigator is the navigation stack, injected so the router never depends on
// UI wiring. Implementations must tolerate being called from a timer
// goroutine.
type Navigator interface {
	NavigateToChat(characterId string)
}

// IPushRouterService collapses the cold-start poll path and the warm-start
// listener path into one dedup boundary: at most one navigation per notice.
type IPushRouterService interface {
	HandleIncomingPush(notice *entity.PushNotice, coldStart bool) bool
	PollPending(ctx context.Context) error
	Start(ctx context.Context)
	Stop()
}

type pushRouterService struct {
	backend   backend.IClient
	navigator Navigator
	mapper    *mapper.ChatMapper
	log       logger.ILogger
	cfg       config.PushConfig

	// Recently-seen dedup keys, time-evicted.
	seen *cache.Cache

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewPushRouterService(
	backendClient backend.IClient,
	navigator Navigator,
	cfg config.PushConfig,
	log logger.ILogger,
) IPushRouterService {
	return &pushRouterService{
		backend:   backendClient,
		navigator: navigator,
		mapper:    mapper.NewChatMapper(),
		log:       log,
		cfg:       cfg,
		seen:      cache.New(cfg.DedupWindow, cfg.DedupWindow/2),
	}
}

// HandleIncomingPush routes one notice. Returns true when it won the dedup
// race and a navigation was scheduled. The navigate call is deferred so the
// navigation stack exists by the time it fires; cold start waits longer.
func (s *pushRouterService) HandleIncomingPush(notice *entity.PushNotice, coldStart bool) bool {
	key := notice.DedupKey()
	// go-cache Add is atomic: it errors if the key already exists, which
	// makes the first delivery path win and the second a no-op.
	if err := s.seen.Add(key, struct{}{}, cache.DefaultExpiration); err != nil {
		s.log.Debug("push-router", "duplicate push dropped", map[string]interface{}{
			"dedup_key":    key,
			"character_id": notice.CharacterId,
		})
		return false
	}

	delay := s.cfg.WarmNavigateDelay
	if coldStart {
		delay = s.cfg.ColdNavigateDelay
	}
	characterId := notice.CharacterId
	time.AfterFunc(delay, func() {
		s.navigator.NavigateToChat(characterId)
	})

	s.log.Info("push-router", "push routed to chat", map[string]interface{}{
		"character_id": characterId,
		"cold_start":   coldStart,
	})
	return true
}

// PollPending is the cold path: fetch queued notices and route them through
// the same dedup boundary as the warm listener.
func (s *pushRouterService) PollPending(ctx context.Context) error {
	pushes, err := s.backend.GetPendingPushes(ctx)
	if err != nil {
		s.log.Debug("push-router", "pending push poll failed", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	for i := range pushes {
		s.HandleIncomingPush(s.mapper.PushNoticeFromDTO(&pushes[i]), true)
	}
	return nil
}

// Start begins interval polling. Exactly one poller runs per foreground
// session; a second Start while running is a no-op.
func (s *pushRouterService) Start(ctx context.Context) {
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
		ticker := time.NewTicker(s.cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = s.PollPending(ctx)
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts polling on backgrounding so timers never accumulate across
// foreground cycles.
func (s *pushRouterService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
}
