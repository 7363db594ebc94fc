package state

import (
	"context"
	"sync"

	"ai-companion-core/internal/entity"
	"ai-companion-core/internal/pkg/logger"
	"ai-companion-core/internal/repository/contract"
)

// SessionCache is the in-memory index characterId -> Session, backed by the
// persisted sessions partition. Upserts are visible to readers immediately
// and written through to disk fire-and-forget; last write wins, which is safe
// because session fields are re-derivable from the server.
type SessionCache struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session

	repo contract.SessionRepository
	log  logger.ILogger
}

func NewSessionCache(repo contract.SessionRepository, log logger.ILogger) *SessionCache {
	return &SessionCache{
		sessions: make(map[string]*entity.Session),
		repo:     repo,
		log:      log,
	}
}

// Hydrate loads the persisted partition. Called once at startup, before the
// hydration gate opens.
func (c *SessionCache) Hydrate(ctx context.Context) error {
	sessions, err := c.repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range sessions {
		copied := *s
		c.sessions[s.CharacterId] = &copied
	}
	return nil
}

func (c *SessionCache) GetByCharacter(characterId string) (*entity.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[characterId]
	if !ok {
		return nil, false
	}
	copied := *s
	return &copied, true
}

// Upsert replaces any existing entry for the session's character. At most one
// session per character ever exists in the cache.
func (c *SessionCache) Upsert(session *entity.Session) {
	copied := *session
	c.mu.Lock()
	c.sessions[copied.CharacterId] = &copied
	c.mu.Unlock()

	persisted := copied
	go func() {
		if err := c.repo.Save(context.Background(), &persisted); err != nil {
			c.log.Warn("session-cache", "failed to persist session", map[string]interface{}{
				"character_id": persisted.CharacterId,
				"error":        err.Error(),
			})
		}
	}()
}

func (c *SessionCache) All() []*entity.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*entity.Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		copied := *s
		out = append(out, &copied)
	}
	return out
}
