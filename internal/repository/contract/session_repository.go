package contract

import (
	"context"

	"ai-companion-core/internal/entity"
)

type SessionRepository interface {
	Save(ctx context.Context, session *entity.Session) error
	LoadAll(ctx context.Context) ([]*entity.Session, error)
}
