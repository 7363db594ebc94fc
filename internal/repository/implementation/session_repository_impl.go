package implementation

import (
	"context"

	"ai-companion-core/internal/entity"
	"ai-companion-core/internal/mapper"
	"ai-companion-core/internal/model"
	"ai-companion-core/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

// Save upserts by character id. Sessions are idempotently re-derivable from
// the server, so last-write-wins is acceptable here.
func (r *SessionRepositoryImpl) Save(ctx context.Context, session *entity.Session) error {
	m := r.mapper.SessionToModel(session)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "character_id"}},
		UpdateAll: true,
	}).Create(m).Error
}

func (r *SessionRepositoryImpl) LoadAll(ctx context.Context) ([]*entity.Session, error) {
	var models []*model.Session
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Session, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SessionToEntity(m)
	}
	return entities, nil
}
