package implementation

import (
	"context"
	"sort"

	"ai-companion-core/internal/entity"
	"ai-companion-core/internal/mapper"
	"ai-companion-core/internal/model"
	"ai-companion-core/internal/repository/contract"

	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *MessageRepositoryImpl) ReplaceForCharacter(ctx context.Context, characterId string, messages []*entity.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("character_id = ?", characterId).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		if len(messages) == 0 {
			return nil
		}
		models := make([]*model.Message, len(messages))
		for i, msg := range messages {
			models[i] = r.mapper.MessageToModel(msg, i)
		}
		return tx.Create(models).Error
	})
}

func (r *MessageRepositoryImpl) LoadAll(ctx context.Context) (map[string][]*entity.Message, error) {
	var models []*model.Message
	if err := r.db.WithContext(ctx).Order("character_id, position").Find(&models).Error; err != nil {
		return nil, err
	}
	// Position, not CreatedAt, is the ledger order: an optimistic message may
	// carry a client timestamp that sorts after later server messages.
	sort.SliceStable(models, func(i, j int) bool {
		if models[i].CharacterId != models[j].CharacterId {
			return models[i].CharacterId < models[j].CharacterId
		}
		return models[i].Position < models[j].Position
	})
	byCharacter := make(map[string][]*entity.Message)
	for _, m := range models {
		byCharacter[m.CharacterId] = append(byCharacter[m.CharacterId], r.mapper.MessageToEntity(m))
	}
	return byCharacter, nil
}
