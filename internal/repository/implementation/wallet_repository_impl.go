package implementation

import (
	"context"
	"errors"

	"ai-companion-core/internal/entity"
	"ai-companion-core/internal/mapper"
	"ai-companion-core/internal/model"
	"ai-companion-core/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WalletRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewWalletRepository(db *gorm.DB) contract.WalletRepository {
	return &WalletRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *WalletRepositoryImpl) Save(ctx context.Context, wallet *entity.Wallet) error {
	m := r.mapper.WalletToModel(wallet)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(m).Error
}

func (r *WalletRepositoryImpl) Load(ctx context.Context) (*entity.Wallet, error) {
	var m model.Wallet
	if err := r.db.WithContext(ctx).First(&m, 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.WalletToEntity(&m), nil
}
