package mapper

import (
	"time"

	"ai-companion-core/internal/constant"
	"ai-companion-core/internal/dto"
	"ai-companion-core/internal/entity"
	"ai-companion-core/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) SessionToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}
	return &entity.Session{
		SessionId:     s.SessionId,
		CharacterId:   s.CharacterId,
		DisplayName:   s.DisplayName,
		AvatarRef:     s.AvatarRef,
		BackgroundRef: s.BackgroundRef,
		LastSyncedAt:  s.LastSyncedAt,
	}
}

func (m *ChatMapper) SessionToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}
	return &model.Session{
		CharacterId:   s.CharacterId,
		SessionId:     s.SessionId,
		DisplayName:   s.DisplayName,
		AvatarRef:     s.AvatarRef,
		BackgroundRef: s.BackgroundRef,
		LastSyncedAt:  s.LastSyncedAt,
	}
}

func (m *ChatMapper) SessionFromDTO(d *dto.SessionResponse) *entity.Session {
	if d == nil {
		return nil
	}
	return &entity.Session{
		SessionId:     d.SessionId,
		CharacterId:   d.CharacterId,
		DisplayName:   d.DisplayName,
		AvatarRef:     d.AvatarRef,
		BackgroundRef: d.BackgroundRef,
		LastSyncedAt:  time.Now(),
	}
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:          msg.Id,
		CharacterId: msg.CharacterId,
		Role:        msg.Role,
		Content:     msg.Content,
		Kind:        msg.Kind,
		Delivery:    msg.Delivery,
		CreatedAt:   msg.CreatedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message, position int) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:          msg.Id,
		CharacterId: msg.CharacterId,
		Role:        msg.Role,
		Content:     msg.Content,
		Kind:        msg.Kind,
		Delivery:    msg.Delivery,
		CreatedAt:   msg.CreatedAt,
		Position:    position,
	}
}

// MessageFromDTO converts a server message. Server messages are confirmed by
// definition; a missing kind defaults to text and an unparsable timestamp
// falls back to client time rather than failing the whole history.
func (m *ChatMapper) MessageFromDTO(characterId string, d *dto.MessageDTO) *entity.Message {
	if d == nil {
		return nil
	}
	kind := d.Kind
	if kind == "" {
		kind = constant.ChatMessageKindText
	}
	createdAt, err := time.Parse(time.RFC3339, d.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}
	return &entity.Message{
		Id:          d.Id,
		CharacterId: characterId,
		Role:        d.Role,
		Content:     d.Content,
		Kind:        kind,
		Delivery:    constant.MessageDeliveryConfirmed,
		CreatedAt:   createdAt,
	}
}

// Wallet Mappers

func (m *ChatMapper) WalletToEntity(w *model.Wallet) *entity.Wallet {
	if w == nil {
		return nil
	}
	return &entity.Wallet{
		TotalCredits:     w.TotalCredits,
		DailyFreeCredits: w.DailyFreeCredits,
		BonusCredits:     w.BonusCredits,
		UpdatedAt:        w.UpdatedAt,
	}
}

func (m *ChatMapper) WalletToModel(w *entity.Wallet) *model.Wallet {
	if w == nil {
		return nil
	}
	return &model.Wallet{
		Id:               1,
		TotalCredits:     w.TotalCredits,
		DailyFreeCredits: w.DailyFreeCredits,
		BonusCredits:     w.BonusCredits,
		UpdatedAt:        w.UpdatedAt,
	}
}

func (m *ChatMapper) WalletFromDTO(d *dto.WalletResponse) *entity.Wallet {
	if d == nil {
		return nil
	}
	return &entity.Wallet{
		TotalCredits:     d.TotalCredits,
		DailyFreeCredits: d.DailyFreeCredits,
		BonusCredits:     d.BonusCredits,
		UpdatedAt:        time.Now(),
	}
}

// Intimacy / Push Mappers

func (m *ChatMapper) IntimacyFromDTO(characterId string, d *dto.IntimacyStatusResponse) *entity.IntimacyStatus {
	if d == nil {
		return nil
	}
	return &entity.IntimacyStatus{
		CharacterId:       characterId,
		CurrentLevel:      d.CurrentLevel,
		XpProgressInLevel: d.XpProgressInLevel,
		XpForNextLevel:    d.XpForNextLevel,
		StreakDays:        d.StreakDays,
		FetchedAt:         time.Now(),
	}
}

func (m *ChatMapper) PushNoticeFromDTO(d *dto.PendingPushDTO) *entity.PushNotice {
	if d == nil {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, d.Timestamp)
	if err != nil {
		ts = time.Now()
	}
	return &entity.PushNotice{
		Id:            d.Id,
		CharacterId:   d.CharacterId,
		CharacterName: d.CharacterName,
		Message:       d.Message,
		Timestamp:     ts,
	}
}
