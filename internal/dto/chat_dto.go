package dto

import (
	"ai-companion-core/internal/entity"
)

// Wire types for the companion backend. Timestamps travel as RFC3339 strings;
// the mapper is lenient about parsing them.

type SessionResponse struct {
	SessionId     string `json:"session_id"`
	CharacterId   string `json:"character_id"`
	DisplayName   string `json:"display_name,omitempty"`
	AvatarRef     string `json:"avatar_ref,omitempty"`
	BackgroundRef string `json:"background_ref,omitempty"`
}

type MessageDTO struct {
	Id        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Kind      string `json:"kind,omitempty"`
	CreatedAt string `json:"created_at"`
}

type SessionHistoryResponse struct {
	Messages []MessageDTO `json:"messages"`
}

type SendMessageRequest struct {
	SessionId   string `json:"session_id"`
	Text        string `json:"text"`
	RequestType string `json:"request_type,omitempty"`
}

type SendMessageResponse struct {
	Message MessageDTO `json:"message"`
	// UserMessage echoes the server copy of the message that triggered this
	// send, when the backend provides one. Used to promote the optimistic
	// insert to its server id and timestamp.
	UserMessage     *MessageDTO `json:"user_message,omitempty"`
	CreditsDeducted *float64    `json:"credits_deducted,omitempty"`
}

type IntimacyStatusResponse struct {
	CurrentLevel      int `json:"current_level"`
	XpProgressInLevel int `json:"xp_progress_in_level"`
	XpForNextLevel    int `json:"xp_for_next_level"`
	StreakDays        int `json:"streak_days"`
}

type PendingPushDTO struct {
	Id            string `json:"id,omitempty"`
	CharacterId   string `json:"character_id"`
	CharacterName string `json:"character_name"`
	Message       string `json:"message"`
	Timestamp     string `json:"timestamp"`
}

type WalletResponse struct {
	TotalCredits     float64 `json:"total_credits"`
	DailyFreeCredits float64 `json:"daily_free_credits"`
	BonusCredits     float64 `json:"bonus_credits"`
}

// ChatView is what a screen gets back from opening a character chat: whatever
// state is known right now, possibly cache-only.
type ChatView struct {
	Session  *entity.Session
	Messages []entity.Message
}

// SendResult reports the outcome of one completed send.
type SendResult struct {
	Reply           *entity.Message
	CreditsDeducted float64
	Balance         float64
}
