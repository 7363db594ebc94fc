package implementation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ai-companion-core/internal/constant"
	"ai-companion-core/internal/entity"
	"ai-companion-core/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func TestSessionRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	t.Run("Save Then LoadAll", func(t *testing.T) {
		err := repo.Save(ctx, &entity.Session{CharacterId: "c1", SessionId: "s1", DisplayName: "Mia"})
		require.NoError(t, err)

		sessions, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "s1", sessions[0].SessionId)
	})

	t.Run("Save Upserts By Character", func(t *testing.T) {
		err := repo.Save(ctx, &entity.Session{CharacterId: "c1", SessionId: "s1", DisplayName: "Mia (new)"})
		require.NoError(t, err)

		sessions, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, sessions, 1, "second save for the same character must not add a row")
		assert.Equal(t, "Mia (new)", sessions[0].DisplayName)
	})
}

func TestMessageRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	msgs := []*entity.Message{
		{Id: "local-1", CharacterId: "c1", Role: constant.ChatMessageRoleUser, Content: "late stamp",
			Kind: constant.ChatMessageKindText, Delivery: constant.MessageDeliveryPending,
			CreatedAt: time.Now().Add(time.Hour)},
		{Id: "srv-2", CharacterId: "c1", Role: constant.ChatMessageRoleAssistant, Content: "early stamp",
			Kind: constant.ChatMessageKindText, Delivery: constant.MessageDeliveryConfirmed,
			CreatedAt: time.Now()},
	}

	t.Run("Replace Then LoadAll Preserves Ledger Order", func(t *testing.T) {
		require.NoError(t, repo.ReplaceForCharacter(ctx, "c1", msgs))

		byCharacter, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, byCharacter["c1"], 2)
		// Insertion order wins over CreatedAt.
		assert.Equal(t, "local-1", byCharacter["c1"][0].Id)
		assert.Equal(t, "srv-2", byCharacter["c1"][1].Id)
	})

	t.Run("Replace Overwrites", func(t *testing.T) {
		require.NoError(t, repo.ReplaceForCharacter(ctx, "c1", msgs[1:]))

		byCharacter, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, byCharacter["c1"], 1)
	})

	t.Run("Replace With Empty Clears Partition", func(t *testing.T) {
		require.NoError(t, repo.ReplaceForCharacter(ctx, "c1", nil))

		byCharacter, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, byCharacter["c1"])
	})
}

func TestWalletRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	t.Run("Load Empty Store", func(t *testing.T) {
		wallet, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, wallet)
	})

	t.Run("Save Is Single Row Upsert", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, &entity.Wallet{TotalCredits: 20}))
		require.NoError(t, repo.Save(ctx, &entity.Wallet{TotalCredits: 12}))

		wallet, err := repo.Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, wallet)
		assert.Equal(t, 12.0, wallet.TotalCredits)
	})
}
