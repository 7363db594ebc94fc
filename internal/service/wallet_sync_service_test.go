package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ai-companion-core/internal/constant"
	"ai-companion-core/internal/dto"
	"ai-companion-core/internal/entity"
	"ai-companion-core/internal/pkg/logger"
	"ai-companion-core/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCredits() *state.CreditLedger {
	return state.NewCreditLedger(&memWalletRepo{}, logger.NewNopLogger())
}

func TestWalletResyncOverwrites(t *testing.T) {
	backend := &fakeBackend{
		walletFn: func(context.Context) (*dto.WalletResponse, error) {
			return &dto.WalletResponse{TotalCredits: 33, BonusCredits: 3}, nil
		},
	}
	credits := newTestCredits()
	credits.Overwrite(&entity.Wallet{TotalCredits: 99})

	svc := NewWalletSyncService(backend, credits, newTestPubSub(), constant.ExchangeCompletedTopic, time.Minute, logger.NewNopLogger())
	require.NoError(t, svc.Resync(context.Background()))

	assert.Equal(t, 33.0, credits.Balance())
	assert.Equal(t, 3.0, credits.Snapshot().BonusCredits)
}

func TestWalletResyncFailureKeepsLocal(t *testing.T) {
	backend := &fakeBackend{
		walletFn: func(context.Context) (*dto.WalletResponse, error) {
			return nil, errors.New("timeout")
		},
	}
	credits := newTestCredits()
	credits.Overwrite(&entity.Wallet{TotalCredits: 7})

	svc := NewWalletSyncService(backend, credits, newTestPubSub(), constant.ExchangeCompletedTopic, time.Minute, logger.NewNopLogger())
	assert.Error(t, svc.Resync(context.Background()))
	assert.Equal(t, 7.0, credits.Balance())
}

func TestWalletResyncsAfterFailedExchange(t *testing.T) {
	// A failed send may still have been processed server-side; the event
	// consumer pulls the authoritative balance.
	backend := &fakeBackend{
		walletFn: func(context.Context) (*dto.WalletResponse, error) {
			return &dto.WalletResponse{TotalCredits: 12}, nil
		},
	}
	credits := newTestCredits()
	credits.Overwrite(&entity.Wallet{TotalCredits: 20})

	pubSub := newTestPubSub()
	svc := NewWalletSyncService(backend, credits, pubSub, constant.ExchangeCompletedTopic, time.Minute, logger.NewNopLogger())
	require.NoError(t, svc.Consume(context.Background()))

	publisher := NewPublisherService(constant.ExchangeCompletedTopic, pubSub)
	payload, err := json.Marshal(dto.ExchangeCompletedEvent{CharacterId: "c1", Succeeded: false})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(context.Background(), payload))

	assert.Eventually(t, func() bool {
		return credits.Balance() == 12.0
	}, time.Second, 5*time.Millisecond)
}

func TestWalletStartIsIdempotent(t *testing.T) {
	svc := NewWalletSyncService(&fakeBackend{}, newTestCredits(), newTestPubSub(), constant.ExchangeCompletedTopic, time.Hour, logger.NewNopLogger())

	ctx := context.Background()
	svc.Start(ctx)
	svc.Start(ctx) // no-op while running
	svc.Stop()
	svc.Stop() // no-op while stopped
}
