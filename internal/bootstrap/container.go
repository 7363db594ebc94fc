package bootstrap

import (
	"context"
	"log"

	"ai-companion-core/internal/backend"
	"ai-companion-core/internal/config"
	"ai-companion-core/internal/constant"
	"ai-companion-core/internal/pkg/logger"
	"ai-companion-core/internal/repository/implementation"
	"ai-companion-core/internal/service"
	"ai-companion-core/internal/state"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	ChatSync   service.IChatSyncService
	Intimacy   service.IIntimacyService
	PushRouter service.IPushRouterService
	WalletSync service.IWalletSyncService

	Sessions *state.SessionCache
	Ledger   *state.MessageLedger
	Credits  *state.CreditLedger
	Gate     *state.HydrationGate

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config, navigator service.Navigator) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Persistence + State
	sessionRepo := implementation.NewSessionRepository(db)
	messageRepo := implementation.NewMessageRepository(db)
	walletRepo := implementation.NewWalletRepository(db)

	sessions := state.NewSessionCache(sessionRepo, sysLogger)
	ledger := state.NewMessageLedger(messageRepo, sysLogger)
	credits := state.NewCreditLedger(walletRepo, sysLogger)
	gate := state.NewHydrationGate(
		constant.HydrationFlagSessions,
		constant.HydrationFlagMessages,
		constant.HydrationFlagWallet,
	)

	// Each partition hydrates independently; its flag flips exactly once
	// when deserialization completes, loaded or not.
	go func() {
		if err := sessions.Hydrate(context.Background()); err != nil {
			log.Printf("[WARN] Failed to hydrate sessions: %v", err)
		}
		gate.MarkReady(constant.HydrationFlagSessions)
	}()
	go func() {
		if err := ledger.Hydrate(context.Background()); err != nil {
			log.Printf("[WARN] Failed to hydrate messages: %v", err)
		}
		gate.MarkReady(constant.HydrationFlagMessages)
	}()
	go func() {
		if err := credits.Hydrate(context.Background()); err != nil {
			log.Printf("[WARN] Failed to hydrate wallet: %v", err)
		}
		gate.MarkReady(constant.HydrationFlagWallet)
	}()

	// 4. Backend + Services
	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.AuthToken, cfg.Backend.RequestTimeout)

	publisherService := service.NewPublisherService(constant.ExchangeCompletedTopic, pubSub)
	intimacyService := service.NewIntimacyService(backendClient, pubSub, constant.ExchangeCompletedTopic, sysLogger)
	walletSyncService := service.NewWalletSyncService(
		backendClient,
		credits,
		pubSub,
		constant.ExchangeCompletedTopic,
		cfg.Wallet.ResyncInterval,
		sysLogger,
	)
	chatSyncService := service.NewChatSyncService(
		backendClient,
		sessions,
		ledger,
		credits,
		intimacyService,
		publisherService,
		sysLogger,
	)
	pushRouterService := service.NewPushRouterService(backendClient, navigator, cfg.Push, sysLogger)

	return &Container{
		ChatSync:   chatSyncService,
		Intimacy:   intimacyService,
		PushRouter: pushRouterService,
		WalletSync: walletSyncService,

		Sessions: sessions,
		Ledger:   ledger,
		Credits:  credits,
		Gate:     gate,

		Logger: sysLogger,
	}
}
