package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"ai-companion-core/internal/bootstrap"
	"ai-companion-core/internal/config"
	"ai-companion-core/internal/dto"
	"ai-companion-core/pkg/database"

	"github.com/fatih/color"
)

// consoleNavigator stands in for the mobile navigation stack.
type consoleNavigator struct{}

func (consoleNavigator) NavigateToChat(characterId string) {
	color.Magenta(">> push: navigating to chat with %s", characterId)
}

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewSQLiteDB(cfg.App.DBPath)
	if err != nil {
		log.Panicf("Unable to open local store: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg, consoleNavigator{})

	ctx := context.Background()

	// 4. Start Background Services
	if err := container.Intimacy.Consume(ctx); err != nil {
		log.Printf("Background Intimacy Consumer Error: %v", err)
	}
	if err := container.WalletSync.Consume(ctx); err != nil {
		log.Printf("Background Wallet Consumer Error: %v", err)
	}
	container.WalletSync.Start(ctx)
	container.PushRouter.Start(ctx)
	defer container.PushRouter.Stop()
	defer container.WalletSync.Stop()

	// 5. Wait for hydration before touching chat state
	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := container.Gate.Wait(waitCtx); err != nil {
		log.Panicf("Hydration did not complete: %v", err)
	}
	color.Green("hydrated: %d cached sessions, balance %.1f",
		len(container.Sessions.All()), container.Credits.Balance())

	// Cold-start push check
	_ = container.PushRouter.PollPending(ctx)

	runREPL(ctx, container)
}

func runREPL(ctx context.Context, container *bootstrap.Container) {
	var current string
	user := color.New(color.FgCyan)
	assistant := color.New(color.FgYellow)

	fmt.Println("commands: open <characterId> | send <text> | photo | balance | intimacy | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		cmd, arg, _ := strings.Cut(line, " ")

		switch cmd {
		case "open":
			if arg == "" {
				color.Red("usage: open <characterId>")
				continue
			}
			view, err := container.ChatSync.Open(ctx, arg)
			if err != nil {
				color.Red("open failed: %v", err)
				continue
			}
			current = arg
			if view.Session != nil && view.Session.DisplayName != "" {
				color.Green("-- %s --", view.Session.DisplayName)
			}
			for _, m := range view.Messages {
				if m.Role == "user" {
					user.Printf("you: %s\n", m.Content)
				} else {
					assistant.Printf("%s: %s\n", arg, m.Content)
				}
			}
		case "send", "photo":
			if current == "" {
				color.Red("open a chat first")
				continue
			}
			var result *dto.SendResult
			var err error
			if cmd == "photo" {
				result, err = container.ChatSync.RequestPhoto(ctx, current)
			} else {
				result, err = container.ChatSync.Send(ctx, current, arg)
			}
			if err != nil {
				color.Red("send failed: %v", err)
				continue
			}
			assistant.Printf("%s: %s\n", current, result.Reply.Content)
			if result.CreditsDeducted > 0 {
				color.Green("(-%.1f credits, balance %.1f)", result.CreditsDeducted, result.Balance)
			}
		case "balance":
			color.Green("balance: %.1f", container.Credits.Balance())
		case "intimacy":
			if current == "" {
				color.Red("open a chat first")
				continue
			}
			status := container.Intimacy.StatusFor(current)
			color.Green("level %d (%d/%d xp, %d day streak)",
				status.CurrentLevel, status.XpProgressInLevel, status.XpForNextLevel, status.StreakDays)
		case "quit", "exit":
			return
		case "":
		default:
			color.Red("unknown command %q", cmd)
		}
	}
}
