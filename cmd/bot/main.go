package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/receptionist_bot/internal/app"
	"github.com/Freeeeeet/receptionist_bot/internal/config"
	"github.com/Freeeeeet/receptionist_bot/internal/controller"
	"github.com/Freeeeeet/receptionist_bot/internal/dialog"
	"github.com/Freeeeeet/receptionist_bot/internal/ledger"
	"github.com/Freeeeeet/receptionist_bot/internal/repository"
	"github.com/Freeeeeet/receptionist_bot/internal/schedule"
	"github.com/Freeeeeet/receptionist_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.BusinessName, cfg.Timezone)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	// Часы салона: всё ядро живёт в одной фиксированной таймзоне
	location := cfg.Location()
	clock := func() time.Time { return time.Now().In(location) }

	serviceRepo := repository.NewServiceRepository(pool)
	hoursRepo := repository.NewHoursRepository(pool)
	calendarRepo := repository.NewCalendarRepository(pool)

	resolver := schedule.NewResolver(hoursRepo, calendarRepo, cfg.SlotIntervalMinutes, clock, logger)
	bookingLedger := ledger.NewLedger(resolver, calendarRepo, clock, logger)

	sessions := dialog.NewManager()
	machine := dialog.NewMachine(serviceRepo, resolver, bookingLedger, clock, logger)
	reception := service.NewReceptionService(serviceRepo, resolver, bookingLedger, calendarRepo, sessions, clock, logger)

	botInstance, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	handlers := controller.NewHandlers(reception, machine, sessions, calendarRepo, clock, cfg.BusinessName, logger)
	botController := controller.NewBotController(botInstance, handlers, logger)
	botController.RegisterHandlers(ctx)

	// Таймзона и имя салона уже висят на логгере
	logger.Info("Starting receptionist bot",
		zap.String("environment", cfg.Environment),
		zap.Int("slot_interval_minutes", cfg.SlotIntervalMinutes),
	)

	botController.Start(ctx)

	logger.Info("Bot stopped")
}
