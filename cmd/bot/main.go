package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/diegoclair/slack-attendance-bot/internal/config"
	"github.com/diegoclair/slack-attendance-bot/internal/database"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/contract"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/service"
	"github.com/diegoclair/slack-attendance-bot/internal/handlers"
	"github.com/diegoclair/slack-attendance-bot/internal/presence"
	"github.com/diegoclair/slack-attendance-bot/internal/storage/jsonfile"
	"github.com/diegoclair/slack-attendance-bot/migrator/sqlite"
	"github.com/diegoclair/slack-attendance-bot/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logr.Sync() }()

	if err := run(cfg, logr); err != nil {
		logr.Fatal("Bot stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	attendanceStore, reminderStore, closeStores, err := openStores(cfg, logr)
	if err != nil {
		return err
	}
	defer closeStores()

	if cfg.NotificationChannelID == "" {
		logr.Warn("NOTIFICATION_CHANNEL_ID is not set, attendance notifications will be dropped")
	}

	slackClient := slack.New(cfg.SlackBotToken)
	notifier := service.NewSlackNotifier(slackClient, logr.Named("notifier"))

	svc := service.NewInstance(attendanceStore, reminderStore, notifier, logr, service.Options{
		Attendance: service.AttendanceConfig{
			Location:       cfg.Location,
			ChannelID:      cfg.NotificationChannelID,
			Schedules:      cfg.Schedules,
			ExtraUsers:     cfg.ExtraUsers,
			ActiveStatuses: cfg.ActiveStatuses,
			SummaryMode:    cfg.SummaryMode,
		},
		Reminder: service.ReminderConfig{
			Location: cfg.Location,
			Tiers:    cfg.ReminderTiers,
			Policy:   cfg.AckPolicy,
		},
	})

	if err := svc.Load(ctx, time.Now()); err != nil {
		return err
	}

	svc.Scheduler.Start(ctx)
	defer svc.Scheduler.Stop()

	poller := presence.NewPoller(slackClient, svc.Attendance, logr.Named("presence"), cfg.PresencePollPeriod)
	go poller.Run(ctx)

	handler := handlers.New(svc.Reminder, cfg.SlackSigningSecret, logr.Named("handler"))

	mux := http.NewServeMux()
	mux.HandleFunc("/slack/commands", handler.HandleSlashCommand)
	mux.HandleFunc("/health", handler.HandleHealth)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Info("Server starting",
			zap.String("port", cfg.Port),
			zap.String("timezone", cfg.Location.String()),
			zap.Int("tracked_users", len(svc.Attendance.TrackedUserIDs())),
		)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStores(cfg *config.Config, logr *zap.Logger) (contract.AttendanceStore, contract.ReminderStore, func(), error) {
	if cfg.StorageDriver == config.DriverJSON {
		logr.Info("Using JSON stores",
			zap.String("attendance", cfg.AttendanceStorePath),
			zap.String("reminders", cfg.ReminderStorePath),
		)
		return jsonfile.NewAttendanceStore(cfg.AttendanceStorePath), jsonfile.NewReminderStore(cfg.ReminderStorePath), func() {}, nil
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, nil, err
	}

	logr.Info("Running migrations...")
	if err := sqlite.Migrate(db.DB()); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	logr.Info("Migrations completed successfully", zap.String("path", cfg.DatabasePath))

	dm := database.NewInstance(db)
	closeDB := func() {
		if err := db.Close(); err != nil {
			logr.Error("Failed to close database", zap.Error(err))
		}
	}
	return database.NewAttendanceStore(dm), database.NewReminderStore(dm), closeDB, nil
}
