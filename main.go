package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"workshop-order-bot/internal/antispam"
	"workshop-order-bot/internal/catalog"
	"workshop-order-bot/internal/feedback"
	"workshop-order-bot/internal/fsm"
	"workshop-order-bot/internal/intake"
	"workshop-order-bot/internal/notify"
	"workshop-order-bot/internal/order"
	"workshop-order-bot/internal/pkg/config"
	"workshop-order-bot/internal/pkg/metrics"
	"workshop-order-bot/internal/pkg/periodic"
	"workshop-order-bot/internal/presentation"
	"workshop-order-bot/internal/review"
	"workshop-order-bot/internal/storage"
	"workshop-order-bot/internal/telegram"
	"workshop-order-bot/internal/user"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	setupLogger(&cfg.Log)

	db, err := storage.Open(ctx, &cfg.DB)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	loc := cfg.Workshop.Location()
	orderService := order.NewDefaultService(order.NewDefaultRepo(db), nil)
	userService := user.NewDefaultService(user.NewDefaultRepo(db), loc, nil)
	reviewService := review.NewDefaultService(review.NewDefaultRepo(db), nil)
	spamRepo := antispam.NewDefaultRepo(db, nil)
	admins := user.NewAdmins(cfg.Telegram.StaffIDs, userService)
	limiter := antispam.NewLimiter(&cfg.AntiSpam, spamRepo, nil)

	serviceCatalog := catalog.New(&cfg.Catalog)
	schedule := catalog.NewSchedule(&cfg.Workshop)
	workshop := presentation.Workshop{
		Phone:      cfg.Workshop.Phone,
		Address:    cfg.Workshop.Address,
		Hours:      schedule.Summary(),
		ReviewsURL: cfg.Workshop.ReviewsURL,
	}

	bot, err := telegram.NewBot(&cfg.Telegram)
	if err != nil {
		log.Fatal(err)
	}

	sessions := fsm.NewFSM(nil)
	router := fsm.NewRouter(sessions)
	fanout := notify.NewFanout(bot, admins, serviceCatalog, workshop, loc, cfg.Notify.PerSecond)
	intakeFlow := intake.NewFlow(intake.Deps{
		Router:   router,
		Channel:  bot,
		Orders:   orderService,
		Users:    userService,
		Admins:   admins,
		Catalog:  serviceCatalog,
		Schedule: schedule,
		Notifier: fanout,
		Workshop: workshop,
	})
	reviewFlow := review.NewFlow(router, bot, reviewService, orderService, fanout, workshop, loc)

	dispatcher := telegram.NewDispatcher(telegram.DispatcherDeps{
		Sessions:       sessions,
		Router:         router,
		Channel:        bot,
		Users:          userService,
		Admins:         admins,
		Orders:         orderService,
		Reviews:        reviewService,
		SpamLogs:       spamRepo,
		Stats:          db,
		Limiter:        limiter,
		Catalog:        serviceCatalog,
		Assistant:      catalog.NewAssistant(serviceCatalog),
		Intake:         intakeFlow,
		ReviewFlow:     reviewFlow,
		Fanout:         fanout,
		Workshop:       workshop,
		Location:       loc,
		OperatorChatID: cfg.Telegram.OperatorChatID,
	})
	bot.Start(ctx, dispatcher)

	sweep := feedback.NewSweep(orderService, reviewFlow, &cfg.Feedback)
	sweep.Start(ctx)

	housekeeping := periodic.NewLoop("housekeeping", cfg.Session.ReapInterval, cfg.Session.ReapInterval, func(ctx context.Context) {
		reaped := sessions.Reap(cfg.Session.TTL)
		pruned := limiter.Prune()
		if reaped > 0 || pruned > 0 {
			slog.Info("Housekeeping finished", "sessionsReaped", reaped, "windowsPruned", pruned)
		}
	})
	housekeeping.Start(ctx)

	metricsServer := startMetricsServer(&cfg.Metrics)

	<-ctx.Done()
	slog.Info("Shutting down...")
	ctx, shutdown := context.WithTimeout(context.Background(), time.Second*15)
	defer shutdown()

	if err := dispatcher.Drain(ctx); err != nil {
		slog.Error("Handlers still running at shutdown", "error", err)
	}
	if err := sweep.Stop(ctx); err != nil {
		slog.Error("Feedback sweep did not stop", "error", err)
	}
	if err := housekeeping.Stop(ctx); err != nil {
		slog.Error("Housekeeping did not stop", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			slog.Error("Metrics server did not stop", "error", err)
		}
	}
	if err := db.Close(); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(cfg *config.LogCfg) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.JSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// startMetricsServer serves /metrics when an address is configured.
func startMetricsServer(cfg *config.MetricsCfg) *http.Server {
	if cfg.Addr == "" {
		return nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(reg); err != nil {
		log.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("Serving metrics", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	return server
}
