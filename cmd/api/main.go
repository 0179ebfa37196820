package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/xavierca1/autovault-agents/internal/agent"
	"github.com/xavierca1/autovault-agents/internal/config"
	"github.com/xavierca1/autovault-agents/internal/infra/ai"
	"github.com/xavierca1/autovault-agents/internal/infra/breaker"
	"github.com/xavierca1/autovault-agents/internal/infra/database"
	"github.com/xavierca1/autovault-agents/internal/infra/http/handlers"
	"github.com/xavierca1/autovault-agents/internal/infra/integration/whatsapp"
	"github.com/xavierca1/autovault-agents/internal/infra/logger"
	"github.com/xavierca1/autovault-agents/internal/infra/mail"
	"github.com/xavierca1/autovault-agents/internal/infra/memory"
	"github.com/xavierca1/autovault-agents/internal/infra/queue"
	"github.com/xavierca1/autovault-agents/internal/infra/worker"
	"github.com/xavierca1/autovault-agents/internal/usecase"
)

type repositories struct {
	leads         usecase.LeadRepository
	dealers       usecase.DealerRepository
	vehicles      usecase.VehicleRepository
	notifications usecase.NotificationRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Repositories
	var (
		repos repositories
		db    handlers.Pinger
	)
	if cfg.DatabaseURL != "" {
		conn, err := database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer conn.Close()
		db = conn
		repos = repositories{
			leads:         database.NewLeadRepository(conn),
			dealers:       database.NewDealerRepository(conn),
			vehicles:      database.NewVehicleRepository(conn),
			notifications: database.NewNotificationRepository(conn),
		}
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory store")
		store := memory.NewStore()
		repos = repositories{leads: store, dealers: store, vehicles: store, notifications: store}
	}

	// 2. AI, breaker, mail
	breakers := breaker.NewRegistry(breaker.Settings{
		FailureThreshold: cfg.Breaker.Failures,
		OpenTimeout:      cfg.Breaker.OpenTimeout,
	})
	var completer usecase.Completer
	if client := ai.New(ai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		Timeout: cfg.OpenAI.Timeout,
	}); client != nil {
		completer = client
		slog.Info("ai completion enabled", "model", client.Model())
	} else {
		slog.Info("OPENAI_API_KEY not set, using rule and template fallbacks")
	}
	assistant := usecase.NewAssistant(completer, breakers)

	var mailer usecase.Mailer
	if cfg.Mail.Enabled() {
		sender := mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From)
		sender.BaseURL = cfg.Mail.AppURL
		mailer = sender
	}

	// 3. Processor and emitter
	processor := agent.NewProcessor(agent.Actions{}, agent.Options{
		ActionTimeout:   cfg.ActionTimeout,
		InlineSweepRate: cfg.InlineSweepRate,
	})

	var (
		emitter usecase.EventEmitter = processor
		rabbit  *queue.RabbitMQ
		broker  handlers.Broker
	)
	if cfg.AMQPURL != "" {
		rabbit, err = queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			slog.Error("rabbitmq connection failed", "error", err)
			os.Exit(1)
		}
		defer rabbit.Close()
		// publishing gets its own channel
		pubCh, err := rabbit.Conn.Channel()
		if err != nil {
			slog.Error("rabbitmq publish channel failed", "error", err)
			os.Exit(1)
		}
		emitter = queue.NewEventPublisher(pubCh)
		broker = rabbit
	}

	// 4. Use cases
	warnUnresponsive := usecase.NewWarnUnresponsiveLeadsUseCase(repos.leads, repos.dealers, repos.notifications)
	notifyHotLead := usecase.NewNotifyHotLeadUseCase(repos.leads, repos.dealers, repos.notifications, mailer)
	if wa := whatsapp.NewClient(whatsapp.Config{
		AccessToken: cfg.WhatsApp.AccessToken,
		PhoneID:     cfg.WhatsApp.PhoneID,
	}); wa != nil {
		notifyHotLead.WhatsApp = wa
	}
	processor.Bind(agent.Actions{
		AnalyzeSentiment: usecase.NewAnalyzeSentimentUseCase(repos.leads, emitter, assistant),
		AutoReply:        usecase.NewAutoReplyUseCase(repos.leads, repos.dealers, emitter, assistant),
		NotifyHotLead:    notifyHotLead,
		CheckTrending:    usecase.NewCheckTrendingVehicleUseCase(repos.vehicles, emitter),
		WarnUnresponsive: warnUnresponsive,
	})

	// 5. Workers
	var workers sync.WaitGroup
	if rabbit != nil {
		consumer := queue.NewWorker(rabbit.Ch, processor)
		consumer.Timeout = cfg.ActionTimeout
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := consumer.Start(ctx, queue.QueueName); err != nil {
				slog.Error("queue worker failed", "error", err)
				stop()
			}
		}()
	}

	sweep, err := worker.NewUnresponsiveSweepWorker(repos.dealers, warnUnresponsive, cfg.SweepSchedule)
	if err != nil {
		slog.Error("invalid sweep schedule", "error", err)
		os.Exit(1)
	}
	sweep.RunOnStart = cfg.SweepOnStart
	workers.Add(1)
	go func() {
		defer workers.Done()
		sweep.Start(ctx)
	}()

	limiter := handlers.NewRateLimiter(120, time.Minute)
	go limiter.Cleanup(ctx, 10*time.Minute)

	// 6. HTTP
	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: newRouter(routes{
			events:   handlers.NewEventHandler(emitter, limiter),
			passport: handlers.NewPassportHandler(),
			health:   handlers.NewHealthHandler(db, broker, completer != nil),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}

	workers.Wait()
	processor.Wait()
	slog.Info("shutdown complete")
}
