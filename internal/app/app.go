package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"BangerBoard/internal/config"
	"BangerBoard/internal/infrastructure/console"
	"BangerBoard/internal/infrastructure/discord"
	"BangerBoard/internal/infrastructure/events"
	"BangerBoard/internal/infrastructure/httpapi"
	"BangerBoard/internal/infrastructure/platforms"
	"BangerBoard/internal/infrastructure/scheduler"
	"BangerBoard/internal/infrastructure/storage"
	"BangerBoard/internal/infrastructure/telegram"
	"BangerBoard/internal/logging"
	"BangerBoard/internal/platform"
	"BangerBoard/internal/ports"
	"BangerBoard/internal/token"
	"BangerBoard/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	Repository  ports.Repository
	Submissions *usecase.SubmissionWorkflow
	Scraper     *usecase.ScrapeOrchestrator
	Scheduler   *usecase.Scheduler
	Server      *httpapi.Server

	closers []func() error
}

// New builds every adapter named by cfg. Close releases them.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	repo, err := a.openRepository(ctx)
	if err != nil {
		return nil, err
	}
	a.Repository = repo

	changes := a.changePublisher()

	tokenStore := token.NewMemoryStore()
	tokens := token.NewService(tokenStore, cfg.HTTP.PublicBaseURL, token.WithTTL(cfg.Tokens.TTL))
	gateway := usecase.NewNotificationGateway(tokens, baseLogger, a.messengers()...)

	httpClient := &http.Client{Timeout: cfg.Platforms.HTTPTimeout}

	var inspector ports.PageInspector
	if cfg.Criteria.InspectPages {
		inspector = platforms.NewPageInspector(httpClient)
	}
	evaluator := usecase.NewCriteriaEvaluator(cfg.Criteria.Keywords, inspector, baseLogger.With("component", "criteria"))

	a.Submissions = usecase.NewSubmissionWorkflow(usecase.SubmissionDeps{
		Submissions: repo,
		Shows:       repo,
		Evaluator:   evaluator,
		Reviewers:   gateway,
		Tokens:      tokens,
		Changes:     changes,
		Logger:      baseLogger,
	})

	a.Scraper = usecase.NewScrapeOrchestrator(usecase.ScrapeDeps{
		Shows:    repo,
		Reviews:  repo,
		Registry: newRegistry(cfg.Platforms, httpClient),
		Changes:  changes,
		Logger:   baseLogger,
	})

	var driver ports.Scheduler
	if cfg.Scheduler.Enabled {
		driver = scheduler.NewIntervalScheduler(cfg.Scheduler.Interval, cfg.Scheduler.Location())
	}
	a.Scheduler = usecase.NewScheduler(driver, baseLogger,
		usecase.ScrapeJob(a.Scraper),
		pruneTokensJob(tokenStore, baseLogger),
	)

	a.Server = httpapi.NewServer(a.Submissions, a.Scraper, repo, baseLogger)
	return a, nil
}

// Run serves HTTP and runs the scheduler until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.Server.Listen(a.cfg.HTTP.Addr) }()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown", "error", err)
	}
	if err := a.Scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler shutdown", "error", err)
	}
	return runErr
}

// Close releases storage and broker connections.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func (a *Application) openRepository(ctx context.Context) (ports.Repository, error) {
	driver := a.cfg.Database.Driver
	if driver == "" || driver == config.DriverMemory {
		a.logger.Warn("using in-memory storage; data is lost on restart")
		return storage.NewMemoryRepository(), nil
	}

	dialect, err := storage.DialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(ctx, driver, a.cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	repo := storage.NewSQLRepository(db, dialect)
	if err := repo.Migrate(ctx); err != nil {
		return nil, errors.Join(err, a.Close())
	}
	a.logger.Info("storage ready", "driver", driver)
	return repo, nil
}

func (a *Application) changePublisher() ports.ChangePublisher {
	kafkaCfg := a.cfg.Events.Kafka
	if len(kafkaCfg.Brokers) == 0 {
		return events.NewLogPublisher(a.logger)
	}
	pub := events.NewKafkaPublisher(kafkaCfg.Brokers, kafkaCfg.Topic, a.logger)
	a.closers = append(a.closers, pub.Close)
	a.logger.Info("publishing changes to kafka", "topic", kafkaCfg.Topic, "brokers", len(kafkaCfg.Brokers))
	return pub
}

func (a *Application) messengers() []ports.Messenger {
	n := a.cfg.Notifications
	out := []ports.Messenger{console.NewNotifier(n.ReviewerEmail, a.logger)}

	if n.Telegram.BotToken != "" && n.Telegram.ChatID != "" {
		out = append(out, telegram.NewNotifier(n.Telegram.BotToken, n.Telegram.ChatID))
	}
	if n.Discord.WebhookURL != "" {
		d, err := discord.NewNotifier(n.Discord.WebhookURL)
		if err != nil {
			a.logger.Warn("discord messenger disabled", "error", err)
		} else {
			out = append(out, d)
		}
	}
	return out
}

func newRegistry(cfg config.PlatformConfig, client *http.Client) *platform.Registry {
	return platform.NewRegistry(
		platforms.NewYouTube(platforms.YouTubeConfig{
			APIKey:  cfg.YouTube.APIKey,
			BaseURL: cfg.YouTube.BaseURL,
			FeedURL: cfg.YouTube.FeedURL,
		}, client),
		platforms.NewTwitch(platforms.TwitchConfig{
			ClientID:     cfg.Twitch.ClientID,
			ClientSecret: cfg.Twitch.ClientSecret,
			BaseURL:      cfg.Twitch.BaseURL,
			AuthURL:      cfg.Twitch.AuthURL,
		}, client),
		platforms.NewInstagram(platforms.InstagramConfig{
			AccessToken: cfg.Instagram.AccessToken,
			BaseURL:     cfg.Instagram.BaseURL,
		}, client),
		platforms.NewTikTok(platforms.TikTokConfig{
			AccessToken: cfg.TikTok.AccessToken,
			BaseURL:     cfg.TikTok.BaseURL,
		}, client),
	)
}

func pruneTokensJob(store *token.MemoryStore, logger *slog.Logger) usecase.Job {
	return usecase.Job{Name: "prune-tokens", Run: func(_ context.Context, trigger time.Time) error {
		if n := store.Prune(trigger); n > 0 {
			logger.Info("expired action tokens pruned", "count", n)
		}
		return nil
	}}
}
