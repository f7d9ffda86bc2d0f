package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/smartnote/internal/ai"
	"github.com/MrSnakeDoc/smartnote/internal/config"
	"github.com/MrSnakeDoc/smartnote/internal/domain"
	"github.com/MrSnakeDoc/smartnote/internal/httpserver"
	"github.com/MrSnakeDoc/smartnote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartnote/internal/logger"
	"github.com/MrSnakeDoc/smartnote/internal/notes"
	"github.com/MrSnakeDoc/smartnote/internal/redis"
	"github.com/MrSnakeDoc/smartnote/internal/scheduler"
	"github.com/MrSnakeDoc/smartnote/internal/seed"
	"github.com/MrSnakeDoc/smartnote/internal/store"
	filestore "github.com/MrSnakeDoc/smartnote/internal/store/file"
	redisstore "github.com/MrSnakeDoc/smartnote/internal/store/redis"
	"github.com/MrSnakeDoc/smartnote/internal/transcript"
	"github.com/MrSnakeDoc/smartnote/internal/utils"
	"github.com/MrSnakeDoc/smartnote/internal/version"
)

const fragmentBuffer = 64

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	store       *notes.Store
	drafts      *transcript.Registry
	flusher     *scheduler.Flusher
	reaper      *scheduler.DraftReaper
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.NewWithOptions(logger.Options{
		Level:      cfg.LogLevel,
		Pretty:     cfg.PrettyLog,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})

	a := &App{cfg: cfg, logger: loggerClient}

	blobs, err := a.openBlobs(context.Background())
	if err != nil {
		return nil, err
	}

	seedNotes, err := loadSeed(cfg.SeedFile)
	if err != nil {
		return nil, err
	}

	a.store = notes.NewStore(blobs,
		notes.WithSeed(seedNotes),
		notes.WithDefaultPreferences(domain.Preferences{
			ViewMode:       domain.ViewGrid,
			ActiveLanguage: cfg.DefaultLanguage,
		}),
	)

	origin, err := a.store.Rehydrate(context.Background())
	if err != nil {
		// The unread blob is not overwritten; the flusher reads it again and
		// it replaces the seed once the backend answers.
		loggerClient.Warn("failed to read persisted notes, starting from seed, writes held", logger.Error(err))
	}
	loggerClient.Info("notes loaded",
		logger.String("origin", string(origin)),
		logger.Int("count", a.store.Count()),
		logger.String("backend", cfg.StoreBackend))

	gateway := newGateway(cfg, loggerClient)
	service := notes.NewService(a.store, gateway, loggerClient.With(logger.String("component", "notes")))

	if cfg.DictationEnabled {
		a.drafts = transcript.NewPushRegistry(fragmentBuffer)
		a.reaper = scheduler.NewDraftReaper(a.drafts, loggerClient, cfg.DraftGCInterval, cfg.DraftMaxIdle)
	} else {
		loggerClient.Info("dictation disabled")
	}

	flushTrigger := make(chan struct{}, 1)
	a.flusher = scheduler.NewFlusher(a.store, loggerClient, cfg.FlushInterval, flushTrigger)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		Notes:        service,
		Drafts:       a.drafts,
		Blobs:        blobs,
		StoreBackend: cfg.StoreBackend,
		AIProvider:   cfg.AIProvider,
		AI:           gateway,
		AIRateBurst:  cfg.AIRateBurst,
		AIRateRefill: cfg.AIRateRefill,
		FlushTrigger: flushTrigger,
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	return a, nil
}

func (a *App) openBlobs(ctx context.Context) (store.BlobStore, error) {
	cfg := a.cfg
	switch cfg.StoreBackend {
	case config.StoreMemory:
		a.logger.Warn("memory store selected, notes are lost on restart")
		return store.NewMemory(), nil
	case config.StoreFile:
		a.logger.Info("using file store", logger.String("dir", cfg.DataDir))
		s, err := filestore.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open data dir: %w", err)
		}
		return s, nil
	case config.StoreRedis:
		// Fail fast if Redis is unavailable.
		a.logger.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redisClient = client
		a.logger.Info("Redis initialized successfully")
		return redisstore.NewStore(client), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func loadSeed(path string) ([]domain.Note, error) {
	f, err := seed.NewLoader(path).Load()
	if err != nil {
		return nil, err
	}
	seedNotes, err := seed.NewMapper(notes.DefaultColor).MapNotes(f)
	if err != nil {
		return nil, fmt.Errorf("invalid seed notes: %w", err)
	}
	return seedNotes, nil
}

func newGateway(cfg *config.Config, log logger.Logger) ai.Gateway {
	var p ai.Provider
	switch cfg.AIProvider {
	case config.ProviderOpenAI:
		p = ai.NewOpenAI(ai.OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.AITimeout,
		})
	case config.ProviderGemini:
		p = ai.NewGemini(ai.GeminiConfig{
			APIKey:  cfg.GeminiKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.AITimeout,
		})
	default:
		log.Info("no AI provider configured, summarize/translate/chat disabled")
		return ai.Disabled{}
	}

	log.Info("AI provider configured",
		logger.String("provider", p.Name()),
		logger.Duration("cache_ttl", cfg.SummaryCacheTTL))
	return ai.NewCached(ai.NewGateway(p), cfg.SummaryCacheTTL)
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting SmartNote %s on %s", version.String(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.flusher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start flusher: %w", err)
	}
	a.logger.Info("flusher started", logger.Duration("interval", a.cfg.FlushInterval))

	if a.reaper != nil {
		if err := a.reaper.Start(ctx); err != nil {
			return fmt.Errorf("failed to start draft reaper: %w", err)
		}
		a.logger.Info("draft reaper started",
			logger.Duration("interval", a.cfg.DraftGCInterval),
			logger.Duration("max_idle", a.cfg.DraftMaxIdle))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.shutdown()
	return err
}

// shutdown stops background jobs after the server has drained, then writes
// any unsaved change.
func (a *App) shutdown() {
	if a.reaper != nil {
		a.reaper.Stop()
	}
	if a.drafts != nil {
		a.drafts.StopAll()
	}
	a.flusher.Stop()

	if a.store.Dirty() {
		a.logger.Error("unsaved changes remain after final flush")
	}

	if a.redisClient != nil {
		if err := utils.CloseLogged(a.redisClient, a.logger, "redis"); err == nil {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ SmartNote stopped cleanly")
	_ = a.logger.Sync()
}
