package bootstrap

import (
	"context"
	"fmt"

	"wellbeing_server/adapter/out/auditlog"
	"wellbeing_server/adapter/out/mongodb"
	"wellbeing_server/adapter/out/persistence"
	"wellbeing_server/config"
	"wellbeing_server/core/agent/llm"
	"wellbeing_server/core/domain"
	"wellbeing_server/core/port/in"
	"wellbeing_server/core/port/out"
	"wellbeing_server/core/service/admin"
	"wellbeing_server/core/service/analysis"
	"wellbeing_server/core/service/employee"
	"wellbeing_server/infra/database"
	"wellbeing_server/pkg/cache"
	"wellbeing_server/pkg/httputil"
	"wellbeing_server/pkg/logger"
	"wellbeing_server/pkg/metrics"
	"wellbeing_server/pkg/resilience"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type Dependencies struct {
	Config  *config.Config
	Metrics *metrics.Collector

	PGPool  *pgxpool.Pool
	DB      *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client

	// Repositories
	EmployeeRepo out.EmployeeRepository
	ThemeRepo    out.ThemeRepository
	StatsRepo    out.StatsRepository
	Audit        out.AuditSink
	Gateway      out.AnalysisGateway
	LLMBreaker   *resilience.CircuitBreaker

	// Services
	ThemeService    *analysis.ThemeService
	AnalysisService in.AnalysisService
	EmployeeService in.EmployeeService
	AdminService    in.AdminService
}

// NewDependencies connects storage, runs migrations, wires services and seeds
// the theme registry. Redis and MongoDB are optional.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg, Metrics: metrics.NewCollector()}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Database
	switch cfg.DBDriver {
	case "sqlite":
		db, err := database.NewSQLite(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		deps.DB = db
		cleanups = append(cleanups, func() { db.Close() })
		logger.Info("SQLite database opened")
	default:
		pool, err := database.NewPostgresWithConfig(ctx, cfg.DatabaseURL, database.DefaultPostgresConfig(cfg.DBMaxConns))
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		deps.PGPool = pool
		deps.DB = database.NewPostgresSQLX(pool)
		cleanups = append(cleanups, func() {
			deps.DB.Close()
			pool.Close()
		})
		logger.Info("PostgreSQL connection successful (pool: max=%d)", cfg.DBMaxConns)
	}

	if err := persistence.Migrate(ctx, deps.DB); err != nil {
		cleanup()
		return nil, nil, err
	}

	// Redis
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis connection failed: %v", err)
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })
		}
	}

	// MongoDB
	if cfg.MongoDBURL != "" {
		mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDBURL)
		if err != nil {
			logger.Warn("MongoDB connection failed: %v", err)
		} else {
			deps.MongoDB = mongoClient
			cleanups = append(cleanups, func() {
				mongoClient.Disconnect(context.Background())
			})
		}
	}

	// Repositories
	deps.EmployeeRepo = persistence.NewEmployeeAdapter(deps.DB)
	deps.StatsRepo = persistence.NewStatsAdapter(deps.DB)
	deps.ThemeRepo = persistence.NewThemeAdapter(deps.DB)
	if deps.Redis != nil {
		deps.ThemeRepo = persistence.NewCachedThemeAdapter(deps.ThemeRepo, cache.NewRedisCache(deps.Redis), cfg.ThemeCacheTTL)
		logger.Info("Theme registry cache enabled (ttl=%v)", cfg.ThemeCacheTTL)
	}

	if deps.MongoDB != nil {
		auditAdapter := mongodb.NewAuditAdapter(deps.MongoDB.Database(cfg.MongoDBName))
		if err := auditAdapter.EnsureIndexes(ctx); err != nil {
			logger.Warn("Failed to create audit indexes: %v", err)
		}
		deps.Audit = auditAdapter
	} else {
		deps.Audit = auditlog.NewSink(logger.Default())
	}

	// Language model gateway
	client := llm.NewClientWithConfig(llm.ClientConfig{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: &cfg.LLMTemperature,
		HTTPClient:  httputil.NewClient(httputil.LLMClientConfig(cfg.LLMTimeout())),
	})
	deps.LLMBreaker = resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("llm"), func(name, from, to string) {
		logger.Warn("Circuit breaker %s: %s -> %s", name, from, to)
	})
	deps.Gateway = llm.NewGateway(client, llm.GatewayConfig{
		SystemPrompt:     cfg.Pack.Prompts.System,
		AnalysisPrompt:   cfg.Pack.Prompts.Analysis,
		FallbackResponse: cfg.Pack.FallbackResponse,
		Timeout:          cfg.LLMTimeout(),
		StrictSchema:     cfg.LLMStrictSchema,
	}, deps.LLMBreaker, logger.Default())

	// Services
	deps.ThemeService = analysis.NewThemeService(deps.ThemeRepo, ThemeSeeds(cfg.Pack), logger.Default())
	deps.AnalysisService = analysis.NewService(analysis.ServiceDeps{
		Vocabulary: NewVocabulary(cfg.Pack),
		Gateway:    deps.Gateway,
		Themes:     deps.ThemeRepo,
		Stats:      deps.StatsRepo,
		Audit:      deps.Audit,
		Metrics:    deps.Metrics,
		Logger:     logger.Default(),
	})
	deps.EmployeeService = employee.NewService(deps.EmployeeRepo)
	deps.AdminService = admin.NewService(deps.StatsRepo, deps.Metrics, logger.Default())

	// Seed data
	seeded, err := deps.ThemeService.EnsureSeeded(ctx)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("seed themes: %w", err)
	}
	if seeded > 0 {
		logger.Info("Seeded %d psychological themes", seeded)
	}

	if cfg.SeedDemoEmployee {
		demo, err := deps.EmployeeService.EnsureDemoEmployee(ctx)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		logger.Info("Demo employee ready: id=%d", demo.ID)
	}

	return deps, cleanup, nil
}

// NewVocabulary maps a language pack onto the analysis vocabulary.
func NewVocabulary(pack *config.LanguagePack) *analysis.Vocabulary {
	return &analysis.Vocabulary{
		DistressSignals:   pack.DistressSignals,
		Racism:            pack.Topics.Racism,
		Harassment:        pack.Topics.Harassment,
		Discrimination:    pack.Topics.Discrimination,
		Stress:            pack.Topics.Stress,
		Conflict:          pack.Topics.Conflict,
		SensitiveTerms:    pack.SensitiveTerms,
		WorkplaceKeywords: pack.WorkplaceKeywords,
		RefusalMarker:     pack.RefusalMarker,
		FallbackResponse:  pack.FallbackResponse,
		EmployeeNotFound:  pack.EmployeeNotFound,
		CannedResponses: map[domain.Topic]string{
			domain.TopicRacism:         pack.CannedResponses.Racism,
			domain.TopicHarassment:     pack.CannedResponses.Harassment,
			domain.TopicDiscrimination: pack.CannedResponses.Discrimination,
			domain.TopicStress:         pack.CannedResponses.Stress,
			domain.TopicConflict:       pack.CannedResponses.Conflict,
			domain.TopicGeneric:        pack.CannedResponses.Generic,
		},
	}
}

// ThemeSeeds returns the pack's default themes.
func ThemeSeeds(pack *config.LanguagePack) []analysis.ThemeSeed {
	seeds := make([]analysis.ThemeSeed, len(pack.Themes))
	for i, t := range pack.Themes {
		seeds[i] = analysis.ThemeSeed{Name: t.Name, Description: t.Description}
	}
	return seeds
}
