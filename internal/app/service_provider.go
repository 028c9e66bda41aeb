package app

import (
	"context"
	"net/http"
	"time"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	auditAPI "zodiac_backend/internal/api/audit"
	behaviorAPI "zodiac_backend/internal/api/behavior"
	gamingAPI "zodiac_backend/internal/api/gaming"
	sessionAPI "zodiac_backend/internal/api/session"
	streamAPI "zodiac_backend/internal/api/stream"
	"zodiac_backend/internal/config"
	"zodiac_backend/internal/config/env"
	"zodiac_backend/internal/metrics"
	"zodiac_backend/internal/middleware"
	"zodiac_backend/internal/repository"
	"zodiac_backend/internal/repository/audit_backup_repo"
	"zodiac_backend/internal/repository/audit_sink_repo"
	"zodiac_backend/internal/repository/gaming_state_repo"
	"zodiac_backend/internal/repository/player_repo"
	"zodiac_backend/internal/service"
	"zodiac_backend/internal/service/audit"
	"zodiac_backend/internal/service/compliance"
	"zodiac_backend/internal/service/identity"
	"zodiac_backend/pkg/clock"
	"zodiac_backend/pkg/logger"
	"zodiac_backend/pkg/resp"
)

const healthTimeout = 2 * time.Second

type ServiceProvider struct {
	appCfg  config.AppConfig
	logger  *zap.Logger
	clock   clock.Clock
	metrics *metrics.Metrics
	promReg *prometheus.Registry

	//TXManager
	txManager trm.Manager

	// Database
	pgConfig config.PGConfig
	dbClient *pgxpool.Pool

	// Redis
	redisConfig config.RedisConfig
	redisClient *redis.Client

	// Session bits
	jwtConfig  config.JWTConfig
	playerRepo repository.PlayerRepository
	identity   service.IdentityService
	sessHand   *sessionAPI.Handler

	// Compliance bits
	gamingCfg  config.GamingConfig
	auditCfg   config.AuditConfig
	stateRepo  repository.GamingStateRepository
	backupRepo repository.AuditBackupRepository
	sinkRepo   repository.AuditSinkRepository
	compliance service.ComplianceService
	gamingHand *gamingAPI.Handler
	behavHand  *behaviorAPI.Handler
	auditHand  *auditAPI.Handler
	streamHand *streamAPI.Handler

	// Router and HTTP config
	httpCfg config.HTTPConfig
	router  chi.Router
}

func newServiceProvider() *ServiceProvider {
	return &ServiceProvider{}
}

func (sp *ServiceProvider) AppConfig() config.AppConfig {
	if sp.appCfg == nil {
		sp.appCfg = env.NewAppConfig()
	}
	return sp.appCfg
}

func (sp *ServiceProvider) Logger() *zap.Logger {
	if sp.logger == nil {
		sp.logger = logger.New(sp.AppConfig().IsProduction())
	}
	return sp.logger
}

func (sp *ServiceProvider) Clock() clock.Clock {
	if sp.clock == nil {
		sp.clock = clock.Real()
	}
	return sp.clock
}

func (sp *ServiceProvider) PromRegistry() *prometheus.Registry {
	if sp.promReg == nil {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sp.promReg = reg
	}
	return sp.promReg
}

func (sp *ServiceProvider) Metrics() *metrics.Metrics {
	if sp.metrics == nil {
		sp.metrics = metrics.New(sp.PromRegistry())
	}
	return sp.metrics
}

func (sp *ServiceProvider) PgConfig() config.PGConfig {
	if sp.pgConfig == nil {
		cfg, err := env.NewPGConfig()
		if err != nil {
			panic("failed to get database config: " + err.Error())
		}
		sp.pgConfig = cfg
	}
	return sp.pgConfig
}

func (sp *ServiceProvider) DBClient(ctx context.Context) *pgxpool.Pool {
	if sp.dbClient == nil {
		dbc, err := pgxpool.New(ctx, sp.PgConfig().DSN())
		if err != nil {
			panic("failed to create db pool: " + err.Error())
		}
		// Недоступная база не мешает старту: аудит копится в очереди и бэкапе
		if err = dbc.Ping(ctx); err != nil {
			sp.Logger().Warn("audit database unreachable at startup", zap.Error(err))
		}
		sp.dbClient = dbc
	}
	return sp.dbClient
}

func (sp *ServiceProvider) TXManager(ctx context.Context) trm.Manager {
	if sp.txManager == nil {
		m, err := manager.New(trmpgx.NewDefaultFactory(sp.DBClient(ctx)))
		if err != nil {
			panic("failed to create tx manager: " + err.Error())
		}
		sp.txManager = m
	}
	return sp.txManager
}

func (sp *ServiceProvider) RedisConfig() config.RedisConfig {
	if sp.redisConfig == nil {
		cfg, err := env.NewRedisConfig()
		if err != nil {
			panic("failed to get redis config: " + err.Error())
		}
		sp.redisConfig = cfg
	}
	return sp.redisConfig
}

func (sp *ServiceProvider) RedisClient(ctx context.Context) *redis.Client {
	if sp.redisClient == nil {
		cfg := sp.RedisConfig()
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password(),
			DB:       cfg.DB(),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			panic("failed to ping redis: " + err.Error())
		}
		sp.redisClient = rdb
	}
	return sp.redisClient
}

func (sp *ServiceProvider) JWTConfig() config.JWTConfig {
	if sp.jwtConfig == nil {
		cfg, err := env.NewJWTConfig()
		if err != nil {
			panic("failed to get jwt config: " + err.Error())
		}
		sp.jwtConfig = cfg
	}
	return sp.jwtConfig
}

func (sp *ServiceProvider) GamingCfg() config.GamingConfig {
	if sp.gamingCfg == nil {
		sp.gamingCfg = env.NewGamingConfigFromFile("", sp.Logger())
	}
	return sp.gamingCfg
}

func (sp *ServiceProvider) AuditCfg() config.AuditConfig {
	if sp.auditCfg == nil {
		cfg, err := env.NewAuditConfig()
		if err != nil {
			panic("failed to get audit config: " + err.Error())
		}
		sp.auditCfg = cfg
	}
	return sp.auditCfg
}

func (sp *ServiceProvider) PlayerRepository(ctx context.Context) repository.PlayerRepository {
	if sp.playerRepo == nil {
		sp.playerRepo = player_repo.NewPlayerRepository(sp.RedisClient(ctx))
	}
	return sp.playerRepo
}

func (sp *ServiceProvider) GamingStateRepository(ctx context.Context) repository.GamingStateRepository {
	if sp.stateRepo == nil {
		sp.stateRepo = gaming_state_repo.NewGamingStateRepository(sp.RedisClient(ctx))
	}
	return sp.stateRepo
}

func (sp *ServiceProvider) AuditBackupRepository(ctx context.Context) repository.AuditBackupRepository {
	if sp.backupRepo == nil {
		sp.backupRepo = audit_backup_repo.NewAuditBackupRepository(sp.RedisClient(ctx), sp.AuditCfg().BackupCap())
	}
	return sp.backupRepo
}

func (sp *ServiceProvider) AuditSinkRepository(ctx context.Context) repository.AuditSinkRepository {
	if sp.sinkRepo == nil {
		sp.sinkRepo = audit_sink_repo.NewAuditSinkRepository(sp.DBClient(ctx), sp.TXManager(ctx))
	}
	return sp.sinkRepo
}

func (sp *ServiceProvider) ComplianceService(ctx context.Context) service.ComplianceService {
	if sp.compliance == nil {
		sp.compliance = compliance.NewService(
			sp.GamingCfg(),
			audit.OptionsFromConfig(sp.AuditCfg()),
			sp.GamingStateRepository(ctx),
			sp.AuditBackupRepository(ctx),
			sp.AuditSinkRepository(ctx),
			sp.Clock(),
			sp.Logger(),
			sp.Metrics(),
		)
	}
	return sp.compliance
}

func (sp *ServiceProvider) IdentityService(ctx context.Context) service.IdentityService {
	if sp.identity == nil {
		sp.identity = identity.NewService(
			sp.PlayerRepository(ctx),
			sp.ComplianceService(ctx),
			sp.JWTConfig(),
			sp.Clock(),
			sp.Logger(),
		)
	}
	return sp.identity
}

func (sp *ServiceProvider) SessionHandler(ctx context.Context) *sessionAPI.Handler {
	if sp.sessHand == nil {
		sp.sessHand = sessionAPI.NewHandler(sessionAPI.HandlerDeps{
			Identity:   sp.IdentityService(ctx),
			Compliance: sp.ComplianceService(ctx),
			Logger:     sp.Logger(),
		})
	}
	return sp.sessHand
}

func (sp *ServiceProvider) GamingHandler(ctx context.Context) *gamingAPI.Handler {
	if sp.gamingHand == nil {
		sp.gamingHand = gamingAPI.NewHandler(gamingAPI.HandlerDeps{
			Serv:   sp.ComplianceService(ctx),
			Logger: sp.Logger(),
		})
	}
	return sp.gamingHand
}

func (sp *ServiceProvider) BehaviorHandler(ctx context.Context) *behaviorAPI.Handler {
	if sp.behavHand == nil {
		sp.behavHand = behaviorAPI.NewHandler(behaviorAPI.HandlerDeps{
			Serv:   sp.ComplianceService(ctx),
			Logger: sp.Logger(),
		})
	}
	return sp.behavHand
}

func (sp *ServiceProvider) AuditHandler(ctx context.Context) *auditAPI.Handler {
	if sp.auditHand == nil {
		sp.auditHand = auditAPI.NewHandler(auditAPI.HandlerDeps{
			Serv:   sp.ComplianceService(ctx),
			Logger: sp.Logger(),
		})
	}
	return sp.auditHand
}

func (sp *ServiceProvider) StreamHandler(ctx context.Context) *streamAPI.Handler {
	if sp.streamHand == nil {
		sp.streamHand = streamAPI.NewHandler(streamAPI.HandlerDeps{
			Serv:           sp.ComplianceService(ctx),
			AllowedOrigins: sp.HTTPCfg().AllowedOrigins(),
			Logger:         sp.Logger(),
		})
	}
	return sp.streamHand
}

func (sp *ServiceProvider) HTTPCfg() config.HTTPConfig {
	if sp.httpCfg == nil {
		cfg, err := env.NewHTTPConfig()
		if err != nil {
			panic("failed to get http config: " + err.Error())
		}
		sp.httpCfg = cfg
	}
	return sp.httpCfg
}

func (sp *ServiceProvider) Router(ctx context.Context) chi.Router {
	if sp.router == nil {
		r := chi.NewRouter()

		r.Use(chimw.RequestID)
		r.Use(chimw.RealIP)
		r.Use(middleware.RequestLogger(sp.Logger()))
		r.Use(chimw.Recoverer)

		// CORS middleware
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   sp.HTTPCfg().AllowedOrigins(),
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           60 * 15,
		}))

		r.Handle("/metrics", promhttp.HandlerFor(sp.PromRegistry(), promhttp.HandlerOpts{}))
		r.Get("/healthz", sp.health)

		sessionHandler := sp.SessionHandler(ctx)
		r.Post("/session", sessionHandler.Start)

		r.Group(func(rr chi.Router) {
			rr.Use(middleware.Auth(sp.JWTConfig().AccessTokenSecretKey(), sp.Logger()))

			rr.Delete("/session", sessionHandler.End)

			// Spin gate endpoints
			gamingHandler := sp.GamingHandler(ctx)
			rr.Route("/spin", func(sr chi.Router) {
				sr.Post("/", gamingHandler.Spin)
				sr.Post("/confirmations", gamingHandler.RequestConfirmation)
				sr.Post("/confirmations/{id}", gamingHandler.ResolveConfirmation)
			})
			rr.Route("/gaming", func(gr chi.Router) {
				gr.Get("/state", gamingHandler.State)
				gr.Get("/alerts", gamingHandler.Alerts)
				gr.Delete("/alerts/{id}", gamingHandler.DismissAlert)
				gr.Post("/break", gamingHandler.TakeBreak)
			})

			// Behavior endpoints
			behaviorHandler := sp.BehaviorHandler(ctx)
			rr.Route("/behavior", func(br chi.Router) {
				br.Get("/metrics", behaviorHandler.Metrics)
				br.Get("/alerts", behaviorHandler.Alerts)
				br.Get("/audit", behaviorHandler.Audit)
				br.Post("/reset", behaviorHandler.Reset)
			})

			// Audit endpoints
			auditHandler := sp.AuditHandler(ctx)
			rr.Route("/audit", func(ar chi.Router) {
				ar.Post("/events", auditHandler.LogEvent)
				ar.Get("/logs", auditHandler.Logs)
				ar.Get("/rtp", auditHandler.RTP)
				ar.Get("/report", auditHandler.Report)
				ar.Get("/session", auditHandler.Session)
			})

			rr.Get("/alerts/stream", sp.StreamHandler(ctx).Alerts)
		})

		sp.router = r
	}

	return sp.router
}

func (sp *ServiceProvider) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := map[string]string{"redis": "ok", "postgres": "ok"}
	code := http.StatusOK
	if err := sp.RedisClient(ctx).Ping(ctx).Err(); err != nil {
		status["redis"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	// Без Postgres сервис работает: записи ждут в очереди
	if err := sp.DBClient(ctx).Ping(ctx); err != nil {
		status["postgres"] = err.Error()
	}
	resp.WriteJSONResponse(w, code, status)
}

// Close stops every pipeline and releases the connections.
func (sp *ServiceProvider) Close(ctx context.Context) {
	if sp.compliance != nil {
		sp.compliance.Close(ctx)
	}
	if sp.redisClient != nil {
		if err := sp.redisClient.Close(); err != nil {
			sp.Logger().Warn("failed to close redis client", zap.Error(err))
		}
	}
	if sp.dbClient != nil {
		sp.dbClient.Close()
	}
	_ = sp.Logger().Sync()
}
