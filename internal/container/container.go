package container

import (
	"database/sql"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"nodeguard-platform/internal/config"
	"nodeguard-platform/internal/database"
	"nodeguard-platform/internal/events"
	"nodeguard-platform/internal/handlers"
	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/middleware"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/repositories"
	"nodeguard-platform/internal/server"
	"nodeguard-platform/internal/services"
)

// Module provides dependency injection configuration
var Module = fx.Options(
	// Configuration
	fx.Provide(config.LoadConfig),

	// Logging
	fx.Provide(logger.NewLogger),

	// Database
	fx.Provide(database.NewConnection),
	fx.Provide(func(conn *database.Connection) *gorm.DB {
		return conn.DB
	}),
	fx.Provide(func(conn *database.Connection) (*sql.DB, error) {
		return conn.DB.DB()
	}),
	fx.Provide(database.NewMigrator),
	fx.Provide(database.NewRedisClient),

	// Repositories
	fx.Provide(repositories.NewTenantRepository),
	fx.Provide(repositories.NewUserRepository),
	fx.Provide(repositories.NewWorkflowRepository),
	fx.Provide(repositories.NewIncidentRepository),
	fx.Provide(repositories.NewThreatIndicatorRepository),
	fx.Provide(repositories.NewExecutionRepository),
	fx.Provide(repositories.NewAuditLogRepository),

	// Services
	fx.Provide(services.NewCacheService),
	fx.Provide(func(
		log *logger.Logger,
		tenants repositories.TenantRepository,
		cache *services.CacheService,
		cfg *config.Config,
	) *services.TenantResolver {
		return services.NewTenantResolver(log, tenants, cache, cfg.Tenancy.BaseDomain, cfg.Tenancy.CacheLookup)
	}),
	fx.Provide(services.NewAuthenticationService),
	fx.Provide(services.NewAuthorizationService),
	fx.Provide(services.NewTriggerMatcher),
	fx.Provide(services.NewWorkflowExecutor),
	fx.Provide(services.NewEventProcessor),
	fx.Provide(services.NewHTTPIncidentFeed),
	fx.Provide(services.NewEventPoller),

	// Event stream
	fx.Provide(events.NewStreamConsumer),

	// Handlers
	fx.Provide(handlers.NewHealthHandler),
	fx.Provide(handlers.NewAuthHandler),
	fx.Provide(handlers.NewTenantHandler),
	fx.Provide(handlers.NewWorkflowHandler),
	fx.Provide(handlers.NewIncidentHandler),
	fx.Provide(handlers.NewThreatIntelHandler),

	// Middleware
	fx.Provide(middleware.NewAuthenticationMiddleware),
	fx.Provide(middleware.NewTenantMiddleware),

	// Server
	fx.Provide(server.NewServer),

	// Models (for validation and serialization)
	fx.Provide(models.NewValidationService),

	// Invoke migrations on startup
	fx.Invoke(func(migrator *database.Migrator) error {
		return migrator.Up()
	}),
)
