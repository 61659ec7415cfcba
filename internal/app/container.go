package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/infrastructure/cache"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/infrastructure/caldav"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/infrastructure/persistence"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/infrastructure/remote"
	sharedApplication "github.com/felixgeelhaar/lessonboard/internal/shared/application"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/lessonboard/pkg/config"
	"github.com/felixgeelhaar/lessonboard/pkg/observability"
	"github.com/redis/go-redis/v9"
)

// ErrLocalStoreRequired is returned by operations that need the local lesson
// store while a remote back office is configured.
var ErrLocalStoreRequired = errors.New("operation requires the local lesson store (unset BACKOFFICE_URL)")

// LessonFinder looks up one lesson by id.
type LessonFinder interface {
	FindLesson(ctx context.Context, id domain.BookingID) (domain.Booking, error)
}

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Layout BoardLayout

	// Local store; nil when a remote back office is configured.
	DB         database.Connection
	Repository *persistence.LessonRepository
	UnitOfWork sharedApplication.UnitOfWork

	// Back office
	Gateway domain.LessonGateway
	Finder  LessonFinder
	Source  domain.LessonSource

	// Redis read-through cache; nil without REDIS_URL.
	RedisClient *redis.Client
	Cache       *cache.RedisLessonSource

	// Events
	InProcessEventBus *eventbus.InProcessEventBus
	RabbitPublisher   *eventbus.RabbitMQPublisher
	EventPublisher    eventbus.Publisher

	// Lesson Command Handlers
	CreateLessonHandler *commands.CreateLessonHandler
	UpdateLessonHandler *commands.UpdateLessonHandler

	// Lesson Query Handlers
	GetCalendarHandler     *queries.GetCalendarHandler
	ListInstructorsHandler *queries.ListInstructorsHandler

	// CalDAV publication; nil without CALDAV_URL.
	CalDAVPublisher          *caldav.Publisher
	PublishTimetablesHandler *commands.PublishTimetablesHandler

	// Observability
	Health  *observability.HealthRegistry
	Metrics *observability.InMemoryMetrics

	closers []func() error
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Health:  observability.NewHealthRegistry(),
		Metrics: observability.NewInMemoryMetrics(),
	}

	layout, err := LoadBoardLayout(cfg.BoardLayoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load board layout: %w", err)
	}

	if cfg.UsesLocalStore() {
		if err := c.openLocalStore(ctx); err != nil {
			return nil, err
		}
	} else if err := c.openBackOffice(); err != nil {
		return nil, err
	}

	if err := c.openCache(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.openEvents(); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.UseLayout(layout)
	if cfg.CalDAVEnabled() {
		logger.Info("CalDAV publication enabled", "url", cfg.CalDAVURL)
	}

	logger.Info("container initialized",
		"local_store", cfg.UsesLocalStore(),
		"cache", c.Cache != nil,
		"rabbitmq", c.RabbitPublisher != nil,
		"caldav", c.CalDAVPublisher != nil,
	)
	return c, nil
}

// UseLayout switches the board layout and rebuilds the handlers that depend
// on its geometry, palette or type catalog.
func (c *Container) UseLayout(layout BoardLayout) {
	c.Layout = layout
	geometry := layout.Geometry
	c.CreateLessonHandler = commands.NewCreateLessonHandler(c.Gateway, c.EventPublisher, geometry, c.Logger)
	c.UpdateLessonHandler = commands.NewUpdateLessonHandler(c.Gateway, c.EventPublisher, geometry, c.Logger)
	c.GetCalendarHandler = queries.NewGetCalendarHandler(c.Source, c.Logger)
	c.ListInstructorsHandler = queries.NewListInstructorsHandler(c.Source, layout.Palette)

	if c.Config.CalDAVEnabled() {
		cfg := c.Config
		c.CalDAVPublisher = caldav.NewPublisher(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, c.Logger).
			WithCalendarPath(cfg.CalDAVCalendarPath).
			WithDeleteMissing(cfg.CalDAVDeleteMissing).
			WithResolver(layout.Resolver)
		c.PublishTimetablesHandler = commands.NewPublishTimetablesHandler(c.Source, c.CalDAVPublisher, c.Logger)
	}
}

// openLocalStore connects the lesson database. SQLite files are migrated on
// open; PostgreSQL is migrated by the migrate command.
func (c *Container) openLocalStore(ctx context.Context) error {
	conn, err := database.NewConnection(ctx, database.Config{
		URL:        c.Config.DatabaseURL,
		SQLitePath: c.Config.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if conn.Driver() == database.DriverSQLite {
		if err := migrations.Migrate(ctx, conn, "", c.Logger); err != nil {
			_ = conn.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	c.DB = conn
	c.closers = append(c.closers, conn.Close)
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))
	c.Logger.Info("connected to database", "driver", conn.Driver())

	c.Repository = persistence.NewLessonRepository(conn)
	c.UnitOfWork = database.NewUnitOfWork(conn)
	c.Gateway = remote.NewLocalGateway(c.Repository, c.UnitOfWork, c.Logger)
	c.Finder = c.Repository
	c.Source = c.Repository
	return nil
}

// openBackOffice points the gateway and the read side at the remote API.
func (c *Container) openBackOffice() error {
	cfg := remote.DefaultHTTPGatewayConfig(c.Config.BackOfficeURL)
	cfg.Timeout = c.Config.BackOfficeTimeout
	cfg.FailureThreshold = convert.IntToUint32Clamped(c.Config.BreakerFailureThreshold, 1)
	cfg.OpenTimeout = c.Config.BreakerOpenTimeout
	cfg.Interval = c.Config.BreakerInterval
	cfg.MaxRequests = convert.IntToUint32Clamped(c.Config.BreakerHalfOpenMaxRequests, 1)
	cfg.Logger = c.Logger

	gateway, err := remote.NewHTTPGateway(cfg)
	if err != nil {
		return fmt.Errorf("failed to create back-office gateway: %w", err)
	}
	c.Gateway = gateway
	c.Finder = gateway
	c.Source = gateway
	c.Health.Register("backoffice", observability.BreakerHealthChecker("back-office", gateway.BreakerState))
	c.Logger.Info("using remote back office", "url", c.Config.BackOfficeURL)
	return nil
}

// openCache wraps the read side in the Redis cache. Redis is optional unless
// CACHE_REQUIRED is set.
func (c *Container) openCache(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if c.Config.CacheRequired {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, lesson cache disabled", "error", err)
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if c.Config.CacheRequired {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, lesson cache disabled", "error", err)
		return nil
	}

	c.RedisClient = client
	c.closers = append(c.closers, client.Close)
	c.Cache = cache.NewRedisLessonSource(client, c.Source, c.Config.CacheTTL, c.Logger)
	c.Source = c.Cache
	c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis")
	return nil
}

// openEvents sets up the in-process bus, which keeps this process's cache
// fresh, and fans out to RabbitMQ when configured.
func (c *Container) openEvents() error {
	c.InProcessEventBus = eventbus.NewInProcessEventBus(c.Logger)
	if c.Cache != nil {
		c.InProcessEventBus.RegisterConsumer(c.Cache)
	}
	c.EventPublisher = c.InProcessEventBus

	if c.Config.RabbitMQURL == "" {
		return nil
	}
	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Config.RabbitMQExchange, c.Logger)
	if err != nil {
		if c.Config.IsProduction() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, events stay in process", "error", err)
		return nil
	}
	c.RabbitPublisher = publisher
	c.closers = append(c.closers, publisher.Close)
	c.EventPublisher = eventbus.Fanout{publisher, c.InProcessEventBus}
	c.Health.Register("rabbitmq", observability.RabbitMQHealthChecker(publisher.Ping))
	return nil
}

// RequireRepository returns the local store or ErrLocalStoreRequired.
func (c *Container) RequireRepository() (*persistence.LessonRepository, error) {
	if c.Repository == nil {
		return nil, ErrLocalStoreRequired
	}
	return c.Repository, nil
}

// Migrate applies pending migrations to the local store.
func (c *Container) Migrate(ctx context.Context) error {
	if c.DB == nil {
		return ErrLocalStoreRequired
	}
	return migrations.Migrate(ctx, c.DB, c.Config.DatabaseURL, c.Logger)
}

// Close releases every connection in reverse opening order.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
