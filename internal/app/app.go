// Package app assembles Data Vista from a config.Config: the store, the
// services and controllers, the event pipeline and the HTTP routes.
//
//	a, err := app.New(ctx, cfg)
//	if err != nil { ... }
//	defer a.Close(context.Background())
//	a.Start(ctx)
//	h, err := a.Handler()
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/vitthalk15/DataDash/app/controllers"
	appgraphql "github.com/vitthalk15/DataDash/app/graphql"
	"github.com/vitthalk15/DataDash/app/jobs"
	"github.com/vitthalk15/DataDash/app/listeners"
	"github.com/vitthalk15/DataDash/app/repositories"
	"github.com/vitthalk15/DataDash/app/repositories/memstore"
	"github.com/vitthalk15/DataDash/app/repositories/mongostore"
	"github.com/vitthalk15/DataDash/app/repositories/sqlstore"
	"github.com/vitthalk15/DataDash/app/routes"
	"github.com/vitthalk15/DataDash/app/services"
	"github.com/vitthalk15/DataDash/config"
	"github.com/vitthalk15/DataDash/pkg/auth"
	"github.com/vitthalk15/DataDash/pkg/cache"
	"github.com/vitthalk15/DataDash/pkg/database"
	"github.com/vitthalk15/DataDash/pkg/event"
	"github.com/vitthalk15/DataDash/pkg/kafka"
	"github.com/vitthalk15/DataDash/pkg/logger"
	"github.com/vitthalk15/DataDash/pkg/mail"
	"github.com/vitthalk15/DataDash/pkg/metrics"
	"github.com/vitthalk15/DataDash/pkg/middleware"
	"github.com/vitthalk15/DataDash/pkg/queue"
	"github.com/vitthalk15/DataDash/pkg/reqid"
	"github.com/vitthalk15/DataDash/pkg/router"
	"github.com/vitthalk15/DataDash/pkg/schedule"
	"github.com/vitthalk15/DataDash/pkg/storage"
	"github.com/vitthalk15/DataDash/pkg/workerpool"
	"github.com/vitthalk15/DataDash/pkg/ws"
)

// App owns every long-lived component. Close releases them in reverse
// order of construction.
type App struct {
	Config *config.Config

	Store  repositories.Store
	DB     *gorm.DB // nil unless the store is SQL
	Disk   storage.Disk
	Redis  *redis.Client
	Cache  cache.Store
	Mailer mail.Mailer

	Pool      *workerpool.Pool
	Events    *event.Dispatcher
	Queue     *queue.Queue
	Hub       *ws.Hub
	Kafka     *kafka.Publisher
	Scheduler *schedule.Scheduler

	Orders    *services.OrderService
	Products  *services.ProductService
	Users     *services.UserService
	Analytics *services.AnalyticsService

	router  *router.Router
	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

func (a *App) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// New connects every backend named by cfg. A failure closes whatever was
// already opened.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{Config: cfg}
	if err := a.build(ctx, cfg); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, cfg *config.Config) error {
	var err error
	if a.Store, a.DB, err = OpenStore(ctx, cfg); err != nil {
		return err
	}
	a.onClose("store", a.Store.Close)

	if a.Disk, err = storage.Open(ctx, storageConfig(cfg)); err != nil {
		return err
	}

	if cfg.Queue.Driver == "redis" || cfg.Cache.Driver == "redis" {
		if a.Redis, err = connectRedis(ctx, cfg.Redis); err != nil {
			return err
		}
		a.onClose("redis", func(context.Context) error { return a.Redis.Close() })
	}
	a.Cache = cache.NewMemory()
	if cfg.Cache.Driver == "redis" {
		a.Cache = cache.NewRedis(a.Redis, "datavista:cache")
	}

	a.Mailer = newMailer(cfg.Mail)
	a.buildEvents(cfg)
	a.buildQueue(cfg)
	a.buildServices(cfg)

	listeners.Register(a.Events, listeners.Deps{
		Feed:  a.Hub,
		Kafka: optionalPublisher(a.Kafka),
		Queue: a.Queue,
		Cache: a.Cache,
	})

	return a.buildScheduler(cfg)
}

// OpenStore connects the repository backend selected by STORE_DRIVER. The
// gorm handle is returned for SQL drivers so callers can migrate it.
func OpenStore(ctx context.Context, cfg *config.Config) (repositories.Store, *gorm.DB, error) {
	switch {
	case cfg.Store.Driver == "memory":
		return memstore.New(), nil, nil
	case cfg.Store.Driver == "mongo":
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI)
		if err != nil {
			return nil, nil, err
		}
		st := mongostore.New(client, cfg.MongoDB.Database)
		if err := st.EnsureIndexes(ctx); err != nil {
			_ = st.Close(context.Background())
			return nil, nil, err
		}
		return st, nil, nil
	case cfg.IsSQL():
		db, err := database.OpenSQL(ctx, cfg.Store.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		return sqlstore.New(db), db, nil
	default:
		return nil, nil, fmt.Errorf("app: unsupported store driver %q", cfg.Store.Driver)
	}
}

// SetupLogging installs the base logger and, when LOG_MONGO_URI is set, the
// MongoDB sink. An unreachable sink is logged and skipped. The returned
// func flushes the sink.
func SetupLogging(ctx context.Context, cfg *config.Config) func(context.Context) error {
	logger.Setup(cfg.App.Env, os.Stdout)
	if cfg.Log.MongoURI == "" {
		return func(context.Context) error { return nil }
	}
	sink, err := logger.NewMongoHandler(ctx, cfg.Log.MongoURI, cfg.Log.MongoDatabase, cfg.Log.MongoCollection)
	if err != nil {
		logger.Warn("app: mongo log sink disabled", "error", err)
		return func(context.Context) error { return nil }
	}
	logger.Setup(cfg.App.Env, os.Stdout, sink)
	return sink.Close
}

// ─── Components ───────────────────────────────────────────────────────────────

func storageConfig(cfg *config.Config) storage.Config {
	return storage.Config{
		Disk:      cfg.Storage.Disk,
		LocalRoot: cfg.Storage.LocalRoot,
		URL:       cfg.Storage.URL,
		S3: storage.S3Options{
			Bucket:   cfg.S3.Bucket,
			Region:   cfg.S3.Region,
			Key:      cfg.S3.Key,
			Secret:   cfg.S3.Secret,
			Endpoint: cfg.S3.Endpoint,
			URL:      cfg.S3.URL,
		},
	}
}

func connectRedis(ctx context.Context, rc config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("app: redis ping %s: %w", rc.Addr, err)
	}
	return rdb, nil
}

func newMailer(mc config.MailConfig) mail.Mailer {
	if mc.Username == "" {
		return mail.Log{}
	}
	return mail.NewSMTP(mail.SMTPConfig{
		Host:     mc.Host,
		Port:     mc.Port,
		Username: mc.Username,
		Password: mc.Password,
		From:     mc.From,
		FromName: mc.FromName,
	})
}

func (a *App) buildEvents(cfg *config.Config) {
	a.Hub = ws.NewHub()
	a.onClose("websocket hub", func(context.Context) error { a.Hub.Stop(); return nil })

	pub, err := kafka.NewPublisher(kafka.Brokers(cfg.Kafka.Brokers), cfg.Kafka.Topic)
	switch {
	case errors.Is(err, kafka.ErrDisabled):
	case err != nil:
		logger.Warn("app: kafka publisher disabled", "error", err)
	default:
		a.Kafka = pub
		a.onClose("kafka", func(context.Context) error { return pub.Close() })
	}

	// Registered after its sinks so pending listeners drain before they close.
	a.Pool = workerpool.New("events", 8)
	a.onClose("event pool", func(context.Context) error { a.Pool.Shutdown(); return nil })
	a.Events = event.New(a.Pool)
}

func (a *App) buildQueue(cfg *config.Config) {
	var driver queue.Driver = queue.NewMemoryDriver(256)
	if cfg.Queue.Driver == "redis" {
		driver = queue.NewRedisDriver(a.Redis, "datavista:queue")
	}
	opts := []queue.Option{queue.WithMaxRetry(cfg.Queue.MaxRetry)}
	if a.DB != nil {
		opts = append(opts, queue.WithFailedStore(queue.NewDBFailedStore(a.DB)))
	}
	a.Queue = queue.New(driver, opts...)
	jobs.Register(a.Queue, &jobs.Deps{
		Orders:   a.Store.Orders(),
		Products: a.Store.Products(),
		Users:    a.Store.Users(),
		Mailer:   a.Mailer,
	})
}

func (a *App) buildServices(cfg *config.Config) {
	tokens := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.TTL)
	a.Products = services.NewProductService(a.Store.Products(), a.Disk, services.WithProductPublisher(a.Events))
	a.Users = services.NewUserService(a.Store.Users(), tokens, a.Disk)
	a.Orders = services.NewOrderService(a.Store.Orders(), a.Store.Products(),
		services.WithTransitionPolicy(services.PolicyFor(cfg.Order.StrictTransitions)),
		services.WithPublisher(a.Events),
	)
	a.Analytics = services.NewAnalyticsService(a.Store.Orders(), a.Store.Products(), a.Store.Users(),
		services.WithDashboardCache(a.Cache, cfg.Cache.DashboardTTL),
	)
}

func (a *App) buildScheduler(cfg *config.Config) error {
	a.Scheduler = schedule.New()
	if cfg.Schedule.LowStockCron == "" {
		return nil
	}
	threshold := cfg.Schedule.LowStockThreshold
	return a.Scheduler.Cron(cfg.Schedule.LowStockCron).
		Name("low-stock-digest").
		WithoutOverlapping().
		Run(func(ctx context.Context) error {
			return a.Queue.Dispatch(ctx, &jobs.LowStockDigest{Threshold: threshold})
		})
}

// optionalPublisher keeps a nil *kafka.Publisher from becoming a non-nil
// interface.
func optionalPublisher(p *kafka.Publisher) listeners.Publisher {
	if p == nil {
		return nil
	}
	return p
}

// ─── HTTP ─────────────────────────────────────────────────────────────────────

// Router builds the routes on first use.
func (a *App) Router() (*router.Router, error) {
	if a.router != nil {
		return a.router, nil
	}
	cfg := a.Config
	base := controllers.Base{Debug: cfg.Debug()}

	gql, err := appgraphql.Handler(a.Analytics)
	if err != nil {
		return nil, fmt.Errorf("app: graphql schema: %w", err)
	}

	r := router.New()
	r.Use(
		metrics.Middleware(),
		middleware.Recovery(cfg.Debug()),
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(cfg.Frontend.URL),
		middleware.NewRateLimiter(cfg.HTTP.RateLimitPerMinute, time.Minute).Middleware,
		middleware.BodyLimit(cfg.HTTP.MaxBodyBytes),
	)

	h := routes.Handlers{
		Orders:    controllers.NewOrderController(a.Orders, base),
		Products:  controllers.NewProductController(a.Products, base),
		Users:     controllers.NewUserController(a.Users, base),
		Health:    controllers.NewHealthController(a.Store, cfg.App.Name, base),
		Auth:      a.Users.Authenticate,
		GraphQL:   gql,
		OrderFeed: a.Hub.Handler(ws.AllowOrigins(cfg.Frontend.URL)),
		Metrics:   metrics.Handler(),
	}
	if local, ok := a.Disk.(*storage.Local); ok {
		h.Files = local.Handler()
	}
	routes.RegisterAPI(r, h)

	a.router = r
	return r, nil
}

func (a *App) Handler() (http.Handler, error) {
	r, err := a.Router()
	if err != nil {
		return nil, err
	}
	return r.Handler(), nil
}

// ─── Lifecycle ────────────────────────────────────────────────────────────────

// Start runs the background loops (websocket hub, queue workers,
// scheduler) until ctx is done.
func (a *App) Start(ctx context.Context) {
	go a.Hub.Run(ctx)
	if n := a.Config.Queue.Workers; n > 0 {
		go a.Queue.Work(ctx, n)
	}
	go a.Scheduler.Start(ctx)
}

// EnsureAdmin creates the configured administrator when missing.
func (a *App) EnsureAdmin(ctx context.Context) error {
	adm := a.Config.Admin
	if adm.Email == "" || adm.Password == "" {
		return nil
	}
	u, created, err := a.Users.EnsureAdmin(ctx, adm.Name, adm.Email, adm.Password)
	if err != nil {
		return fmt.Errorf("app: ensure admin: %w", err)
	}
	if created {
		logger.Info("app: administrator created", "email", u.Email)
	}
	return nil
}

// Close releases every component, newest first.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
