// Package config loads the Data Vista runtime configuration.
//
// Values are layered, lowest precedence first:
//
//	built-in defaults → config/app.json → .env → process environment
//
// Every key maps to an upper-cased environment variable with dots replaced
// by underscores, so "mongodb.uri" is read from MONGODB_URI and "jwt.ttl"
// from JWT_TTL.
//
//	cfg, err := config.Load()
//	if err != nil { ... }
//	srv := server.New(cfg, handler)
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultJWTSecret is the development secret. Production refuses to boot with it.
const DefaultJWTSecret = "change-me-in-production"

// Config is the full, typed application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Frontend FrontendConfig `mapstructure:"frontend"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Store    StoreConfig    `mapstructure:"store"`
	MongoDB  MongoConfig    `mapstructure:"mongodb"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Storage  StorageConfig  `mapstructure:"storage"`
	S3       S3Config       `mapstructure:"s3"`
	Mail     MailConfig     `mapstructure:"mail"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
	Log      LogConfig      `mapstructure:"log"`
	Order    OrderConfig    `mapstructure:"order"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type HTTPConfig struct {
	MaxBodyBytes       int64 `mapstructure:"max_body_bytes"`
	RateLimitPerMinute int   `mapstructure:"rate_limit_per_minute"`
}

type FrontendConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// StoreConfig selects the persistence backend: mongo, postgres, mysql,
// sqlite, sqlserver or memory.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type QueueConfig struct {
	Driver   string `mapstructure:"driver"`
	Workers  int    `mapstructure:"workers"`
	MaxRetry int    `mapstructure:"max_retry"`
}

// CacheConfig selects the analytics cache: memory or redis.
type CacheConfig struct {
	Driver       string        `mapstructure:"driver"`
	DashboardTTL time.Duration `mapstructure:"dashboard_ttl"`
}

// ScheduleConfig drives the in-process scheduler. An empty cron disables
// the low stock digest.
type ScheduleConfig struct {
	LowStockCron      string `mapstructure:"low_stock_cron"`
	LowStockThreshold int    `mapstructure:"stock_threshold"`
}

type StorageConfig struct {
	Disk      string `mapstructure:"disk"`
	LocalRoot string `mapstructure:"local_root"`
	URL       string `mapstructure:"url"`
}

type S3Config struct {
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Key      string `mapstructure:"key"`
	Secret   string `mapstructure:"secret"`
	Endpoint string `mapstructure:"endpoint"`
	URL      string `mapstructure:"url"`
}

type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

type GRPCConfig struct {
	Port string `mapstructure:"port"`
}

// LogConfig enables the optional MongoDB log sink when MongoURI is set.
type LogConfig struct {
	MongoURI        string `mapstructure:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection"`
}

type OrderConfig struct {
	StrictTransitions bool `mapstructure:"strict_transitions"`
}

// AdminConfig seeds the first administrator account.
type AdminConfig struct {
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

var defaults = map[string]any{
	"app.name":                   "Data Vista",
	"app.env":                    "local",
	"app.port":                   "4001",
	"http.max_body_bytes":        int64(4 << 20),
	"http.rate_limit_per_minute": 200,
	"frontend.url":               "http://localhost:5173",
	"jwt.secret":                 DefaultJWTSecret,
	"jwt.ttl":                    "168h",
	"store.driver":               "mongo",
	"mongodb.uri":                "mongodb://localhost:27017/data-vista",
	"mongodb.database":           "",
	"database.dsn":               "datavista.db",
	"redis.addr":                 "localhost:6379",
	"redis.password":             "",
	"redis.db":                   0,
	"queue.driver":               "memory",
	"queue.workers":              2,
	"queue.max_retry":            3,
	"cache.driver":               "memory",
	"cache.dashboard_ttl":        "30s",
	"schedule.low_stock_cron":    "0 8 * * *",
	"schedule.stock_threshold":   10,
	"storage.disk":               "local",
	"storage.local_root":         "storage",
	"storage.url":                "http://localhost:4001/storage",
	"s3.bucket":                  "",
	"s3.region":                  "us-east-1",
	"s3.key":                     "",
	"s3.secret":                  "",
	"s3.endpoint":                "",
	"s3.url":                     "",
	"mail.host":                  "smtp.mailtrap.io",
	"mail.port":                  "587",
	"mail.username":              "",
	"mail.password":              "",
	"mail.from":                  "no-reply@datavista.local",
	"mail.from_name":             "Data Vista",
	"kafka.brokers":              "",
	"kafka.topic":                "datavista.orders",
	"grpc.port":                  "9090",
	"log.mongo_uri":              "",
	"log.mongo_database":         "datavista_logs",
	"log.mongo_collection":       "logs",
	"order.strict_transitions":   false,
	"admin.name":                 "Administrator",
	"admin.email":                "admin@datavista.local",
	"admin.password":             "admin123",
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load builds a Config from the given files. With no arguments it reads
// config/app.json and .env from the working directory. Missing files are
// skipped; malformed files are an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{filepath.Join("config", "app.json"), ".env"}
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, f := range files {
		if err := mergeFile(v, f); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Frontend.URL = strings.TrimRight(cfg.Frontend.URL, "/")
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if cfg.MongoDB.Database == "" {
		cfg.MongoDB.Database = databaseFromURI(cfg.MongoDB.URI)
	}

	return &cfg, nil
}

func mergeFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}

	if filepath.Base(path) == ".env" || filepath.Ext(path) == ".env" {
		return mergeDotEnv(v, path)
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return nil
}

// mergeDotEnv applies .env values for known keys unless the real
// environment already defines them.
func mergeDotEnv(v *viper.Viper, path string) error {
	env := viper.New()
	env.SetConfigFile(path)
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	for key := range defaults {
		name := EnvName(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if raw := env.GetString(strings.ToLower(name)); raw != "" {
			v.Set(key, raw)
		}
	}
	return nil
}

func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "data-vista"
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return "data-vista"
}

// Validate rejects configurations that must never reach production.
func (c *Config) Validate() error {
	var errs []error
	if c.IsProduction() && c.JWT.Secret == DefaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	switch c.Store.Driver {
	case "mongo", "postgres", "mysql", "sqlite", "sqlserver", "memory":
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver))
	}
	if c.Queue.Driver != "memory" && c.Queue.Driver != "redis" {
		errs = append(errs, fmt.Errorf("unsupported QUEUE_DRIVER %q", c.Queue.Driver))
	}
	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		errs = append(errs, fmt.Errorf("unsupported CACHE_DRIVER %q", c.Cache.Driver))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production" || c.App.Env == "prod"
}

// Debug reports whether error details may be exposed to clients. Only an
// explicit APP_ENV=development turns it on.
func (c *Config) Debug() bool {
	return c.App.Env == "development"
}

// IsSQL reports whether the configured store is a gorm-backed database.
func (c *Config) IsSQL() bool {
	switch c.Store.Driver {
	case "postgres", "mysql", "sqlite", "sqlserver":
		return true
	}
	return false
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string { return ":" + c.App.Port }
