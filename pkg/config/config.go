package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	Checkout     CheckoutConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Email        EmailConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DUKKAN_APP_ENV" required:"true"`
	Port         string `envconfig:"DUKKAN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DUKKAN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DUKKAN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DUKKAN_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DUKKAN_DB_DSN"`
	Driver string `envconfig:"DUKKAN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DUKKAN_DB_HOST"`
	LegacyPort     int    `envconfig:"DUKKAN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DUKKAN_DB_USER"`
	LegacyPassword string `envconfig:"DUKKAN_DB_PASSWORD"`
	LegacyName     string `envconfig:"DUKKAN_DB_NAME"`
	LegacySSLMode  string `envconfig:"DUKKAN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DUKKAN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DUKKAN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DUKKAN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DUKKAN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DUKKAN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DUKKAN_REDIS_ADDR"`
	Password     string        `envconfig:"DUKKAN_REDIS_PASSWORD"`
	DB           int           `envconfig:"DUKKAN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DUKKAN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DUKKAN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DUKKAN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DUKKAN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DUKKAN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret   string `envconfig:"DUKKAN_JWT_SECRET" required:"true"`
	Issuer   string `envconfig:"DUKKAN_JWT_ISSUER" required:"true"`
	Audience string `envconfig:"DUKKAN_JWT_AUDIENCE"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DUKKAN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DUKKAN_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"DUKKAN_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

// CheckoutConfig controls the post-checkout cancellation window.
type CheckoutConfig struct {
	CancelWindow time.Duration `envconfig:"DUKKAN_CHECKOUT_CANCEL_WINDOW" default:"20s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DUKKAN_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"DUKKAN_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DUKKAN_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic              string `envconfig:"DUKKAN_PUBSUB_ORDERS_TOPIC" default:"dk-order-events"`
	OrdersSubscription       string `envconfig:"DUKKAN_PUBSUB_ORDERS_SUBSCRIPTION" required:"true"`
	NotificationTopic        string `envconfig:"DUKKAN_PUBSUB_NOTIFICATION_TOPIC" default:"dk-notification-events"`
	NotificationSubscription string `envconfig:"DUKKAN_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type EmailConfig struct {
	APIKey      string `envconfig:"DUKKAN_EMAIL_API_KEY"`
	BaseURL     string `envconfig:"DUKKAN_EMAIL_BASE_URL" default:"https://api.sendgrid.com"`
	DefaultFrom string `envconfig:"DUKKAN_EMAIL_FROM" default:"orders@dukkan.example"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"DUKKAN_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"DUKKAN_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"DUKKAN_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	WindowSweepInterval     time.Duration `envconfig:"DUKKAN_CRON_WINDOW_SWEEP_INTERVAL" default:"10s"`
	OutboxRetentionDays     int           `envconfig:"DUKKAN_CRON_OUTBOX_RETENTION_DAYS" default:"14"`
	NotificationMaxAgeDays  int           `envconfig:"DUKKAN_CRON_NOTIFICATION_MAX_AGE_DAYS" default:"90"`
	MaintenanceHourInterval int           `envconfig:"DUKKAN_CRON_MAINTENANCE_HOUR_INTERVAL" default:"24"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
