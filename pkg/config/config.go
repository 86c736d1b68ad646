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
	GCP          GCPConfig
	PubSub       PubSubConfig
	Sync         SyncConfig
	Connectors   ConnectorsConfig
	Webhooks     WebhooksConfig
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
	Env          string `envconfig:"CHANNELSTOCK_APP_ENV" required:"true"`
	Port         string `envconfig:"CHANNELSTOCK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CHANNELSTOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CHANNELSTOCK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CHANNELSTOCK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CHANNELSTOCK_DB_DSN"`
	Driver string `envconfig:"CHANNELSTOCK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CHANNELSTOCK_DB_HOST"`
	LegacyPort     int    `envconfig:"CHANNELSTOCK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CHANNELSTOCK_DB_USER"`
	LegacyPassword string `envconfig:"CHANNELSTOCK_DB_PASSWORD"`
	LegacyName     string `envconfig:"CHANNELSTOCK_DB_NAME"`
	LegacySSLMode  string `envconfig:"CHANNELSTOCK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CHANNELSTOCK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CHANNELSTOCK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CHANNELSTOCK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CHANNELSTOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CHANNELSTOCK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CHANNELSTOCK_REDIS_ADDR"`
	Password     string        `envconfig:"CHANNELSTOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"CHANNELSTOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CHANNELSTOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CHANNELSTOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CHANNELSTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CHANNELSTOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CHANNELSTOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CHANNELSTOCK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CHANNELSTOCK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CHANNELSTOCK_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CHANNELSTOCK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CHANNELSTOCK_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CHANNELSTOCK_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"CHANNELSTOCK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CHANNELSTOCK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	SyncTopic        string `envconfig:"CHANNELSTOCK_PUBSUB_SYNC_TOPIC" default:"cs-sync-tasks"`
	SyncSubscription string `envconfig:"CHANNELSTOCK_PUBSUB_SYNC_SUBSCRIPTION" required:"true"`
}

// SyncConfig bounds the orchestrator. The connector timeout must stay below
// the lock TTL so a slow platform call cannot outlive the item lock.
type SyncConfig struct {
	LockTTL           time.Duration `envconfig:"CHANNELSTOCK_SYNC_LOCK_TTL" default:"30s"`
	ConnectorTimeout  time.Duration `envconfig:"CHANNELSTOCK_SYNC_CONNECTOR_TIMEOUT" default:"10s"`
	StaleAfter        time.Duration `envconfig:"CHANNELSTOCK_SYNC_STALE_AFTER" default:"1h"`
	BulkCycleInterval time.Duration `envconfig:"CHANNELSTOCK_SYNC_BULK_INTERVAL" default:"15m"`
	IdempotencyTTL    time.Duration `envconfig:"CHANNELSTOCK_SYNC_IDEMPOTENCY_TTL" default:"24h"`
	DefaultResolution string        `envconfig:"CHANNELSTOCK_SYNC_DEFAULT_RESOLUTION" default:"use_lowest"`
	WorkerMaxInFlight int           `envconfig:"CHANNELSTOCK_SYNC_WORKER_MAX_IN_FLIGHT" default:"10"`
}

type ConnectorConfig struct {
	BaseURL string
	Token   string
}

type ConnectorsConfig struct {
	EtsyBaseURL    string `envconfig:"CHANNELSTOCK_ETSY_BASE_URL" default:"https://openapi.etsy.com/v3"`
	EtsyToken      string `envconfig:"CHANNELSTOCK_ETSY_TOKEN"`
	AmazonBaseURL  string `envconfig:"CHANNELSTOCK_AMAZON_BASE_URL" default:"https://sellingpartnerapi-na.amazon.com"`
	AmazonToken    string `envconfig:"CHANNELSTOCK_AMAZON_TOKEN"`
	EbayBaseURL    string `envconfig:"CHANNELSTOCK_EBAY_BASE_URL" default:"https://api.ebay.com/sell/inventory/v1"`
	EbayToken      string `envconfig:"CHANNELSTOCK_EBAY_TOKEN"`
	ShopifyBaseURL string `envconfig:"CHANNELSTOCK_SHOPIFY_BASE_URL"`
	ShopifyToken   string `envconfig:"CHANNELSTOCK_SHOPIFY_TOKEN"`
}

// WebhooksConfig maps per-platform webhook tokens onto owner IDs so
// unauthenticated platform callbacks can be attributed.
type WebhooksConfig struct {
	OwnerTokens map[string]string `envconfig:"CHANNELSTOCK_WEBHOOK_OWNER_TOKENS"`
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
