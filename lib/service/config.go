package service

import (
	"time"
)

type Config struct {
	DatabaseUri              string        `envconfig:"DATABASE_URI" required:"true"`
	DatabaseMaxConns         int           `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	DatabaseMaxIdleConns     int           `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	DatabaseConnMaxLifetime  int           `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"1800"` // 30 minutes
	SentryDSN                string        `envconfig:"SENTRY_DSN"`
	SentryTracesSampleRate   float64       `envconfig:"SENTRY_TRACES_SAMPLE_RATE"`
	DatadogAgentUrl          string        `envconfig:"DATADOG_AGENT_URL"`
	OtelEndpoint             string        `envconfig:"OTEL_ENDPOINT"`
	LogFilePath              string        `envconfig:"LOG_FILE_PATH"`
	JWTSecret                []byte        `envconfig:"JWT_SECRET" required:"true"`
	JWTAccessTokenExpiry     int           `envconfig:"JWT_ACCESS_EXPIRY" default:"172800"` // in seconds, default 2 days
	LoginMaxSkew             time.Duration `envconfig:"LOGIN_MAX_SKEW" default:"300s"`
	AdminToken               string        `envconfig:"ADMIN_TOKEN"`
	Host                     string        `envconfig:"HOST" default:"localhost:3000"`
	Port                     int           `envconfig:"PORT" default:"3000"`
	DefaultRateLimit         int           `envconfig:"DEFAULT_RATE_LIMIT" default:"10"`
	StrictRateLimit          int           `envconfig:"STRICT_RATE_LIMIT" default:"10"`
	BurstRateLimit           int           `envconfig:"BURST_RATE_LIMIT" default:"1"`
	EnablePrometheus         bool          `envconfig:"ENABLE_PROMETHEUS" default:"false"`
	PrometheusPort           int           `envconfig:"PROMETHEUS_PORT" default:"9092"`
	WebhookUrl               string        `envconfig:"WEBHOOK_URL"`
	RabbitMQUri              string        `envconfig:"RABBITMQ_URI"`
	RabbitMQPurchaseExchange string        `envconfig:"RABBITMQ_PURCHASE_EXCHANGE" default:"marketplace_purchase"`
	Market                   MarketConfig
	Network                  NetworkStatusConfig
}

// MarketConfig holds the addresses and the initial coordinator settings applied by
// Bootstrap on first start.
type MarketConfig struct {
	PlatformAdmin      string `envconfig:"PLATFORM_ADMIN" required:"true"`
	RegistryAddress    string `envconfig:"REGISTRY_ADDRESS" default:"terra_tokenization"`
	CoordinatorAddress string `envconfig:"COORDINATOR_ADDRESS" default:"terra_marketplace"`
	PaymentToken       string `envconfig:"PAYMENT_TOKEN" required:"true"`
	Treasury           string `envconfig:"TREASURY" required:"true"`
	FeeBps             int64  `envconfig:"FEE_BPS" default:"250"`
}

type NetworkStatusConfig struct {
	CacheTTL   time.Duration `envconfig:"NETWORK_CACHE_TTL" default:"15s"`
	TestnetUrl string        `envconfig:"HORIZON_TESTNET_URL" default:"https://horizon-testnet.stellar.org"`
	PublicUrl  string        `envconfig:"HORIZON_MAINNET_URL" default:"https://horizon.stellar.org"`
}
