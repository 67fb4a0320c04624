package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "zimcart"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ZIMCART_DB_DSN"
	EnvDBHost = "ZIMCART_DB_HOST"
	EnvDBUser = "ZIMCART_DB_USER"
	EnvDBName = "ZIMCART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Checkout CheckoutConfig
	Gateways GatewaysConfig

	AuthRateLimit AuthRateLimitConfig
	Flags         FeatureFlagsConfig
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
	Env          string `envconfig:"ZIMCART_APP_ENV" required:"true"`
	Port         string `envconfig:"ZIMCART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ZIMCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ZIMCART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ZIMCART_DB_DSN"`
	Driver string `envconfig:"ZIMCART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ZIMCART_DB_HOST"`
	LegacyPort     int    `envconfig:"ZIMCART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ZIMCART_DB_USER"`
	LegacyPassword string `envconfig:"ZIMCART_DB_PASSWORD"`
	LegacyName     string `envconfig:"ZIMCART_DB_NAME"`
	LegacySSLMode  string `envconfig:"ZIMCART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ZIMCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ZIMCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ZIMCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ZIMCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ZIMCART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ZIMCART_REDIS_ADDR"`
	Password     string        `envconfig:"ZIMCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"ZIMCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ZIMCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ZIMCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ZIMCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ZIMCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ZIMCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ZIMCART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ZIMCART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ZIMCART_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"ZIMCART_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the redis session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ZIMCART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ZIMCART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ZIMCART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ZIMCART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ZIMCART_ARGON_KEY_LEN" default:"32"`
}

type CheckoutConfig struct {
	ReturnURL      string        `envconfig:"ZIMCART_CHECKOUT_RETURN_URL" default:"app://checkout/success"`
	IdempotencyTTL time.Duration `envconfig:"ZIMCART_CHECKOUT_IDEMPOTENCY_TTL" default:"168h"`
	VATRate        string        `envconfig:"ZIMCART_CHECKOUT_VAT_RATE" default:"0.15"`
	CommissionRate string        `envconfig:"ZIMCART_CHECKOUT_COMMISSION_RATE" default:"0.10"`
}

type GatewaysConfig struct {
	Paynow PaynowConfig
	Iveri  IveriConfig
	PayPal PayPalConfig
	Stripe StripeGatewayConfig

	HTTPTimeout time.Duration `envconfig:"ZIMCART_GATEWAY_HTTP_TIMEOUT" default:"30s"`
}

type PaynowConfig struct {
	BaseURL        string `envconfig:"ZIMCART_PAYNOW_BASE_URL" default:"https://www.paynow.co.zw/interface"`
	IntegrationKey string `envconfig:"ZIMCART_PAYNOW_INTEGRATION_KEY"`
}

type IveriConfig struct {
	BaseURL string `envconfig:"ZIMCART_IVERI_BASE_URL" default:"https://gateway.iveri.net/api"`
	APIKey  string `envconfig:"ZIMCART_IVERI_API_KEY"`
	// EcocashPANPrefix is prepended to the cleaned subscriber number when
	// Iveri is asked to charge a mobile-money wallet.
	EcocashPANPrefix string `envconfig:"ZIMCART_IVERI_ECOCASH_PAN_PREFIX" default:"591260"`
	EcocashExpiry    string `envconfig:"ZIMCART_IVERI_ECOCASH_EXPIRY" default:"1249"`
}

type PayPalConfig struct {
	BaseURL string `envconfig:"ZIMCART_PAYPAL_BASE_URL" default:"https://api-m.paypal.com"`
	APIKey  string `envconfig:"ZIMCART_PAYPAL_API_KEY"`
}

type StripeGatewayConfig struct {
	BaseURL string `envconfig:"ZIMCART_STRIPE_BASE_URL" default:"https://api.stripe.com"`
	APIKey  string `envconfig:"ZIMCART_STRIPE_API_KEY"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ZIMCART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ZIMCART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ZIMCART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ZIMCART_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ZIMCART_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ZIMCART_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ZIMCART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ZIMCART_AUTO_MIGRATE" default:"false"`
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
