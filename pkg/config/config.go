package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the app reads.
	EnvPrefix = "CHOCOBLISS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CHOCOBLISS_DB_DSN"
	EnvDBHost = "CHOCOBLISS_DB_HOST"
	EnvDBUser = "CHOCOBLISS_DB_USER"
	EnvDBName = "CHOCOBLISS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Razorpay     RazorpayConfig
	Cart         CartConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"CHOCOBLISS_APP_ENV" required:"true"`
	Port         string `envconfig:"CHOCOBLISS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CHOCOBLISS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CHOCOBLISS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CHOCOBLISS_DB_DSN"`
	Driver string `envconfig:"CHOCOBLISS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CHOCOBLISS_DB_HOST"`
	LegacyPort     int    `envconfig:"CHOCOBLISS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CHOCOBLISS_DB_USER"`
	LegacyPassword string `envconfig:"CHOCOBLISS_DB_PASSWORD"`
	LegacyName     string `envconfig:"CHOCOBLISS_DB_NAME"`
	LegacySSLMode  string `envconfig:"CHOCOBLISS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CHOCOBLISS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CHOCOBLISS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CHOCOBLISS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CHOCOBLISS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CHOCOBLISS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CHOCOBLISS_REDIS_ADDR"`
	Password     string        `envconfig:"CHOCOBLISS_REDIS_PASSWORD"`
	DB           int           `envconfig:"CHOCOBLISS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CHOCOBLISS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CHOCOBLISS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CHOCOBLISS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CHOCOBLISS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CHOCOBLISS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CHOCOBLISS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CHOCOBLISS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CHOCOBLISS_JWT_EXPIRATION_MINUTES" default:"60"`
}

// RazorpayConfig carries the payment provider credentials. Both keys empty
// means the gateway runs unconfigured and payment endpoints return 503.
type RazorpayConfig struct {
	KeyID     string        `envconfig:"CHOCOBLISS_RAZORPAY_KEY_ID"`
	KeySecret string        `envconfig:"CHOCOBLISS_RAZORPAY_KEY_SECRET"`
	BaseURL   string        `envconfig:"CHOCOBLISS_RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`
	Timeout   time.Duration `envconfig:"CHOCOBLISS_RAZORPAY_TIMEOUT" default:"15s"`
}

// Configured reports whether provider credentials are present.
func (r RazorpayConfig) Configured() bool {
	return strings.TrimSpace(r.KeyID) != "" && strings.TrimSpace(r.KeySecret) != ""
}

type CartConfig struct {
	LockTTL       time.Duration `envconfig:"CHOCOBLISS_CART_LOCK_TTL" default:"5s"`
	LockRetries   int           `envconfig:"CHOCOBLISS_CART_LOCK_RETRIES" default:"20"`
	LockRetryWait time.Duration `envconfig:"CHOCOBLISS_CART_LOCK_RETRY_WAIT" default:"25ms"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CHOCOBLISS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CHOCOBLISS_AUTO_MIGRATE" default:"false"`
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
