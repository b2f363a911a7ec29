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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Checkout     CheckoutConfig
	Sipay        SipayConfig
	Stock        StockConfig
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
	Env          string `envconfig:"RAWISES_APP_ENV" required:"true"`
	Port         string `envconfig:"RAWISES_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"RAWISES_APP_BASE_URL" default:"https://www.rawises.com"`
	LogLevel     string `envconfig:"RAWISES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RAWISES_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RAWISES_DB_DSN"`
	Driver string `envconfig:"RAWISES_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"RAWISES_DB_HOST"`
	Port     int    `envconfig:"RAWISES_DB_PORT" default:"5432"`
	User     string `envconfig:"RAWISES_DB_USER"`
	Password string `envconfig:"RAWISES_DB_PASSWORD"`
	Name     string `envconfig:"RAWISES_DB_NAME"`
	SSLMode  string `envconfig:"RAWISES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RAWISES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RAWISES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RAWISES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RAWISES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RAWISES_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RAWISES_REDIS_ADDR"`
	Password     string        `envconfig:"RAWISES_REDIS_PASSWORD"`
	DB           int           `envconfig:"RAWISES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RAWISES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RAWISES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RAWISES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RAWISES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RAWISES_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"RAWISES_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RAWISES_JWT_ISSUER" default:"rawises"`
	ExpirationMinutes int    `envconfig:"RAWISES_JWT_EXPIRATION_MINUTES" default:"480"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RAWISES_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RAWISES_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RAWISES_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RAWISES_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RAWISES_ARGON_KEY_LEN" default:"32"`
}

type CheckoutConfig struct {
	SessionTTL            time.Duration `envconfig:"RAWISES_CHECKOUT_SESSION_TTL" default:"30m"`
	SubmitLockTTL         time.Duration `envconfig:"RAWISES_CHECKOUT_SUBMIT_LOCK_TTL" default:"15s"`
	MemberDiscountPercent int           `envconfig:"RAWISES_MEMBER_DISCOUNT_PERCENT" default:"15"`
}

type SipayConfig struct {
	BaseURL     string `envconfig:"RAWISES_SIPAY_BASE_URL" default:"https://app.sipay.com.tr/ccpayment"`
	MerchantID  string `envconfig:"RAWISES_SIPAY_MERCHANT_ID" required:"true"`
	MerchantKey string `envconfig:"RAWISES_SIPAY_MERCHANT_KEY" required:"true"`
	AppKey      string `envconfig:"RAWISES_SIPAY_APP_KEY" required:"true"`
	AppSecret   string `envconfig:"RAWISES_SIPAY_APP_SECRET" required:"true"`
	TestMode    bool   `envconfig:"RAWISES_SIPAY_TEST_MODE" default:"true"`
}

type StockConfig struct {
	AlertScanInterval time.Duration `envconfig:"RAWISES_STOCK_ALERT_SCAN_INTERVAL" default:"30s"`
	CriticalFactor    float64       `envconfig:"RAWISES_STOCK_CRITICAL_FACTOR" default:"0.5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"RAWISES_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range componentDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
