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
	Realtime     RealtimeConfig
	Delivery     DeliveryConfig
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
	Env          string `envconfig:"HOMECHEF_APP_ENV" required:"true"`
	Port         string `envconfig:"HOMECHEF_APP_PORT" required:"true"`
	SessionID    string `envconfig:"HOMECHEF_SESSION_ID" default:"default"`
	LogLevel     string `envconfig:"HOMECHEF_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HOMECHEF_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HOMECHEF_DB_DSN"`
	Driver string `envconfig:"HOMECHEF_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HOMECHEF_DB_HOST"`
	LegacyPort     int    `envconfig:"HOMECHEF_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HOMECHEF_DB_USER"`
	LegacyPassword string `envconfig:"HOMECHEF_DB_PASSWORD"`
	LegacyName     string `envconfig:"HOMECHEF_DB_NAME"`
	LegacySSLMode  string `envconfig:"HOMECHEF_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HOMECHEF_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HOMECHEF_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HOMECHEF_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HOMECHEF_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HOMECHEF_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HOMECHEF_REDIS_ADDR"`
	Password     string        `envconfig:"HOMECHEF_REDIS_PASSWORD"`
	DB           int           `envconfig:"HOMECHEF_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HOMECHEF_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HOMECHEF_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HOMECHEF_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HOMECHEF_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HOMECHEF_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// RealtimeConfig tunes the live status feed connection.
type RealtimeConfig struct {
	URL          string        `envconfig:"HOMECHEF_REALTIME_URL" required:"true"`
	Role         string        `envconfig:"HOMECHEF_REALTIME_ROLE" default:"customer"`
	Token        string        `envconfig:"HOMECHEF_REALTIME_TOKEN"`
	DialTimeout  time.Duration `envconfig:"HOMECHEF_REALTIME_DIAL_TIMEOUT" default:"10s"`
	BackoffBase  time.Duration `envconfig:"HOMECHEF_REALTIME_BACKOFF_BASE" default:"1s"`
	BackoffCap   time.Duration `envconfig:"HOMECHEF_REALTIME_BACKOFF_CAP" default:"30s"`
	MaxAttempts  int           `envconfig:"HOMECHEF_REALTIME_MAX_ATTEMPTS" default:"10"`
	ReadLimit    int64         `envconfig:"HOMECHEF_REALTIME_READ_LIMIT" default:"1048576"`
}

type DeliveryConfig struct {
	TierCacheTTL time.Duration `envconfig:"HOMECHEF_DELIVERY_TIER_CACHE_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"HOMECHEF_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"HOMECHEF_AUTO_MIGRATE" default:"false"`
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
