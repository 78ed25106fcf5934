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
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
	Idempotency  IdempotencyConfig
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
	Env          string `envconfig:"ASSETLEND_APP_ENV" required:"true"`
	Port         string `envconfig:"ASSETLEND_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ASSETLEND_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"ASSETLEND_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"ASSETLEND_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ASSETLEND_DB_DSN"`
	Driver string `envconfig:"ASSETLEND_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ASSETLEND_DB_HOST"`
	LegacyPort     int    `envconfig:"ASSETLEND_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ASSETLEND_DB_USER"`
	LegacyPassword string `envconfig:"ASSETLEND_DB_PASSWORD"`
	LegacyName     string `envconfig:"ASSETLEND_DB_NAME"`
	LegacySSLMode  string `envconfig:"ASSETLEND_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ASSETLEND_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ASSETLEND_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ASSETLEND_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ASSETLEND_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the local sqlite driver was selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"ASSETLEND_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ASSETLEND_REDIS_ADDR"`
	Password     string        `envconfig:"ASSETLEND_REDIS_PASSWORD"`
	DB           int           `envconfig:"ASSETLEND_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ASSETLEND_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ASSETLEND_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ASSETLEND_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ASSETLEND_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ASSETLEND_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ASSETLEND_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ASSETLEND_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ASSETLEND_JWT_EXPIRATION_MINUTES" default:"60"`
	ClockSkewSeconds  int    `envconfig:"ASSETLEND_JWT_CLOCK_SKEW_SECONDS" default:"30"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ASSETLEND_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	MaxAgeSeconds  int      `envconfig:"ASSETLEND_CORS_MAX_AGE" default:"300"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ASSETLEND_AUTO_MIGRATE" default:"false"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"ASSETLEND_IDEMPOTENCY_TTL" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
