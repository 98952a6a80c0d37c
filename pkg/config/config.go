package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "HABITAT_DB_DSN"
	EnvDBHost = "HABITAT_DB_HOST"
	EnvDBUser = "HABITAT_DB_USER"
	EnvDBName = "HABITAT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Refdata      RefdataConfig
	Similar      SimilarConfig
	Media        MediaConfig
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
	Env          string `envconfig:"HABITAT_APP_ENV" required:"true"`
	Port         string `envconfig:"HABITAT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HABITAT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HABITAT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HABITAT_DB_DSN"`
	Driver string `envconfig:"HABITAT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HABITAT_DB_HOST"`
	LegacyPort     int    `envconfig:"HABITAT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HABITAT_DB_USER"`
	LegacyPassword string `envconfig:"HABITAT_DB_PASSWORD"`
	LegacyName     string `envconfig:"HABITAT_DB_NAME"`
	LegacySSLMode  string `envconfig:"HABITAT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HABITAT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HABITAT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HABITAT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HABITAT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HABITAT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HABITAT_REDIS_ADDR"`
	Password     string        `envconfig:"HABITAT_REDIS_PASSWORD"`
	DB           int           `envconfig:"HABITAT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HABITAT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HABITAT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HABITAT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HABITAT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HABITAT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// RefdataConfig controls the read-through cache for colors, collections, and
// categories.
type RefdataConfig struct {
	TTL time.Duration `envconfig:"HABITAT_REFDATA_TTL" default:"10m"`
}

// SimilarConfig points at the similar-items finder collaborator.
type SimilarConfig struct {
	BaseURL string        `envconfig:"HABITAT_SIMILAR_BASE_URL"`
	Limit   int           `envconfig:"HABITAT_SIMILAR_LIMIT" default:"24"`
	Timeout time.Duration `envconfig:"HABITAT_SIMILAR_TIMEOUT" default:"5s"`
}

type MediaConfig struct {
	PublicBaseURL string `envconfig:"HABITAT_MEDIA_PUBLIC_BASE_URL"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"HABITAT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"HABITAT_AUTO_MIGRATE" default:"false"`
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
