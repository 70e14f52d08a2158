package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// PostgresConfig selects the catalog backend. An empty DSN keeps the catalog in memory.
type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

// RedisConfig selects the session storage and cross-tab feed backend.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type SecurityConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
}

type CatalogConfig struct {
	PageSize int
	Seed     bool
}

// SessionConfig bounds how long an idle tab keeps its server-side state.
type SessionConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

type AuthConfig struct {
	MockDelay time.Duration
}

type DemoConfig struct {
	ResetEnabled  bool
	ResetSchedule string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Security         SecurityConfig
	Catalog          CatalogConfig
	Session          SessionConfig
	Auth             AuthConfig
	Demo             DemoConfig
	AllowCORSOrigins []string
}

// Load reads config.yaml, then ANNEX_* environment variables. A .env file in
// the working directory seeds the environment without overriding it.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("ANNEX")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Catalog.PageSize < 1 {
		return fmt.Errorf("catalog.pagesize must be positive, got %d", c.Catalog.PageSize)
	}
	if c.Session.IdleTimeout <= 0 || c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.idletimeout and session.sweepinterval must be positive")
	}
	if c.Environment == "production" && c.Security.TokenSecret == defaultTokenSecret {
		return fmt.Errorf("security.tokensecret must be set in production")
	}
	return nil
}

const defaultTokenSecret = "annex-dev-secret"

var envKeyReplacer = strings.NewReplacer(".", "_")

// Every key needs a default, even an empty one: AutomaticEnv only reaches
// keys viper already knows when unmarshalling.
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("allowcorsorigins", []string{})

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "annex")

	v.SetDefault("security.tokensecret", defaultTokenSecret)
	v.SetDefault("security.tokenttl", "720h")

	v.SetDefault("catalog.pagesize", 9)
	v.SetDefault("catalog.seed", false)

	v.SetDefault("session.idletimeout", "30m")
	v.SetDefault("session.sweepinterval", "1m")

	v.SetDefault("auth.mockdelay", "300ms")

	v.SetDefault("demo.resetenabled", false)
	v.SetDefault("demo.resetschedule", "0 0 4 * * *")
}
