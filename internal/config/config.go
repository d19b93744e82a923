package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const devJWTSecret = "dev_secret_key_change_me"

type Config struct {
	App struct {
		Env      string
		LogLevel string `mapstructure:"log_level"` // пусто: debug в dev, иначе info
	} `mapstructure:"app"`

	HTTP struct {
		Addr            string
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"http"`

	Store struct {
		Driver string // postgres | memory
	} `mapstructure:"store"`

	Postgres struct {
		DSN     string
		Migrate bool
	} `mapstructure:"postgres"`

	Auth struct {
		JWTSecret string        `mapstructure:"jwt_secret"`
		TokenTTL  time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"auth"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Stock struct {
		LowThreshold float64 `mapstructure:"low_threshold"`
	} `mapstructure:"stock"`

	Telegram struct {
		Token  string
		ChatID int64 `mapstructure:"chat_id"`
	} `mapstructure:"telegram"`
}

// Load читает YAML по path (пустой path допустим) и накладывает переменные
// окружения APP_*, например APP_POSTGRES_DSN или APP_AUTH_JWT_SECRET.
// Если в рабочей папке есть .env, он подгружается первым.
func Load(path string) (Config, error) {
	var c Config

	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, err
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, c.validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "")
	v.SetDefault("http.addr", ":3001")
	v.SetDefault("http.shutdown_timeout", 5*time.Second)
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.migrate", true)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("stock.low_threshold", 0)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Postgres.DSN == "" {
			return errors.New("config: postgres.dsn is required for the postgres store")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}

	if c.Auth.JWTSecret == "" {
		if c.App.Env != "dev" {
			return errors.New("config: auth.jwt_secret must be set outside dev")
		}
		c.Auth.JWTSecret = devJWTSecret
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: auth.token_ttl must be positive")
	}
	if c.Stock.LowThreshold < 0 {
		return errors.New("config: stock.low_threshold must not be negative")
	}
	return nil
}

// TelegramEnabled - слать ли уведомления о низком остатке в Telegram.
func (c Config) TelegramEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != 0
}
