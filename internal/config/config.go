// Package config provides configuration management using viper.
// It supports loading from YAML files, a .env file and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"kingdom-hub/internal/model"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
)

// Config holds all application configuration.
type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Economy  EconomyConfig  `mapstructure:"economy"`
	Games    GamesConfig    `mapstructure:"games"`
	Shop     ShopConfig     `mapstructure:"shop"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Driver     string      `mapstructure:"driver"`
	SQLitePath string      `mapstructure:"sqlite_path"`
	Redis      RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds the administrative account seed and Telegram admin list.
type AdminConfig struct {
	AccountID    int64   `mapstructure:"account_id"`
	Username     string  `mapstructure:"username"`
	SeedBalance  int64   `mapstructure:"seed_balance"`
	ReferralCode string  `mapstructure:"referral_code"`
	IDs          []int64 `mapstructure:"ids"`
}

// EconomyConfig holds deployment defaults for the tunable economy.
type EconomyConfig struct {
	Defaults     model.EconomyConfig `mapstructure:"defaults"`
	WelcomeBonus int64               `mapstructure:"welcome_bonus"`
}

// GamesConfig holds resolution delays and game tuning.
type GamesConfig struct {
	SpinDelay      time.Duration `mapstructure:"spin_delay"`
	CoinFlipDelay  time.Duration `mapstructure:"coin_flip_delay"`
	LuckyDrawDelay time.Duration `mapstructure:"lucky_draw_delay"`
	Miner          MinerConfig   `mapstructure:"miner"`
}

// MinerConfig holds the clicker energy meter settings.
type MinerConfig struct {
	MaxEnergy     int           `mapstructure:"max_energy"`
	ClickCost     int           `mapstructure:"click_cost"`
	RegenAmount   int           `mapstructure:"regen_amount"`
	RegenInterval time.Duration `mapstructure:"regen_interval"`
}

// ShopConfig holds shop catalog configuration.
type ShopConfig struct {
	CatalogFile string `mapstructure:"catalog_file"`
}

// JobsConfig holds cron job configuration.
type JobsConfig struct {
	GaugesSpec      string `mapstructure:"gauges_spec"`
	TrimSpec        string `mapstructure:"trim_spec"`
	MaxInteractions int    `mapstructure:"max_interactions"`
	Timezone        string `mapstructure:"timezone"`
}

// HTTPConfig holds the HTTP listener configuration.
type HTTPConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	// A missing .env is fine; the real environment is used as is.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. BOT_TOKEN, STORAGE_DRIVER, ECONOMY_DEFAULTS_SPIN_WIN_RATE
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints that defaults cannot guarantee.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverPostgres, DriverSQLite, DriverRedis:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if err := c.Economy.Defaults.Validate(); err != nil {
		return fmt.Errorf("economy defaults: %w", err)
	}
	if c.Economy.WelcomeBonus < 0 {
		return errors.New("economy welcome bonus must not be negative")
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.timeout", "10s")

	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.sqlite_path", "data/hub.db")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "hub")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "hub")
	v.SetDefault("database.name", "hub")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("admin.account_id", 1)
	v.SetDefault("admin.username", "AlgoKingX")
	v.SetDefault("admin.seed_balance", 999999)
	v.SetDefault("admin.referral_code", "KING")

	d := model.DefaultEconomyConfig()
	v.SetDefault("economy.defaults.spin_win_rate", d.SpinWinRate)
	v.SetDefault("economy.defaults.coin_flip_win_rate", d.CoinFlipWinRate)
	v.SetDefault("economy.defaults.lucky_draw_cooldown_hours", d.LuckyDrawCooldownHours)
	v.SetDefault("economy.defaults.spin_cooldown_hours", d.SpinCooldownHours)
	v.SetDefault("economy.defaults.global_point_multiplier", d.GlobalPointMultiplier)
	v.SetDefault("economy.defaults.miner_rate_per_click", d.MinerRatePerClick)
	v.SetDefault("economy.defaults.xp_multiplier", d.XPMultiplier)
	v.SetDefault("economy.welcome_bonus", 100)

	v.SetDefault("games.spin_delay", "5s")
	v.SetDefault("games.coin_flip_delay", "2s")
	v.SetDefault("games.lucky_draw_delay", "2s")
	v.SetDefault("games.miner.max_energy", 100)
	v.SetDefault("games.miner.click_cost", 10)
	v.SetDefault("games.miner.regen_amount", 5)
	v.SetDefault("games.miner.regen_interval", "3s")

	v.SetDefault("jobs.gauges_spec", "0 * * * *")
	v.SetDefault("jobs.trim_spec", "0 0 * * *")
	v.SetDefault("jobs.max_interactions", 5000)
	v.SetDefault("jobs.timezone", "UTC")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.enabled", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// IsAdmin checks if a Telegram user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}
