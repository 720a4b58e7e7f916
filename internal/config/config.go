package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/letsssgooo/learnWithJasper/internal/lib/slogcustom"
)

// Окружения запуска
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// DefaultEnvFile - файл с переменными окружения, который читается при старте.
const DefaultEnvFile = ".env"

var ErrInvalidConfig = errors.New("invalid config")

// Config - настройки приложения.
type Config struct {
	Env          string        `env:"JASPER_ENV" envDefault:"local"`
	LogLevel     string        `env:"JASPER_LOG_LEVEL"`
	DatabaseDSN  string        `env:"JASPER_DATABASE_DSN"`
	TickInterval time.Duration `env:"JASPER_TICK_INTERVAL" envDefault:"1s"`
	AdvanceDelay time.Duration `env:"JASPER_ADVANCE_DELAY" envDefault:"1s"`
	Seed         bool          `env:"JASPER_SEED" envDefault:"true"`
}

// Load читает .env, переменные JASPER_* и флаги командной строки.
// Флаги важнее переменных окружения.
func Load(args []string) (Config, error) {
	return LoadFile(DefaultEnvFile, args)
}

// LoadFile работает как Load, но читает переменные из envFile.
// Отсутствующий файл не считается ошибкой.
func LoadFile(envFile string, args []string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("cannot load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse env: %w", err)
	}

	flags := pflag.NewFlagSet("jasper", pflag.ContinueOnError)
	flags.StringVar(&cfg.Env, "env", cfg.Env, "environment: local, dev or prod")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	flags.StringVar(&cfg.DatabaseDSN, "database-dsn", cfg.DatabaseDSN, "PostgreSQL DSN, in-memory store when empty")
	flags.DurationVar(&cfg.TickInterval, "tick-interval", cfg.TickInterval, "quiz timer step")
	flags.DurationVar(&cfg.AdvanceDelay, "advance-delay", cfg.AdvanceDelay, "pause before the next problem")
	flags.BoolVar(&cfg.Seed, "seed", cfg.Seed, "add the demo users that are missing from the store")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate проверяет значения настроек.
func (c Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("%w, unknown env %q", ErrInvalidConfig, c.Env)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	if c.TickInterval <= 0 {
		return fmt.Errorf("%w, tick interval must be positive", ErrInvalidConfig)
	}

	if c.AdvanceDelay <= 0 {
		return fmt.Errorf("%w, advance delay must be positive", ErrInvalidConfig)
	}

	return nil
}

// Level возвращает уровень логирования.
// Без явного уровня dev пишет с debug, local и prod с info.
func (c Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		if c.Env == EnvDev {
			return slog.LevelDebug, nil
		}
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w, unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}

	return level, nil
}

// SetupLogger создает логгер для окружения: цветной текст локально, JSON в dev и prod.
func SetupLogger(cfg Config, out io.Writer) *slog.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = slog.LevelInfo
	}

	switch cfg.Env {
	case EnvDev, EnvProd:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	default:
		return slog.New(slogcustom.NewCustomHandler(out, level))
	}
}
