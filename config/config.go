package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tradecalc/internal/adapters/logger"
	"tradecalc/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// Calculation
	StrictValidation bool     // Reject incoherent trade plans instead of passing them through
	Defaults         Defaults // Inputs used when the user does not supply a value
	CurrencySymbol   string   // Prefix for monetary values in reports, e.g. "£"

	// Signal handling
	DefaultStopLossPct   float64 // Derive a missing stop loss this far from entry (0 = off)
	DefaultTakeProfitPct float64 // Derive a missing take profit this far from entry (0 = off)
	BatchWorkers         int

	// Telegram
	TelegramBotToken   string
	TelegramChatID     int64 // 0 accepts messages from any chat the bot sees
	TelegramFetchLimit int

	// Database
	DBPath string

	// Logging
	LogLevel  logger.LogLevel
	LogFormat string // text or json
}

// Defaults are the pre-filled inputs of a calculation. They can be loaded
// from a yaml file pointed to by DEFAULTS_FILE.
type Defaults struct {
	Symbol          string   `yaml:"symbol"`
	Direction       string   `yaml:"direction"`
	EntryPrice      float64  `yaml:"entry_price"`
	ExitPrice       *float64 `yaml:"exit_price"` // nil: no realized exit
	TakeProfitPrice float64  `yaml:"take_profit_price"`
	StopLossPrice   float64  `yaml:"stop_loss_price"`
	Leverage        float64  `yaml:"leverage"`
	BetAmount       float64  `yaml:"bet_amount"`
}

// BuiltinDefaults returns the defaults used when no file is configured.
func BuiltinDefaults() Defaults {
	return Defaults{
		Symbol:          "XRPUSDT",
		Direction:       "short",
		EntryPrice:      2.17,
		ExitPrice:       domain.Price(2.05),
		TakeProfitPrice: 2.05,
		StopLossPrice:   2.24,
		Leverage:        3.0,
		BetAmount:       100.0,
	}
}

// Setup converts the defaults into a trade setup.
func (d Defaults) Setup() (domain.TradeSetup, error) {
	dir, err := domain.ParseDirection(d.Direction)
	if err != nil {
		return domain.TradeSetup{}, err
	}
	setup := domain.TradeSetup{
		Direction:       dir,
		EntryPrice:      d.EntryPrice,
		TakeProfitPrice: d.TakeProfitPrice,
		StopLossPrice:   d.StopLossPrice,
		Leverage:        d.Leverage,
		BetAmount:       d.BetAmount,
	}
	if d.ExitPrice != nil {
		setup.ExitPrice = domain.Price(*d.ExitPrice)
	}
	return setup, nil
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string

	cfg.StrictValidation = getEnvAsBool("STRICT_VALIDATION", false)
	cfg.CurrencySymbol = getEnv("CURRENCY_SYMBOL", "£")

	cfg.Defaults = BuiltinDefaults()
	if path := getEnv("DEFAULTS_FILE", ""); path != "" {
		cfg.Defaults, err = LoadDefaults(path)
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if _, err := domain.ParseDirection(cfg.Defaults.Direction); err != nil {
		errs = append(errs, fmt.Sprintf("invalid default direction: %v", err))
	}
	if cfg.Defaults.EntryPrice == 0 {
		errs = append(errs, "default entry price must be nonzero")
	}

	cfg.DefaultStopLossPct, err = getEnvAsFloatRequired("DEFAULT_STOP_LOSS_PCT", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid DEFAULT_STOP_LOSS_PCT: %v", err))
	} else if cfg.DefaultStopLossPct < 0 || cfg.DefaultStopLossPct >= 1.0 {
		errs = append(errs, "DEFAULT_STOP_LOSS_PCT must be in [0.0, 1.0)")
	}

	cfg.DefaultTakeProfitPct, err = getEnvAsFloatRequired("DEFAULT_TAKE_PROFIT_PCT", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid DEFAULT_TAKE_PROFIT_PCT: %v", err))
	} else if cfg.DefaultTakeProfitPct < 0 {
		errs = append(errs, "DEFAULT_TAKE_PROFIT_PCT cannot be negative")
	}

	cfg.BatchWorkers, err = getEnvAsIntRequired("BATCH_WORKERS", 4)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BATCH_WORKERS: %v", err))
	} else if cfg.BatchWorkers <= 0 {
		errs = append(errs, "BATCH_WORKERS must be positive")
	}

	// Telegram (token is only required by the signal reader)
	cfg.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.TelegramChatID, err = getEnvAsInt64Required("TELEGRAM_CHAT_ID", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TELEGRAM_CHAT_ID: %v", err))
	}
	cfg.TelegramFetchLimit = getEnvAsInt("TELEGRAM_FETCH_LIMIT", 20)
	if cfg.TelegramFetchLimit <= 0 || cfg.TelegramFetchLimit > 100 {
		errs = append(errs, "TELEGRAM_FETCH_LIMIT must be between 1 and 100")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/tradecalc.db")

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "text"))
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, "LOG_FORMAT must be text or json")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// LoadDefaults reads calculation defaults from a yaml file. Fields missing from
// the file keep their built-in values, except exit_price: a file without one
// describes a setup with no realized exit.
func LoadDefaults(path string) (Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults{}, fmt.Errorf("read defaults file: %w", err)
	}

	d := BuiltinDefaults()
	d.ExitPrice = nil
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Defaults{}, fmt.Errorf("parse defaults file %s: %w", path, err)
	}
	return d, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsInt64Required(key string, defaultValue int64) (int64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
