package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"trade_agent/internal/models"
	"trade_agent/pkg/logger"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB      string `yaml:"db_dsn"`
	Service struct {
		Host       string `yaml:"host"`
		PublicPort int    `yaml:"public_port"`
	} `yaml:"service"`

	// Параметры торгового цикла, задаются через env:
	// SCAN_INTERVAL, PRICE_TIMEOUT, MAX_PARALLEL_QUOTES
	ScanInterval      time.Duration `yaml:"-"`
	PriceTimeout      time.Duration `yaml:"-"`
	MaxParallelQuotes int           `yaml:"-"`

	// Вселенная символов для discovery
	Universe []string `yaml:"universe"`

	// Стратегии читаем отдельно через viper (см. loadStrategies)
	Strategies map[string]models.StrategyConfig `yaml:"-"`

	// Фиксированный порядок обхода стратегий. Map в Go не упорядочен,
	// а снапшоты и циклы должны быть детерминированными.
	StrategyOrder []string `yaml:"-"`

	// Стратегии, не прошедшие валидацию: имя -> причина.
	// Они исключаются из цикла, но видны в статусе.
	Inactive map[string]string `yaml:"-"`
}

func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	path := "configs/" + configFileName

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	config := Config{
		ScanInterval:      durationFromEnv("SCAN_INTERVAL", "5m"),
		PriceTimeout:      durationFromEnv("PRICE_TIMEOUT", "10s"),
		MaxParallelQuotes: intFromEnv("MAX_PARALLEL_QUOTES", 8),
	}
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	if err := config.loadStrategies(path); err != nil {
		return nil, err
	}

	return &config, nil
}

// loadStrategies читает блок strategies и валидирует каждую стратегию.
// Невалидная стратегия не валит процесс, она просто помечается inactive.
func (c *Config) loadStrategies(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read strategies: %w", err)
	}

	raw := make(map[string]models.StrategyConfig)
	if err := v.UnmarshalKey("strategies", &raw); err != nil {
		return fmt.Errorf("unmarshal strategies: %w", err)
	}

	c.Strategies = make(map[string]models.StrategyConfig, len(raw))
	c.Inactive = make(map[string]string)
	for name, sc := range raw {
		if err := sc.Validate(); err != nil {
			logger.Warn("strategy %s disabled: %v", name, err)
			c.Inactive[name] = err.Error()
			continue
		}
		c.Strategies[name] = sc
	}

	c.StrategyOrder = make([]string, 0, len(c.Strategies))
	for name := range c.Strategies {
		c.StrategyOrder = append(c.StrategyOrder, name)
	}
	sort.Strings(c.StrategyOrder)

	return nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
