package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerPort        string         `yaml:"server_port" validate:"required,numeric"`
	TesseractDataPath string         `yaml:"tessdata_prefix"`
	PaddleAPIURL      string         `yaml:"paddleocr_api_url" validate:"omitempty,url"`
	MaxFileSize       int64          `yaml:"max_file_size" validate:"gt=0"`
	CacheTTL          time.Duration  `yaml:"cache_ttl" validate:"gte=0"`
	Analysis          AnalysisConfig `yaml:"analysis"`
	Email             EmailConfig    `yaml:"email"`
}

// AnalysisConfig holds the tunables of the offer pipeline.
type AnalysisConfig struct {
	NearThreshold          float64  `yaml:"near_threshold" validate:"gt=0"`
	FarThreshold           float64  `yaml:"far_threshold" validate:"gtfield=NearThreshold"`
	RateFloor              float64  `yaml:"rate_floor" validate:"gte=0"`
	InvestmentAmount       float64  `yaml:"investment_amount" validate:"gt=0"`
	ReferencePriceOverride *float64 `yaml:"reference_price_override" validate:"omitempty,gt=0"`
	WindowWidth            int      `yaml:"window_width" validate:"min=2,max=3"`
	ReferenceLookAhead     int      `yaml:"reference_lookahead" validate:"min=1"`
	ReferenceKeywords      []string `yaml:"reference_keywords" validate:"min=1,dive,required"`
	DedupDecimals          int      `yaml:"dedup_decimals" validate:"min=0,max=8"`
	Coins                  []string `yaml:"coins" validate:"min=1,dive,required"`
}

type EmailConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Host     string   `yaml:"host" validate:"required_if=Enabled true"`
	Port     int      `yaml:"port" validate:"required_if=Enabled true"`
	Username string   `yaml:"username"`
	Password string   `yaml:"-"`
	From     string   `yaml:"from" validate:"required_if=Enabled true"`
	To       []string `yaml:"to" validate:"required_if=Enabled true,dive,email"`
}

// LoadConfig reads .env (if any), the optional YAML file at CONFIG_PATH, then
// environment overrides, fills defaults and validates the result.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := getEnv("CONFIG_PATH", "config.yaml")
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		ServerPort:        "8080",
		TesseractDataPath: "/usr/share/tesseract-ocr/4.00/tessdata",
		MaxFileSize:       10 * 1024 * 1024, // 10 MB
		CacheTTL:          30 * time.Minute,
		Analysis: AnalysisConfig{
			NearThreshold:      1.0,
			FarThreshold:       5.0,
			RateFloor:          150,
			InvestmentAmount:   50,
			WindowWidth:        3,
			ReferenceLookAhead: 2,
			ReferenceKeywords:  []string{"index", "mark", "spot"},
			DedupDecimals:      2,
			Coins:              []string{"BTC", "ETH", "BNB", "ARB", "SOL", "ADA", "DOGE", "MNT", "XRP", "TON", "USDT", "USDC"},
		},
		Email: EmailConfig{Port: 587},
	}
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.ServerPort = v
	}
	if v := os.Getenv("TESSDATA_PREFIX"); v != "" {
		c.TesseractDataPath = v
	}
	if v := os.Getenv("PADDLEOCR_API_URL"); v != "" {
		c.PaddleAPIURL = v
	}

	if v := os.Getenv("REFERENCE_PRICE_OVERRIDE"); v != "" {
		price, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("REFERENCE_PRICE_OVERRIDE: %w", err)
		}
		c.Analysis.ReferencePriceOverride = &price
	}
	if v := os.Getenv("INVESTMENT_AMOUNT"); v != "" {
		amount, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("INVESTMENT_AMOUNT: %w", err)
		}
		c.Analysis.InvestmentAmount = amount
	}

	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.Email.Host = v
		c.Email.Enabled = true
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		c.Email.Port = port
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		c.Email.Username = v
	}
	c.Email.Password = os.Getenv("SMTP_PASSWORD")
	if v := os.Getenv("EMAIL_FROM"); v != "" {
		c.Email.From = v
	}
	if v := os.Getenv("EMAIL_TO"); v != "" {
		c.Email.To = nil
		for _, addr := range strings.Split(v, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				c.Email.To = append(c.Email.To, addr)
			}
		}
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
