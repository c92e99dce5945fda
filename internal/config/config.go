package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken       string
	DBDSN               string
	Environment         string
	BusinessName        string
	Timezone            string // фиксированная таймзона салона
	SlotIntervalMinutes int    // шаг сетки слотов
	MigrationsPath      string
}

func LoadConfig() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		DBDSN:          os.Getenv("DB_DSN"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		Environment:    os.Getenv("ENV"),
		BusinessName:   os.Getenv("BUSINESS_NAME"),
		Timezone:       os.Getenv("TIMEZONE"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
	}

	// Дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.BusinessName == "" {
		cfg.BusinessName = "Your Salon"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "America/New_York"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	cfg.SlotIntervalMinutes = 15
	if raw := os.Getenv("SLOT_INTERVAL_MINUTES"); raw != "" {
		interval, err := strconv.Atoi(raw)
		if err != nil || interval <= 0 {
			return nil, fmt.Errorf("SLOT_INTERVAL_MINUTES must be a positive integer, got %q", raw)
		}
		cfg.SlotIntervalMinutes = interval
	}

	// Обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	log.Printf("Config loaded\n")

	return cfg, nil
}

// Location возвращает таймзону салона
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		// Валидируется в LoadConfig
		panic("invalid timezone: " + c.Timezone)
	}
	return loc
}
