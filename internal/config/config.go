package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Application
	AppEnv   string
	LogLevel string

	// Economy. These are fixed by policy but configurable per deployment;
	// nothing below should be hard-coded at call sites.
	EntitlementPrice  int64
	ReferrerBonus     int64
	ReferredUserBonus int64
	FreeEditLimit     int
	PaidEditLimit     int
	BaseSlots         int
	CodeTokenLength   int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "alba"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "alba_market"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		EntitlementPrice:  getEnvInt64("ENTITLEMENT_PRICE", 30),
		ReferrerBonus:     getEnvInt64("REFERRER_BONUS", 10),
		ReferredUserBonus: getEnvInt64("REFERRED_USER_BONUS", 5),
		FreeEditLimit:     getEnvInt("FREE_EDIT_LIMIT", 3),
		PaidEditLimit:     getEnvInt("PAID_EDIT_LIMIT", 5),
		BaseSlots:         getEnvInt("BASE_SLOTS", 2),
		CodeTokenLength:   getEnvInt("CODE_TOKEN_LENGTH", 24),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.EntitlementPrice <= 0 {
		return fmt.Errorf("ENTITLEMENT_PRICE must be positive")
	}
	if c.ReferrerBonus <= 0 || c.ReferredUserBonus <= 0 {
		return fmt.Errorf("referral bonuses must be positive")
	}
	if c.BaseSlots < 0 {
		return fmt.Errorf("BASE_SLOTS must not be negative")
	}
	// 16 bytes of entropy needs 22 chars of a 62-char alphabet
	if c.CodeTokenLength < 22 {
		return fmt.Errorf("CODE_TOKEN_LENGTH must be at least 22")
	}
	return nil
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != "production" {
		return nil
	}
	if c.DBSSLMode != "require" {
		return fmt.Errorf("DB_SSLMODE must be 'require' in production")
	}
	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}
