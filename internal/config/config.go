package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBPath      string
	RankStore   string // "memory" or "redis"
	RankAOFPath string
	RedisAddr   string

	TopN             int
	ContributionRate float64
	SettleEvery      time.Duration

	// AllowCorrections permits zero and negative earning amounts.
	AllowCorrections bool
}

func Load() *Config {
	cfg := &Config{
		DBPath:           getEnv("DB_PATH", "rankboard.sqlite"),
		RankStore:        getEnv("RANK_STORE", "memory"),
		RankAOFPath:      getEnv("RANK_AOF_PATH", "rankboard.aof"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		TopN:             getEnvInt("TOP_N", 10),
		ContributionRate: 0.02,
		SettleEvery:      getEnvDuration("SETTLE_EVERY", 7*24*time.Hour),
		AllowCorrections: getEnvBool("ALLOW_CORRECTIONS", false),
	}

	if os.Getenv("API_KEY") == "" || os.Getenv("ADMIN_TOKEN") == "" {
		log.Fatal("Missing critical environment variables")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
