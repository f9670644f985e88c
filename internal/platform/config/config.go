package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	// PostgresDSN switches the application and audit stores from in-memory
	// to postgres when set.
	PostgresDSN string

	// Redis backs the waiting-list queues when configured.
	Redis RedisConfig

	// KafkaBrokers enables audit fan-out when non-empty.
	KafkaBrokers []string

	// BatchConcurrency caps in-flight items per bulk action.
	BatchConcurrency int

	// CapacityFile points at the facility registry's capacity export used to
	// seed the ledger at startup.
	CapacityFile string

	// BootstrapAdmin seeds one admin account so a fresh deployment can log in.
	BootstrapAdmin Credentials
}

// Credentials is a seeded username/password pair.
type Credentials struct {
	Username string
	Password string
}

// RedisConfig carries connection tuning for the waiting-list store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("OPPTAK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; override in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("OPPTAK_KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		PostgresDSN:   os.Getenv("OPPTAK_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("OPPTAK_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		KafkaBrokers:     brokers,
		BatchConcurrency: 8,
		CapacityFile:     os.Getenv("OPPTAK_CAPACITY_FILE"),
		BootstrapAdmin: Credentials{
			Username: envDefault("OPPTAK_ADMIN_USER", "admin"),
			Password: envDefault("OPPTAK_ADMIN_PASSWORD", "admin-dev-password"),
		},
	}
}
