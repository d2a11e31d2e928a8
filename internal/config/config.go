package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "github.com/HyperCol/taipo-fire-php-re/common/config"
)

// Config safeboard (HTTP API) configuration
type Config struct {
	HTTP struct {
		Addr string
		// "*" keeps the board embeddable anywhere; a concrete origin also allows credentials.
		CORSOrigin string
	}
	DBEnabled    bool
	Database     commoncfg.DatabaseConfig
	RedisEnabled bool
	Redis        commoncfg.RedisConfig
	Log          struct {
		Level  string
		Format string
	}
	Session struct {
		TTL          time.Duration
		CookieName   string
		CookieSecure bool
	}
	Board struct {
		BlockCacheTTL   time.Duration
		NewsDefaultSize int
	}
	Seed struct {
		Enabled  bool
		Email    string
		Password string
		Username string
	}
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.HTTP.CORSOrigin = getEnv("CORS_ALLOWED_ORIGIN", "*")

	// Falls back to in-memory repositories when the database is disabled or unreachable.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database = commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "safeboard",
		SSLMode:  "disable",
		MaxConns: 20,
		MaxIdle:  5,
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Session.TTL = time.Duration(parseInt(getEnv("SESSION_TTL_HOURS", "24"), 24)) * time.Hour
	cfg.Session.CookieName = getEnv("SESSION_COOKIE_NAME", "safeboard_session")
	cfg.Session.CookieSecure = getEnv("SESSION_COOKIE_SECURE", "false") == "true"

	cfg.Board.BlockCacheTTL = time.Duration(parseInt(getEnv("BLOCK_CACHE_TTL_SECONDS", "10"), 10)) * time.Second
	cfg.Board.NewsDefaultSize = parseInt(getEnv("NEWS_DEFAULT_LIMIT", "20"), 20)

	cfg.Seed.Enabled = getEnv("SEED_ADMIN", "true") != "false"
	cfg.Seed.Email = getEnv("SEED_ADMIN_EMAIL", "admin@safeboard.local")
	cfg.Seed.Password = getEnv("SEED_ADMIN_PASSWORD", "ChangeMe123!")
	cfg.Seed.Username = getEnv("SEED_ADMIN_NAME", "admin")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return def
	}
	return i
}
