package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type Config struct {
	Port          string
	AppEnv        string
	DB            DBConfig
	JWTSecret     []byte
	JWTExpiration time.Duration
	PolicyFile    string
	RedisAddr     string
	RedisChannel  string
	TraceFile     string
	CORSOrigins   []string
}

const defaultJWTSecret = "your-secret-key-change-this-in-production"

// Load reads .env when present and then the process environment.
func Load() (*Config, bool) {
	envLoaded := godotenv.Load() == nil

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "doc_governance")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("POLICY_FILE", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_CHANNEL", "review-tasks")
	v.SetDefault("TRACE_FILE", "")
	v.SetDefault("CORS_ORIGINS", "*")

	exp := v.GetDuration("JWT_EXPIRATION")
	if exp <= 0 {
		exp = 24 * time.Hour
	}

	return &Config{
		Port:   v.GetString("PORT"),
		AppEnv: v.GetString("APP_ENV"),
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTSecret:     []byte(v.GetString("JWT_SECRET")),
		JWTExpiration: exp,
		PolicyFile:    v.GetString("POLICY_FILE"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisChannel:  v.GetString("REDIS_CHANNEL"),
		TraceFile:     v.GetString("TRACE_FILE"),
		CORSOrigins:   splitList(v.GetString("CORS_ORIGINS")),
	}, envLoaded
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.AppEnv)
	return env == "prod" || env == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
