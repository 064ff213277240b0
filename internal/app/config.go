package app

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/edulearn/edulearn-backend/internal/clients/social"
	"github.com/edulearn/edulearn-backend/internal/data/db"
	"github.com/edulearn/edulearn-backend/internal/jobs/scheduler"
	"github.com/edulearn/edulearn-backend/internal/platform/envutil"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
	"github.com/edulearn/edulearn-backend/internal/platform/sendgrid"
)

type Config struct {
	Port        string
	Environment string
	AppURL      string
	CORSOrigins []string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	DB db.Config

	RedisAddr    string
	RedisChannel string

	SendGrid  sendgrid.Config
	Social    social.Config
	Scheduler scheduler.Config

	OtelEnabled bool
}

// loadDotEnv reads .env when present. Variables already set in the process win.
func loadDotEnv(log *logger.Logger) {
	path := envutil.String("ENV_FILE", ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Warn("could not load env file", "path", path, "error", err)
		return
	}
	log.Info("loaded env file", "path", path)
}

func LoadConfig(log *logger.Logger) Config {
	loadDotEnv(log)

	jwtSecretKey := envutil.String("JWT_SECRET_KEY", "")
	if jwtSecretKey == "" {
		jwtSecretKey = "defaultsecret"
		log.Warn("JWT_SECRET_KEY not set; using insecure default")
	}

	return Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: envutil.String("APP_ENV", "development"),
		AppURL:      envutil.String("APP_URL", "http://localhost:3000"),
		CORSOrigins: envutil.List("CORS_ORIGINS", nil),

		JWTSecretKey:   jwtSecretKey,
		AccessTokenTTL: envutil.Seconds("ACCESS_TOKEN_TTL", 24*time.Hour),

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", "postgres"),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "edulearn"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", ""),
			MaxOpenConns:     envutil.Int("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     envutil.Int("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime:  envutil.Seconds("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			SlowThreshold:    time.Duration(envutil.Int("DB_SLOW_QUERY_MS", 200)) * time.Millisecond,
		},

		RedisAddr:    envutil.String("REDIS_ADDR", ""),
		RedisChannel: envutil.String("REDIS_CHANNEL", "edulearn.events"),

		SendGrid: sendgrid.ConfigFromEnv(),
		Social: social.Config{
			FacebookBaseURL: envutil.String("SOCIAL_FACEBOOK_BASE_URL", social.DefaultFacebookBaseURL),
			TwitterBaseURL:  envutil.String("SOCIAL_TWITTER_BASE_URL", social.DefaultTwitterBaseURL),
			LinkedInBaseURL: envutil.String("SOCIAL_LINKEDIN_BASE_URL", social.DefaultLinkedInBaseURL),
			Timeout:         envutil.Seconds("SOCIAL_HTTP_TIMEOUT_SECONDS", 15*time.Second),
		},
		Scheduler: scheduler.Config{
			Enabled:              envutil.Bool("SCHEDULER_ENABLED", true),
			EnrollmentExpiryCron: envutil.String("ENROLLMENT_EXPIRY_CRON", "@every 15m"),
			PodcastScheduleCron:  envutil.String("PODCAST_SCHEDULE_CRON", "@every 1m"),
		},

		OtelEnabled: envutil.Bool("OTEL_ENABLED", false),
	}
}
