package config

import (
	"fmt"
	"time"
)

// Comment edit policies.
const (
	CommentEditByAuthor = "author"
	CommentEditDisabled = "none"
)

// Settings is the typed view of the environment used at bootstrap.
type Settings struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	LogLevel     string

	DBType             string
	DatabaseURL        string
	SQLitePath         string
	ReplicaDSN         string
	SlowQueryThreshold time.Duration

	JWTSecret         string
	AcceptedOrigins   []string
	TrustProxyHeaders bool

	RedisAddr   string
	NavCacheTTL time.Duration

	ResendAPIKey         string
	ResendFromEmail      string
	ContactEmail         string
	ContactRatePerMinute int

	CommentEditPolicy string
	DefaultUserImage  string
	MaxImageBytes     int
	SeedUsers         bool

	GenerateModels       bool
	GenerateColumnReport bool
}

// Load reads Settings from an environment map built by New.
func Load(c map[string]string) Settings {
	s := Settings{
		Port:         GetString(c, "PORT", "8080"),
		ReadTimeout:  GetSeconds(c, "READ_TIMEOUT_SECONDS", 180),
		WriteTimeout: GetSeconds(c, "WRITE_TIMEOUT_SECONDS", 180),
		IdleTimeout:  GetSeconds(c, "IDLE_TIMEOUT_SECONDS", 180),
		LogLevel:     GetString(c, "LOG_LEVEL", "info"),

		DBType:             GetString(c, "DB_TYPE", "sqlite"),
		DatabaseURL:        GetString(c, "DATABASE_URL", ""),
		SQLitePath:         GetString(c, "SQLITE_PATH", "./data/blog.db"),
		ReplicaDSN:         GetString(c, "DB_REPLICA_DSN", ""),
		SlowQueryThreshold: GetSeconds(c, "DB_SLOW_QUERY_SECONDS", 10),

		JWTSecret:         GetString(c, "JWT_SECRET", ""),
		AcceptedOrigins:   GetList(c, "ACCEPTED_ORIGINS"),
		TrustProxyHeaders: GetBool(c, "TRUST_PROXY_HEADERS", false),

		RedisAddr:   GetString(c, "REDIS_ADDR", ""),
		NavCacheTTL: GetSeconds(c, "NAV_CACHE_TTL_SECONDS", 60),

		ResendAPIKey:         GetString(c, "RESEND_API_KEY", ""),
		ResendFromEmail:      GetString(c, "RESEND_FROM_EMAIL", ""),
		ContactEmail:         GetString(c, "CONTACT_EMAIL", ""),
		ContactRatePerMinute: GetInt(c, "CONTACT_RATE_PER_MINUTE", 6),

		CommentEditPolicy: GetString(c, "COMMENT_EDIT_POLICY", CommentEditByAuthor),
		DefaultUserImage:  GetString(c, "DEFAULT_USER_IMAGE", ""),
		MaxImageBytes:     GetInt(c, "MAX_IMAGE_BYTES", 2*1024*1024),
		SeedUsers:         GetBool(c, "SEED_USERS", false),

		GenerateModels:       GetBool(c, "GENERATE_MODELS", false),
		GenerateColumnReport: GetBool(c, "GENERATE_COLUMN_REPORT", false),
	}

	// Supabase connection parts take precedence over a bare DATABASE_URL.
	if s.DBType == "supa" {
		s.DatabaseURL = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			GetString(c, "SUPABASE_DB_HOST", ""),
			GetString(c, "SUPABASE_DB_USER", ""),
			GetString(c, "SUPABASE_DB_PASSWORD", ""),
			GetString(c, "SUPABASE_DB_NAME", ""),
			GetString(c, "SUPABASE_DB_PORT", "5432"),
		)
	}

	return s
}
