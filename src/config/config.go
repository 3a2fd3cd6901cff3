package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppURI         string
	AllowedOrigins string
	FrontendURL    string
	RequestTimeout time.Duration

	Storage  string // mongo | memory
	MongoURI string
	MongoDB  string

	RedisURI string

	JWTSecret          string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	LoginMaxAttempts   int
	LoginCooldown      time.Duration

	BlobDriver          string // local | supabase
	BlobLocalDir        string
	BlobPublicBaseURL   string
	SupabaseProjectURL  string
	SupabaseServiceRole string
	SupabaseBucket      string
	ImageMaxDimension   int

	SeedDemo bool
}

// New returns a viper instance with defaults applied and the environment bound.
func New() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("APP_URI", "8888")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("STORAGE", "mongo")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB", "FeedbackDB")
	v.SetDefault("REDIS_URI", "")
	v.SetDefault("JWT_SECRET", "your_secret_key")
	v.SetDefault("REFRESH_TOKEN_SECRET", "your_refresh_secret_key")
	v.SetDefault("ACCESS_TOKEN_EXPIRY", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_EXPIRY", 240*time.Hour)
	v.SetDefault("LOGIN_MAX_ATTEMPTS", 5)
	v.SetDefault("LOGIN_COOLDOWN", 5*time.Minute)
	v.SetDefault("BLOB_DRIVER", "local")
	v.SetDefault("BLOB_LOCAL_DIR", "./uploads")
	v.SetDefault("BLOB_PUBLIC_BASE_URL", "http://localhost:8888/uploads")
	v.SetDefault("SUPABASE_PROJECT_URL", "")
	v.SetDefault("SUPABASE_SERVICE_ROLE_KEY", "")
	v.SetDefault("SUPABASE_BUCKET", "feedback-images")
	v.SetDefault("IMAGE_MAX_DIMENSION", 1600)
	v.SetDefault("SEED_DEMO", false)

	v.AutomaticEnv()
	return v
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Warning: No .env file found")
	}
	return FromViper(New())
}

func FromViper(v *viper.Viper) *Config {
	return &Config{
		AppURI:              v.GetString("APP_URI"),
		AllowedOrigins:      v.GetString("ALLOWED_ORIGINS"),
		FrontendURL:         v.GetString("FRONTEND_URL"),
		RequestTimeout:      v.GetDuration("REQUEST_TIMEOUT"),
		Storage:             strings.ToLower(v.GetString("STORAGE")),
		MongoURI:            v.GetString("MONGO_URI"),
		MongoDB:             v.GetString("MONGO_DB"),
		RedisURI:            v.GetString("REDIS_URI"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		RefreshSecret:       v.GetString("REFRESH_TOKEN_SECRET"),
		AccessTokenExpiry:   v.GetDuration("ACCESS_TOKEN_EXPIRY"),
		RefreshTokenExpiry:  v.GetDuration("REFRESH_TOKEN_EXPIRY"),
		LoginMaxAttempts:    v.GetInt("LOGIN_MAX_ATTEMPTS"),
		LoginCooldown:       v.GetDuration("LOGIN_COOLDOWN"),
		BlobDriver:          strings.ToLower(v.GetString("BLOB_DRIVER")),
		BlobLocalDir:        v.GetString("BLOB_LOCAL_DIR"),
		BlobPublicBaseURL:   v.GetString("BLOB_PUBLIC_BASE_URL"),
		SupabaseProjectURL:  v.GetString("SUPABASE_PROJECT_URL"),
		SupabaseServiceRole: v.GetString("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseBucket:      v.GetString("SUPABASE_BUCKET"),
		ImageMaxDimension:   v.GetInt("IMAGE_MAX_DIMENSION"),
		SeedDemo:            v.GetBool("SEED_DEMO"),
	}
}

// UseMemoryStore reports whether the in-process store backs the repositories.
func (c *Config) UseMemoryStore() bool {
	return c.Storage == "memory"
}
