package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DatabaseURL  string
	JWTSecret    string
	JWTTTL       time.Duration
	AllowOrigins []string

	LogLevel        string
	LogFormat       string
	LogstashTCPAddr string

	MinIOEndpoint       string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOUseSSL         bool
	MinIOBucketListings string
	MinIOBucketAvatars  string
	MinIOPublicURL      string

	ListingImageMaxBytes int64
	ListingMaxImages     int

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	LocationCacheTTL time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	return Config{
		Port:         getenv("PORT", "8080"),
		DatabaseURL:  must("DATABASE_URL"),
		JWTSecret:    must("JWT_SECRET"),
		JWTTTL:       durationEnv("JWT_TTL", 24*time.Hour),
		AllowOrigins: splitAndTrim(getenv("ALLOW_ORIGINS", "*")),

		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       strings.ToLower(getenv("LOG_FORMAT", "text")),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		MinIOEndpoint:       must("MINIO_ENDPOINT"),
		MinIOAccessKey:      must("MINIO_ACCESS_KEY"),
		MinIOSecretKey:      must("MINIO_SECRET_KEY"),
		MinIOUseSSL:         getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketListings: must("MINIO_BUCKET_LISTINGS"),
		MinIOBucketAvatars:  getenv("MINIO_BUCKET_AVATARS", "joestate-avatars"),
		MinIOPublicURL:      getenv("MINIO_PUBLIC_URL", ""),

		ListingImageMaxBytes: int64Env("LISTING_IMAGE_MAX_BYTES", 5*1024*1024),
		ListingMaxImages:     intEnv("LISTING_MAX_IMAGES", 10),

		RedisAddr:        getenv("REDIS_ADDR", ""),
		RedisPassword:    getenv("REDIS_PASSWORD", ""),
		RedisDB:          intEnv("REDIS_DB", 0),
		LocationCacheTTL: durationEnv("LOCATION_CACHE_TTL", 5*time.Minute),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}

func intEnv(k string, d int) int {
	if v, err := strconv.Atoi(getenv(k, "")); err == nil && v >= 0 {
		return v
	}
	return d
}

func int64Env(k string, d int64) int64 {
	if v, err := strconv.ParseInt(getenv(k, ""), 10, 64); err == nil && v > 0 {
		return v
	}
	return d
}

func durationEnv(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}
