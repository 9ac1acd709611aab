package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://joestate@localhost/joestate")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_ACCESS_KEY", "minio")
	t.Setenv("MINIO_SECRET_KEY", "minio123")
	t.Setenv("MINIO_BUCKET_LISTINGS", "joestate-listings")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("expected default jwt ttl, got %v", cfg.JWTTTL)
	}
	if cfg.ListingMaxImages != 10 || cfg.ListingImageMaxBytes != 5*1024*1024 {
		t.Fatalf("unexpected image limits: %d / %d", cfg.ListingMaxImages, cfg.ListingImageMaxBytes)
	}
	if len(cfg.AllowOrigins) != 1 || cfg.AllowOrigins[0] != "*" {
		t.Fatalf("unexpected origins: %v", cfg.AllowOrigins)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected redis disabled by default, got %q", cfg.RedisAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("LISTING_MAX_IMAGES", "4")
	t.Setenv("LOCATION_CACHE_TTL", "not-a-duration")
	t.Setenv("ALLOW_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()
	if cfg.JWTTTL != 2*time.Hour {
		t.Fatalf("expected 2h, got %v", cfg.JWTTTL)
	}
	if cfg.ListingMaxImages != 4 {
		t.Fatalf("expected 4 images, got %d", cfg.ListingMaxImages)
	}
	if cfg.LocationCacheTTL != 5*time.Minute {
		t.Fatalf("invalid duration should fall back to default, got %v", cfg.LocationCacheTTL)
	}
	if len(cfg.AllowOrigins) != 2 || cfg.AllowOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.AllowOrigins)
	}
}

func TestLoadPanicsOnMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for missing JWT_SECRET")
		}
	}()
	Load()
}
