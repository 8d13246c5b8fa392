package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.AppEnv != "development" {
		t.Fatalf("AppEnv = %q", cfg.AppEnv)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if !cfg.GuardEnabled || !cfg.SafetyCheckEnabled {
		t.Fatal("moderation gates should default to enabled")
	}
	if cfg.GuardModel != "granite3-guardian-2b" {
		t.Fatalf("GuardModel = %q", cfg.GuardModel)
	}
	if cfg.GuardTemperature != 0.7 {
		t.Fatalf("GuardTemperature = %v", cfg.GuardTemperature)
	}
	if cfg.GuardPromptPrefix != "Draw a picture of" {
		t.Fatalf("GuardPromptPrefix = %q", cfg.GuardPromptPrefix)
	}
	if cfg.SafetyCheckModel != "safety-checker" {
		t.Fatalf("SafetyCheckModel = %q", cfg.SafetyCheckModel)
	}
	if cfg.JobRegistryMaxEntries != 1024 {
		t.Fatalf("JobRegistryMaxEntries = %d", cfg.JobRegistryMaxEntries)
	}
	if cfg.StudioConfigPath == "" {
		t.Fatal("StudioConfigPath should have a default")
	}
	if cfg.HTTPReadTimeout != 15*time.Second || cfg.HTTPWriteTimeout != 30*time.Second {
		t.Fatalf("timeouts = %v / %v", cfg.HTTPReadTimeout, cfg.HTTPWriteTimeout)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SDXL_ENDPOINT_URL", "http://sdxl.internal")
	t.Setenv("SDXL_ENDPOINT_TOKEN", "tok")
	t.Setenv("GUARD_ENABLED", "false")
	t.Setenv("GUARD_TEMP", "0.2")
	t.Setenv("JOB_REGISTRY_MAX_ENTRIES", "32")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, http://studio.internal")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.AppEnv != "production" {
		t.Fatalf("AppEnv = %q", cfg.AppEnv)
	}
	if cfg.SDXLEndpointURL != "http://sdxl.internal" || cfg.SDXLEndpointToken != "tok" {
		t.Fatalf("sdxl endpoint = %q / %q", cfg.SDXLEndpointURL, cfg.SDXLEndpointToken)
	}
	if cfg.GuardEnabled {
		t.Fatal("GuardEnabled should be false")
	}
	if cfg.GuardTemperature != 0.2 {
		t.Fatalf("GuardTemperature = %v", cfg.GuardTemperature)
	}
	if cfg.JobRegistryMaxEntries != 32 {
		t.Fatalf("JobRegistryMaxEntries = %d", cfg.JobRegistryMaxEntries)
	}
	want := []string{"http://localhost:5173", "http://studio.internal"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	for i, origin := range want {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Fatalf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
		}
	}
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("GUARD_TEMP", "warm")
	t.Setenv("JOB_REGISTRY_MAX_ENTRIES", "lots")
	t.Setenv("SAFETY_CHECK_ENABLED", "maybe")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.GuardTemperature != 0.7 {
		t.Fatalf("GuardTemperature = %v", cfg.GuardTemperature)
	}
	if cfg.JobRegistryMaxEntries != 1024 {
		t.Fatalf("JobRegistryMaxEntries = %d", cfg.JobRegistryMaxEntries)
	}
	if !cfg.SafetyCheckEnabled {
		t.Fatal("malformed bool should fall back to default")
	}
}
