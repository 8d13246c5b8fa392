package infra

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
// Endpoint values are only the boot-time seed; the runtime copy lives in the
// settings store and is mutated through the settings API.
type Config struct {
	AppEnv string
	Port   string

	SDXLEndpointURL   string
	SDXLEndpointToken string
	FluxEndpointURL   string
	FluxEndpointToken string
	WanEndpointURL    string
	WanEndpointToken  string

	GuardEnabled       bool
	GuardEndpointURL   string
	GuardEndpointToken string
	GuardModel         string
	GuardTemperature   float64
	GuardPromptPrefix  string

	SafetyCheckEnabled       bool
	SafetyCheckEndpointURL   string
	SafetyCheckEndpointToken string
	SafetyCheckModel         string

	CORSAllowedOrigins    []string
	JobRegistryMaxEntries int
	StudioConfigPath      string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		SDXLEndpointURL:   os.Getenv("SDXL_ENDPOINT_URL"),
		SDXLEndpointToken: os.Getenv("SDXL_ENDPOINT_TOKEN"),
		FluxEndpointURL:   os.Getenv("FLUX_ENDPOINT_URL"),
		FluxEndpointToken: os.Getenv("FLUX_ENDPOINT_TOKEN"),
		WanEndpointURL:    os.Getenv("WAN_ENDPOINT_URL"),
		WanEndpointToken:  os.Getenv("WAN_ENDPOINT_TOKEN"),

		GuardEnabled:       getEnvBool("GUARD_ENABLED", true),
		GuardEndpointURL:   os.Getenv("GUARD_ENDPOINT_URL"),
		GuardEndpointToken: os.Getenv("GUARD_ENDPOINT_TOKEN"),
		GuardModel:         getEnv("GUARD_MODEL", "granite3-guardian-2b"),
		GuardTemperature:   getEnvFloat("GUARD_TEMP", 0.7),
		GuardPromptPrefix:  getEnv("GUARD_PROMPT_PREFIX", "Draw a picture of"),

		SafetyCheckEnabled:       getEnvBool("SAFETY_CHECK_ENABLED", true),
		SafetyCheckEndpointURL:   os.Getenv("SAFETY_CHECK_ENDPOINT_URL"),
		SafetyCheckEndpointToken: os.Getenv("SAFETY_CHECK_ENDPOINT_TOKEN"),
		SafetyCheckModel:         getEnv("SAFETY_CHECK_MODEL", "safety-checker"),

		CORSAllowedOrigins:    splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		JobRegistryMaxEntries: getEnvInt("JOB_REGISTRY_MAX_ENTRIES", 1024),
		StudioConfigPath:      getEnv("STUDIO_CONFIG_PATH", defaultStudioConfigPath()),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	return cfg, nil
}

func defaultStudioConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".local", "share", "sdxl-ministudio", "config")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
