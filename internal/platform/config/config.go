// Package config carga la configuración del servicio desde variables de entorno,
// con defaults pensados para dev y validación para producción.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type EmailConfig struct {
	APIURL  string        // EMAIL_API_URL
	APIKey  string        // EMAIL_API_KEY
	From    string        // EMAIL_FROM
	Timeout time.Duration // EMAIL_TIMEOUT
}

// Enabled indica si hay proveedor de email real; si no, se usa el notifier log-only.
func (e EmailConfig) Enabled() bool {
	return strings.TrimSpace(e.APIURL) != "" && strings.TrimSpace(e.APIKey) != ""
}

type Config struct {
	Env string

	// Server
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string
	AppName   string

	// Storage
	DBDSN         string // vacío => repos in-memory
	DBAutoMigrate bool
	RedisURL      string // vacío => rate limiter in-memory

	// Rate limiting
	RateRPS   float64
	RateBurst int

	// Identity
	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration
	// ADMIN_EMAILS (CSV): usuarios que se registran con role=admin.
	AdminEmails []string

	Email EmailConfig

	// Coordinator
	SideEffectTimeout time.Duration
	ReconcileInterval time.Duration // 0 => sin loop periódico

	SwaggerEnabled bool
	MetricsEnabled bool
}

func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func (c Config) Addr() string {
	return ":" + c.Port
}

// Load lee env, aplica defaults, normaliza y valida.
func Load() (Config, error) {
	cfg := Config{
		Env: strings.ToLower(getenv("APP_ENV", EnvProduction)),

		Port:            getenv("PORT", "8080"),
		ReadTimeout:     getdur("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getdur("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getdur("SHUTDOWN_TIMEOUT", 10*time.Second),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getenv("LOG_FORMAT", "text")),
		AppName:   getenv("APP_NAME", "pet-adoption"),

		DBDSN:         getenv("DB_DSN", ""),
		DBAutoMigrate: getbool("DB_AUTO_MIGRATE", true),
		RedisURL:      getenv("REDIS_URL", ""),

		RateRPS:   getfloat("RATE_RPS", 5),
		RateBurst: getint("RATE_BURST", 10),

		JWTSecret: getenv("JWT_SECRET", ""),
		JWTIssuer: getenv("JWT_ISSUER", "pet-adoption"),
		TokenTTL:  getdur("TOKEN_TTL", 24*time.Hour),

		AdminEmails: getlist("ADMIN_EMAILS"),

		Email: EmailConfig{
			APIURL:  getenv("EMAIL_API_URL", ""),
			APIKey:  getenv("EMAIL_API_KEY", ""),
			From:    getenv("EMAIL_FROM", "no-reply@pet-adoption.local"),
			Timeout: getdur("EMAIL_TIMEOUT", 5*time.Second),
		},

		SideEffectTimeout: getdur("SIDE_EFFECT_TIMEOUT", 5*time.Second),
		ReconcileInterval: getdur("RECONCILE_INTERVAL", 0),

		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		MetricsEnabled: getbool("METRICS_ENABLED", true),
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}

	switch cfg.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return cfg, errors.New("APP_ENV must be one of: development, production")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.ShutdownTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.TokenTTL <= 0 {
		return cfg, errors.New("TOKEN_TTL must be > 0")
	}
	if cfg.SideEffectTimeout <= 0 {
		return cfg, errors.New("SIDE_EFFECT_TIMEOUT must be > 0")
	}
	if cfg.ReconcileInterval < 0 {
		return cfg, errors.New("RECONCILE_INTERVAL must be >= 0")
	}

	// En dev se permite firmar con un secreto fijo; en producción es obligatorio.
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		if !cfg.IsDevelopment() {
			return cfg, errors.New("JWT_SECRET is required outside development")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getlist(k string) []string {
	var out []string
	for _, p := range strings.Split(getenv(k, ""), ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getfloat(k string, def float64) float64 {
	if f, err := strconv.ParseFloat(getenv(k, ""), 64); err == nil {
		return f
	}
	return def
}

func getint(k string, def int) int {
	if n, err := strconv.Atoi(getenv(k, "")); err == nil {
		return n
	}
	return def
}

func getbool(k string, def bool) bool {
	if b, err := strconv.ParseBool(getenv(k, "")); err == nil {
		return b
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(getenv(k, "")); err == nil {
		return d
	}
	return def
}
