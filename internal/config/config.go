package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	// DataDir holds the local mirror of the active session (identity,
	// responses, payment flag).
	DataDir string

	AuthSecret string

	AdminUser     string
	AdminPass     string // demo fallback when no hash is configured
	AdminPassHash string // bcrypt

	CORSOrigins []string

	// AnalyzerURL points at an optional remote analysis backend. Empty means
	// local deterministic generation only.
	AnalyzerURL   string
	AnalysisDelay time.Duration

	ReportCacheSize int

	SeedCatalog bool
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:  addr,
		PublicURL: os.Getenv("PUBLIC_URL"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		DataDir: envOr("DATA_DIR", "./data"),

		AuthSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),

		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPass:     envOr("ADMIN_PASS", "demo123"),
		AdminPassHash: os.Getenv("ADMIN_PASS_HASH"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),

		AnalyzerURL:   os.Getenv("ANALYZER_URL"),
		AnalysisDelay: envDuration("ANALYSIS_DELAY", 0),

		ReportCacheSize: envInt("REPORT_CACHE_SIZE", 128),

		SeedCatalog: envBool("SEED_CATALOG", true),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
