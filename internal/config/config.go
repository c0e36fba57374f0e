package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	MongoURI            string
	MongoDB             string
	RedisURI            string
	JWTSecret           string
	TokenTTL            time.Duration // bearer token lifetime, also the unread cache TTL
	ServerAuthKeys      map[string]string // server-auth key -> tenant system name
	Port                string
	AllowedOrigins      []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	FileServiceURL      string
	FileServiceToken    string
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	PageLimit           int
	LogLevel            string
	Host                string // Raw HOST env (e.g. https://noti.example.com)
	AllowedHost         string // Hostname only for strict host check (production only)
	Environment         string // ENV: production, development, etc.
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8080")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = hostname(host)
	}

	allowedOrigins := parseList(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	return &Config{
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017")),
		MongoDB:             getEnv("MONGODB_DB", "noti"),
		RedisURI:            getEnv("REDIS_URI", "redis://localhost:6379/0"),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		TokenTTL:            time.Duration(getEnvInt("TOKEN_TTL_MINUTES", 300)) * time.Minute,
		ServerAuthKeys:      parseServerAuthKeys(getEnv("SERVER_AUTH_KEYS", "")),
		Host:                host,
		AllowedHost:         allowedHost,
		Environment:         env,
		Port:                getEnv("PORT", "8080"),
		AllowedOrigins:      allowedOrigins,
		FileServiceURL:      strings.TrimRight(getEnv("FILE_SERVICE_URL", ""), "/"),
		FileServiceToken:    getEnv("FILE_SERVICE_TOKEN", ""),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "activity"),
		PageLimit:           getEnvInt("PAGE_LIMIT", 20),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}
}

// hostname strips scheme, path and port.
func hostname(raw string) string {
	h := raw
	for _, prefix := range []string{"https://", "http://"} {
		h = strings.TrimPrefix(h, prefix)
	}
	if idx := strings.Index(h, "/"); idx != -1 {
		h = h[:idx]
	}
	if idx := strings.Index(h, ":"); idx != -1 {
		h = h[:idx]
	}
	return strings.TrimSpace(h)
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseServerAuthKeys reads "key:system,key2:system2". Entries without a
// system name are skipped.
func parseServerAuthKeys(s string) map[string]string {
	out := map[string]string{}
	for _, entry := range parseList(s) {
		key, system, ok := strings.Cut(entry, ":")
		key, system = strings.TrimSpace(key), strings.TrimSpace(system)
		if !ok || key == "" || system == "" {
			continue
		}
		out[key] = system
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
