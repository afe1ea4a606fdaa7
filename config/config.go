package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asInt, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}

	return asInt
}

func GetBool(config map[string]string, key string, defaultValue bool) bool {
	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asBool, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}

	return asBool
}

// GetDuration reads an integer count of unit, e.g. GetDuration(c, "READ_TIMEOUT_SECONDS", 180, time.Second).
func GetDuration(config map[string]string, key string, defaultValue int, unit time.Duration) time.Duration {
	return time.Duration(GetInt(config, key, defaultValue)) * unit
}

// GetList splits a comma separated value, dropping blank entries.
func GetList(config map[string]string, key string) []string {
	raw := GetString(config, key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type Config struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	AcceptedOrigins []string
	MaxUploadBytes  int64
	AutoMigrate     bool
	LogLevel        string
	LogFormat       string
	RedisURL        string

	Database Database
	Session  Session
	Storage  Storage
}

type Database struct {
	DSN             string
	ReplicaDSNs     []string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

type Session struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
	BcryptCost   int
}

type Storage struct {
	Bucket        string
	Prefix        string
	PublicBaseURL string
	Endpoint      string
	Region        string
}

// Load builds a Config from an environment map produced by New.
func Load(c map[string]string) Config {
	connectTimeout := GetDuration(c, "DB_CONNECT_TIMEOUT_SECONDS", 5, time.Second)

	return Config{
		Port:            GetString(c, "PORT", "8080"),
		ReadTimeout:     GetDuration(c, "READ_TIMEOUT_SECONDS", 180, time.Second),
		WriteTimeout:    GetDuration(c, "WRITE_TIMEOUT_SECONDS", 180, time.Second),
		IdleTimeout:     GetDuration(c, "IDLE_TIMEOUT_SECONDS", 180, time.Second),
		RequestTimeout:  GetDuration(c, "REQUEST_TIMEOUT_SECONDS", 30, time.Second),
		AcceptedOrigins: acceptedOrigins(c),
		MaxUploadBytes:  int64(GetInt(c, "MAX_UPLOAD_MB", 5)) << 20,
		AutoMigrate:     GetBool(c, "AUTO_MIGRATE", true),
		LogLevel:        GetString(c, "LOG_LEVEL", "info"),
		LogFormat:       GetString(c, "LOG_FORMAT", "console"),
		RedisURL:        GetString(c, "REDIS_URL", ""),
		Database: Database{
			DSN:             databaseDSN(c, connectTimeout),
			ReplicaDSNs:     GetList(c, "DATABASE_REPLICA_URLS"),
			MaxOpenConns:    GetInt(c, "DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    GetInt(c, "DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: GetDuration(c, "DB_CONN_MAX_LIFETIME_MINUTES", 30, time.Minute),
			ConnectTimeout:  connectTimeout,
		},
		Session: Session{
			Secret:       GetString(c, "JWT_SECRET", ""),
			TTL:          GetDuration(c, "SESSION_TTL_HOURS", 720, time.Hour),
			CookieName:   GetString(c, "SESSION_COOKIE_NAME", "session"),
			CookieSecure: GetBool(c, "COOKIE_SECURE", false),
			BcryptCost:   GetInt(c, "BCRYPT_COST", 10),
		},
		Storage: Storage{
			Bucket:        GetString(c, "S3_BUCKET", ""),
			Prefix:        GetString(c, "S3_PREFIX", "screenshots/"),
			PublicBaseURL: GetString(c, "S3_PUBLIC_BASE_URL", ""),
			Endpoint:      GetString(c, "S3_ENDPOINT", ""),
			Region:        GetString(c, "AWS_REGION", "us-east-1"),
		},
	}
}

// Validate reports the settings the HTTP server cannot run without.
func (c Config) Validate() error {
	var problems []error
	if c.Database.DSN == "" {
		problems = append(problems, errors.New("DATABASE_URL or DB_HOST must be set"))
	}
	if c.Session.Secret == "" {
		problems = append(problems, errors.New("JWT_SECRET must be set"))
	} else if len(c.Session.Secret) < 32 {
		problems = append(problems, errors.New("JWT_SECRET must be at least 32 bytes"))
	}
	if c.Session.TTL <= 0 {
		problems = append(problems, errors.New("SESSION_TTL_HOURS must be positive"))
	}
	return errors.Join(problems...)
}

func acceptedOrigins(c map[string]string) []string {
	origins := GetList(c, "ACCEPTED_ORIGINS")
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// databaseDSN prefers DATABASE_URL and otherwise assembles a keyword DSN
// from the individual DB_* settings.
func databaseDSN(c map[string]string, connectTimeout time.Duration) string {
	if dsn := GetString(c, "DATABASE_URL", ""); dsn != "" {
		return dsn
	}
	host := GetString(c, "DB_HOST", "")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s connect_timeout=%d",
		host,
		GetString(c, "DB_USER", "postgres"),
		GetString(c, "DB_PASSWORD", ""),
		GetString(c, "DB_NAME", "showcase"),
		GetString(c, "DB_PORT", "5432"),
		GetString(c, "DB_SSLMODE", "require"),
		int(connectTimeout.Seconds()),
	)
}
