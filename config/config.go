package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StoreMongo = "mongo"
	StoreLocal = "local"

	AuthModeOpen     = "open"
	AuthModePassword = "password"
)

type Config struct {
	Port string `env:"PORT" env-default:"5000"`

	MongoURI      string `env:"MONGO_URI"`
	DBUser        string `env:"DB_USER"`
	DBPass        string `env:"DB_PASS"`
	DBCluster     string `env:"DB_CLUSTER" env-default:"cluster0.ncskwvc.mongodb.net"`
	MongoDatabase string `env:"MONGO_DATABASE" env-default:"clean-co"`

	StoreDriver string `env:"STORE_DRIVER" env-default:"mongo"`
	LocalDBPath string `env:"LOCAL_DB_PATH" env-default:"./database/clean-co.json"`

	AccessTokenSecret string        `env:"ACCESS_TOKEN_SECRET"`
	AccessTokenTTL    time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"1h"`
	AuthMode          string        `env:"AUTH_MODE" env-default:"open"`

	CookieName     string `env:"COOKIE_NAME" env-default:"token"`
	CookieSecure   bool   `env:"COOKIE_SECURE" env-default:"false"`
	CookieSameSite string `env:"COOKIE_SAMESITE" env-default:"Lax"`

	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" env-default:"http://localhost:5000"`

	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" env-default:"10s"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"15s"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"json"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" env-separator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" env-default:"bookings.events"`
}

// Load reads an optional .env file and then the process environment.
// Values already present in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (cfg *Config) normalize() {
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))
	brokers := cfg.KafkaBrokers[:0]
	for _, b := range cfg.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	cfg.KafkaBrokers = brokers
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.StoreDriver {
	case StoreMongo:
		if cfg.MongoURI == "" && (cfg.DBUser == "" || cfg.DBPass == "") {
			errors = append(errors, "either MONGO_URI or DB_USER and DB_PASS must be set")
		}
		if cfg.MongoURI != "" && !mongoSchemeRegex.MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MONGO_URI must start with 'mongodb://' or 'mongodb+srv://', got: %s", RedactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabase == "" {
			errors = append(errors, "MONGO_DATABASE cannot be empty")
		}
	case StoreLocal:
		if cfg.LocalDBPath == "" {
			errors = append(errors, "LOCAL_DB_PATH cannot be empty")
		}
	default:
		errors = append(errors, fmt.Sprintf("STORE_DRIVER must be one of: mongo local, got: %s", cfg.StoreDriver))
	}

	if cfg.AccessTokenSecret == "" {
		errors = append(errors, "ACCESS_TOKEN_SECRET is required")
	}
	if cfg.AccessTokenTTL <= 0 {
		errors = append(errors, fmt.Sprintf("ACCESS_TOKEN_TTL must be positive, got: %s", cfg.AccessTokenTTL))
	}
	if cfg.AuthMode != AuthModeOpen && cfg.AuthMode != AuthModePassword {
		errors = append(errors, fmt.Sprintf("AUTH_MODE must be one of: open password, got: %s", cfg.AuthMode))
	}

	if cfg.CookieName == "" {
		errors = append(errors, "COOKIE_NAME cannot be empty")
	}
	switch cfg.CookieSameSite {
	case "Lax", "Strict", "None":
	default:
		errors = append(errors, fmt.Sprintf("COOKIE_SAMESITE must be one of: Lax Strict None, got: %s", cfg.CookieSameSite))
	}
	if cfg.CookieSameSite == "None" && !cfg.CookieSecure {
		errors = append(errors, "COOKIE_SAMESITE=None requires COOKIE_SECURE=true")
	}
	if strings.Contains(cfg.CORSAllowOrigins, "*") {
		errors = append(errors, "CORS_ALLOW_ORIGINS cannot contain a wildcard because credentials are allowed")
	}

	if cfg.StoreTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("STORE_TIMEOUT must be positive, got: %s", cfg.StoreTimeout))
	}
	if cfg.ConnectTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("CONNECT_TIMEOUT must be positive, got: %s", cfg.ConnectTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("SHUTDOWN_TIMEOUT must be positive, got: %s", cfg.ShutdownTimeout))
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("REDIS_DB cannot be negative, got: %d", cfg.RedisDB))
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		errors = append(errors, "KAFKA_TOPIC cannot be empty when KAFKA_BROKERS is set")
	}

	if len(errors) > 0 {
		errMsg := "configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}
	return nil
}

// MongoConnString returns MONGO_URI when set, otherwise an Atlas SRV URI
// assembled from the DB_* credentials.
func (cfg *Config) MongoConnString() string {
	if cfg.MongoURI != "" {
		return cfg.MongoURI
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(cfg.DBUser, cfg.DBPass),
		Host:     cfg.DBCluster,
		Path:     "/" + cfg.MongoDatabase,
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

func (cfg *Config) ListenAddr() string {
	return ":" + cfg.Port
}

func (cfg *Config) RevocationEnabled() bool {
	return cfg.RedisAddr != ""
}

func (cfg *Config) EventsEnabled() bool {
	return len(cfg.KafkaBrokers) > 0
}

// LogValues returns the configuration as key/value pairs safe to log.
func (cfg *Config) LogValues() []any {
	return []any{
		"port", cfg.Port,
		"store_driver", cfg.StoreDriver,
		"mongo_uri", RedactMongoURI(cfg.MongoConnString()),
		"mongo_database", cfg.MongoDatabase,
		"local_db_path", cfg.LocalDBPath,
		"auth_mode", cfg.AuthMode,
		"access_token_ttl", cfg.AccessTokenTTL,
		"cookie_name", cfg.CookieName,
		"cookie_secure", cfg.CookieSecure,
		"cookie_samesite", cfg.CookieSameSite,
		"cors_allow_origins", cfg.CORSAllowOrigins,
		"store_timeout", cfg.StoreTimeout,
		"connect_timeout", cfg.ConnectTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"revocation_enabled", cfg.RevocationEnabled(),
		"events_enabled", cfg.EventsEnabled(),
		"kafka_topic", cfg.KafkaTopic,
	}
}

var (
	mongoSchemeRegex     = regexp.MustCompile(`^mongodb(\+srv)?://`)
	mongoCredentialRegex = regexp.MustCompile(`(mongodb(\+srv)?://)[^:@/]+:[^@/]+@`)
)

func RedactMongoURI(uri string) string {
	return mongoCredentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func isNotExist(err error) bool {
	return os.IsNotExist(err)
}
