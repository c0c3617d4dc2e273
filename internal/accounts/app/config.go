package app

import (
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/samber/oops"
)

const (
	AlgorithmHS256 = "HS256"
	AlgorithmEdDSA = "EdDSA"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	QueueMemory = "memory"
	QueueRedis  = "redis"

	BlobLocal = "local"
	BlobS3    = "s3"

	minSecretLength = 32
)

// Config is read from the environment once at startup.
type Config struct {
	Env                  string        `env:"ENV" envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	RoutePrefix            string        `env:"AUTH_ROUTE_PREFIX" envDefault:"/api/auth"`
	Issuer                 string        `env:"AUTH_ISSUER" envDefault:"kodefactor-accounts"`
	Algorithm              string        `env:"AUTH_ALGORITHM" envDefault:"HS256"`
	JWTSecret              string        `env:"AUTH_JWT_SECRET"`
	SigningKeyFile         string        `env:"AUTH_SIGNING_KEY_FILE"` // EdDSA only; empty means a fresh key per start
	TokenTTL               time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"1h"`
	CodeTTL                time.Duration `env:"AUTH_CODE_TTL" envDefault:"15m"`
	RequireVerifiedSession bool          `env:"AUTH_REQUIRE_VERIFIED_SESSION" envDefault:"false"`
	PasswordPepper         string        `env:"AUTH_PASSWORD_PEPPER"`

	DatabaseDriver string `env:"AUTH_DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseFile   string `env:"AUTH_DATABASE_FILE" envDefault:"accounts.db"`
	DatabaseURL    string `env:"AUTH_DATABASE_URL"`

	MailQueue       string  `env:"MAIL_QUEUE" envDefault:"memory"`
	MailQueueSize   int     `env:"MAIL_QUEUE_SIZE" envDefault:"256"`
	MailWorkers     int     `env:"MAIL_WORKERS" envDefault:"2"`
	MailSendRate    float64 `env:"MAIL_SEND_RATE" envDefault:"5"`
	MailMaxAttempts uint64  `env:"MAIL_MAX_ATTEMPTS" envDefault:"3"`
	RedisURL        string  `env:"REDIS_URL"`

	SMTPHost     string `env:"SMTP_HOST"` // empty logs mail instead of sending it
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`

	BlobBackend       string `env:"BLOB_BACKEND" envDefault:"local"`
	BlobLocalDir      string `env:"BLOB_LOCAL_DIR" envDefault:"uploads"`
	BlobPublicBaseURL string `env:"BLOB_PUBLIC_BASE_URL"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKey       string `env:"S3_ACCESS_KEY"`
	S3SecretKey       string `env:"S3_SECRET_KEY"`

	UploadMaxBytes int64    `env:"UPLOAD_MAX_BYTES" envDefault:"5242880"`
	CORSOrigins    []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://localhost:5173" envSeparator:","`
	MetricsEnabled bool     `env:"METRICS_ENABLED" envDefault:"true"`
}

// LoadConfig parses the process environment and validates the result.
func LoadConfig() (Config, error) {
	return parseConfig(env.Options{})
}

// LoadDatabaseConfig parses the environment but only checks the database
// settings. Maintenance commands use it so they run without signing secrets.
func LoadDatabaseConfig() (Config, error) {
	cfg, err := parseRaw(env.Options{})
	if err != nil {
		return Config{}, err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseConfig(opts env.Options) (Config, error) {
	cfg, err := parseRaw(opts)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseRaw(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}
	return cfg, nil
}

// Validate checks the combinations the struct tags cannot express.
func (c Config) Validate() error {
	invalid := oops.Code("CONFIG_INVALID")

	switch c.Algorithm {
	case AlgorithmHS256:
		if len(c.JWTSecret) < minSecretLength {
			return invalid.With("key", "AUTH_JWT_SECRET").
				Errorf("AUTH_JWT_SECRET must be at least %d bytes for HS256", minSecretLength)
		}
	case AlgorithmEdDSA:
	default:
		return invalid.With("key", "AUTH_ALGORITHM").Errorf("unsupported algorithm %q", c.Algorithm)
	}

	if err := c.ValidateDatabase(); err != nil {
		return err
	}

	switch c.MailQueue {
	case QueueMemory:
	case QueueRedis:
		if c.RedisURL == "" {
			return invalid.With("key", "REDIS_URL").Errorf("REDIS_URL is required for the redis mail queue")
		}
	default:
		return invalid.With("key", "MAIL_QUEUE").Errorf("unsupported mail queue %q", c.MailQueue)
	}

	switch c.BlobBackend {
	case BlobLocal:
	case BlobS3:
		if c.S3Bucket == "" {
			return invalid.With("key", "S3_BUCKET").Errorf("S3_BUCKET is required for the s3 blob backend")
		}
	default:
		return invalid.With("key", "BLOB_BACKEND").Errorf("unsupported blob backend %q", c.BlobBackend)
	}

	if c.TokenTTL <= 0 || c.CodeTTL <= 0 {
		return invalid.Errorf("AUTH_TOKEN_TTL and AUTH_CODE_TTL must be positive")
	}
	if c.UploadMaxBytes <= 0 {
		return invalid.With("key", "UPLOAD_MAX_BYTES").Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if slices.Contains(c.CORSOrigins, "*") && c.Env == "prod" {
		return invalid.With("key", "CORS_ALLOWED_ORIGINS").Errorf("wildcard CORS origin is not allowed in prod")
	}
	return nil
}

// ValidateDatabase checks only the storage settings.
func (c Config) ValidateDatabase() error {
	invalid := oops.Code("CONFIG_INVALID")

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			return invalid.With("key", "AUTH_DATABASE_FILE").Errorf("AUTH_DATABASE_FILE is required for sqlite")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return invalid.With("key", "AUTH_DATABASE_URL").Errorf("AUTH_DATABASE_URL is required for postgres")
		}
	default:
		return invalid.With("key", "AUTH_DATABASE_DRIVER").Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	return nil
}
