package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App            AppConfig
	Service        ServiceConfig
	HTTP           HTTPConfig
	DB             DBConfig
	Redis          RedisConfig
	JWT            JWTConfig
	Password       PasswordConfig
	AuthRateLimit  AuthRateLimitConfig
	WriteRateLimit WriteRateLimitConfig
	FeatureFlags   FeatureFlagsConfig
	Eventing       EventingConfig
	GCP            GCPConfig
	PubSub         PubSubConfig
	SMTP           SMTPConfig
	CORS           CORSConfig
	Outbox         OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DENTAL_APP_ENV" required:"true"`
	Port         string `envconfig:"DENTAL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DENTAL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DENTAL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DENTAL_SERVICE_KIND" default:"api"`
}

type HTTPConfig struct {
	ReadTimeout    time.Duration `envconfig:"DENTAL_HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout   time.Duration `envconfig:"DENTAL_HTTP_WRITE_TIMEOUT" default:"20s"`
	IdleTimeout    time.Duration `envconfig:"DENTAL_HTTP_IDLE_TIMEOUT" default:"60s"`
	RequestTimeout time.Duration `envconfig:"DENTAL_HTTP_REQUEST_TIMEOUT" default:"15s"`
	ShutdownGrace  time.Duration `envconfig:"DENTAL_HTTP_SHUTDOWN_GRACE" default:"20s"`
}

type DBConfig struct {
	DSN    string `envconfig:"DENTAL_DB_DSN"`
	Driver string `envconfig:"DENTAL_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"DENTAL_DB_HOST"`
	Port     int    `envconfig:"DENTAL_DB_PORT" default:"5432"`
	User     string `envconfig:"DENTAL_DB_USER"`
	Password string `envconfig:"DENTAL_DB_PASSWORD"`
	Name     string `envconfig:"DENTAL_DB_NAME"`
	SSLMode  string `envconfig:"DENTAL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DENTAL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DENTAL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DENTAL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DENTAL_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"DENTAL_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DENTAL_REDIS_URL"`
	Address      string        `envconfig:"DENTAL_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"DENTAL_REDIS_PASSWORD"`
	DB           int           `envconfig:"DENTAL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DENTAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DENTAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DENTAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DENTAL_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"DENTAL_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DENTAL_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DENTAL_JWT_ISSUER" default:"dentalclinic"`
	ExpirationMinutes      int    `envconfig:"DENTAL_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"DENTAL_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DENTAL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DENTAL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DENTAL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DENTAL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DENTAL_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DENTAL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DENTAL_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DENTAL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DENTAL_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DENTAL_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DENTAL_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// WriteRateLimitConfig throttles appointment mutations per client IP inside a
// single API instance.
type WriteRateLimitConfig struct {
	PerSecond float64       `envconfig:"DENTAL_WRITE_RATE_LIMIT_PER_SECOND" default:"5"`
	Burst     int           `envconfig:"DENTAL_WRITE_RATE_LIMIT_BURST" default:"10"`
	IdleTTL   time.Duration `envconfig:"DENTAL_WRITE_RATE_LIMIT_IDLE_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DENTAL_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	ConsumerIdempotencyTTL time.Duration `envconfig:"DENTAL_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"DENTAL_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"DENTAL_PUBSUB_NOTIFICATION_TOPIC" default:"dental-notification-events"`
	NotificationSubscription string `envconfig:"DENTAL_PUBSUB_NOTIFICATION_SUBSCRIPTION" default:"dental-notification-events-sub"`
}

type SMTPConfig struct {
	Host       string        `envconfig:"DENTAL_SMTP_HOST"`
	Port       int           `envconfig:"DENTAL_SMTP_PORT" default:"587"`
	Username   string        `envconfig:"DENTAL_SMTP_USERNAME"`
	Password   string        `envconfig:"DENTAL_SMTP_PASSWORD"`
	From       string        `envconfig:"DENTAL_SMTP_FROM" default:"no-reply@dentalclinic.local"`
	Timeout    time.Duration `envconfig:"DENTAL_SMTP_TIMEOUT" default:"10s"`
	RequireTLS bool          `envconfig:"DENTAL_SMTP_REQUIRE_TLS" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"DENTAL_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"DENTAL_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"DENTAL_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"DENTAL_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
