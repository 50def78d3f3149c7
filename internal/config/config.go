package config

import (
	"time"

	"github.com/heartmarshall/qareview/internal/domain"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	QA       QAConfig       `yaml:"qa"`
	Registry RegistryConfig `yaml:"registry"`
	Notify   NotifyConfig   `yaml:"notify"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AuthConfig holds bearer token settings. With an empty secret every
// request is anonymous and reporter ids come from the request body.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	JWTIssuer string `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"qareview"`
	Required  bool   `yaml:"required"   env:"AUTH_REQUIRED"   env-default:"false"`
	AdminRole string `yaml:"admin_role" env:"AUTH_ADMIN_ROLE" env-default:"ROLE_ADMIN"`
}

// Enabled reports whether bearer tokens are validated.
func (c AuthConfig) Enabled() bool { return c.JWTSecret != "" }

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// QAConfig holds review engine parameters.
type QAConfig struct {
	ActivePolicyRaw   string        `yaml:"active_policy"       env:"QA_ACTIVE_POLICY"       env-default:"latest_event"`
	DedupWindow       time.Duration `yaml:"dedup_window"        env:"QA_DEDUP_WINDOW"        env-default:"30s"`
	MaxRetries        int           `yaml:"max_retries"         env:"QA_MAX_RETRIES"         env-default:"3"`
	RetryBaseDelay    time.Duration `yaml:"retry_base_delay"    env:"QA_RETRY_BASE_DELAY"    env-default:"20ms"`
	LockTimeout       time.Duration `yaml:"lock_timeout"        env:"QA_LOCK_TIMEOUT"        env-default:"2s"`
	CacheTTL          time.Duration `yaml:"cache_ttl"           env:"QA_CACHE_TTL"           env-default:"2s"`
	LoaderWait        time.Duration `yaml:"loader_wait"         env:"QA_LOADER_WAIT"         env-default:"2ms"`
	QueueDefaultLimit int           `yaml:"queue_default_limit" env:"QA_QUEUE_DEFAULT_LIMIT" env-default:"10"`
	QueueMaxLimit     int           `yaml:"queue_max_limit"     env:"QA_QUEUE_MAX_LIMIT"     env-default:"1000"`
	BatchMaxSubjects  int           `yaml:"batch_max_subjects"  env:"QA_BATCH_MAX_SUBJECTS"  env-default:"1000"`

	// ActivePolicy is parsed from ActivePolicyRaw during validation.
	ActivePolicy domain.ActivePolicy `yaml:"-" env:"-"`
}

// RegistryConfig points at the metadata registry used to check that a
// subject exists before its first event. An empty BaseURL disables it.
type RegistryConfig struct {
	BaseURL  string        `yaml:"base_url"  env:"REGISTRY_BASE_URL"`
	Timeout  time.Duration `yaml:"timeout"   env:"REGISTRY_TIMEOUT"   env-default:"5s"`
	CacheTTL time.Duration `yaml:"cache_ttl" env:"REGISTRY_CACHE_TTL" env-default:"5m"`
}

// NotifyConfig selects and configures the status-change publisher.
type NotifyConfig struct {
	Driver     string      `yaml:"driver"      env:"NOTIFY_DRIVER"      env-default:"log"`
	BufferSize int         `yaml:"buffer_size" env:"NOTIFY_BUFFER_SIZE" env-default:"256"`
	Redis      RedisConfig `yaml:"redis"`
	MQTT       MQTTConfig  `yaml:"mqtt"`
}

// RedisConfig holds Redis Streams publisher settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"NOTIFY_REDIS_ADDR"     env-default:"localhost:6379"`
	Password string `yaml:"password" env:"NOTIFY_REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"NOTIFY_REDIS_DB"       env-default:"0"`
	Stream   string `yaml:"stream"   env:"NOTIFY_REDIS_STREAM"   env-default:"qa:status-changed"`
	MaxLen   int64  `yaml:"max_len"  env:"NOTIFY_REDIS_MAX_LEN"  env-default:"100000"`
}

// MQTTConfig holds MQTT publisher settings.
type MQTTConfig struct {
	Broker         string        `yaml:"broker"          env:"NOTIFY_MQTT_BROKER"`
	ClientID       string        `yaml:"client_id"       env:"NOTIFY_MQTT_CLIENT_ID"       env-default:"qareview"`
	Username       string        `yaml:"username"        env:"NOTIFY_MQTT_USERNAME"`
	Password       string        `yaml:"password"        env:"NOTIFY_MQTT_PASSWORD"`
	Topic          string        `yaml:"topic"           env:"NOTIFY_MQTT_TOPIC"           env-default:"qa/status-changed"`
	QoS            byte          `yaml:"qos"             env:"NOTIFY_MQTT_QOS"             env-default:"1"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"NOTIFY_MQTT_CONNECT_TIMEOUT" env-default:"10s"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path"    env:"METRICS_PATH"    env-default:"/metrics"`
}
