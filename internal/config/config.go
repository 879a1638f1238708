package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"os"
	"time"
)

type Config struct {
	App       App       `yaml:"app"`
	HTTP      HTTP      `yaml:"http"`
	Mongo     Mongo     `yaml:"mongo"`
	Redis     Redis     `yaml:"redis"`
	Kafka     Kafka     `yaml:"kafka"`
	SMTP      SMTP      `yaml:"smtp"`
	Auth      Auth      `yaml:"auth"`
	GCash     GCash     `yaml:"gcash"`
	RateLimit RateLimit `yaml:"rate_limit"`
}

type App struct {
	Name     string `yaml:"name"      env:"APP_NAME"      env-default:"kusina-service"`
	LogLevel string `yaml:"log_level" env:"APP_LOG_LEVEL" env-default:"info"`
	SeedMenu bool   `yaml:"seed_menu" env:"APP_SEED_MENU" env-default:"false"`
}

type HTTP struct {
	Port            int           `yaml:"port"             env:"HTTP_PORT"             env-default:"8082"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_WRITE_TIMEOUT"    env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type Mongo struct {
	URI                    string        `yaml:"uri"                      env:"MONGODB_URI"                      env-required:"true"`
	Database               string        `yaml:"database"                 env:"MONGODB_DATABASE"                 env-default:"kusina"`
	MaxPoolSize            uint64        `yaml:"max_pool_size"            env:"MONGODB_MAX_POOL_SIZE"            env-default:"10"`
	ServerSelectionTimeout time.Duration `yaml:"server_selection_timeout" env:"MONGODB_SERVER_SELECTION_TIMEOUT" env-default:"5s"`
	SocketTimeout          time.Duration `yaml:"socket_timeout"           env:"MONGODB_SOCKET_TIMEOUT"           env-default:"45s"`
	ConnectRetries         int           `yaml:"connect_retries"          env:"MONGODB_CONNECT_RETRIES"          env-default:"10"`
}

type Redis struct {
	Addr           string        `yaml:"addr"            env:"REDIS_ADDR"            env-default:"localhost:6379"`
	Password       string        `yaml:"password"        env:"REDIS_PASSWORD"`
	DB             int           `yaml:"db"              env:"REDIS_DB"              env-default:"0"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl" env:"REDIS_IDEMPOTENCY_TTL" env-default:"24h"`
	MenuCacheTTL   time.Duration `yaml:"menu_cache_ttl"  env:"REDIS_MENU_CACHE_TTL"  env-default:"1m"`
}

// Kafka is optional. With no brokers configured notifications are sent
// directly instead of through the order topic.
type Kafka struct {
	Brokers string `yaml:"brokers"  env:"KAFKA_BROKERS"`
	Topic   string `yaml:"topic"    env:"KAFKA_TOPIC"    env-default:"order-topic"`
	GroupID string `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"notification-group"`
}

type SMTP struct {
	Host string `yaml:"host" env:"SMTP_HOST"`
	Port int    `yaml:"port" env:"SMTP_PORT" env-default:"465"`
	User string `yaml:"user" env:"SMTP_USER"`
	Pass string `yaml:"pass" env:"SMTP_PASS"`
	From string `yaml:"from" env:"SMTP_FROM"`
}

// Configured reports whether enough is set to actually send mail.
func (s SMTP) Configured() bool {
	return s.Host != "" && s.Port != 0 && s.User != "" && s.Pass != ""
}

type Auth struct {
	JWTSecret     string        `yaml:"jwt_secret"     env:"JWT_SECRET"     env-required:"true"`
	TokenTTL      time.Duration `yaml:"token_ttl"      env:"JWT_TOKEN_TTL"  env-default:"24h"`
	AdminName     string        `yaml:"admin_name"     env:"ADMIN_NAME"     env-default:"Kusina Admin"`
	AdminEmail    string        `yaml:"admin_email"    env:"ADMIN_EMAIL"`
	AdminPassword string        `yaml:"admin_password" env:"ADMIN_PASSWORD"`
}

type GCash struct {
	AccountNumber string `yaml:"account_number" env:"GCASH_NUMBER" env-default:"09605088715"`
	AccountName   string `yaml:"account_name"   env:"GCASH_NAME"   env-default:"John Nathaniel Marquez"`
}

type RateLimit struct {
	Rate      float64       `yaml:"rate"       env:"RATE_LIMIT_RATE"       env-default:"5"`
	Burst     int           `yaml:"burst"      env:"RATE_LIMIT_BURST"      env-default:"10"`
	ExpiresIn time.Duration `yaml:"expires_in" env:"RATE_LIMIT_EXPIRES_IN" env-default:"3m"`
}

// Load reads configuration from the YAML file at path, or from the
// environment alone when path is empty. A .env file in the working directory
// is loaded first if present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("reading env: %w", err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return &cfg, nil
}
