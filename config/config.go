package config

import (
	"fmt"
	"mindmap-share/token"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Token   TokenConfig   `mapstructure:"token"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig: PublicURL builds share URLs and is derived from the request
// when empty. TrustProxyHeaders honours X-Forwarded-Proto and X-Real-IP,
// which only makes sense behind a proxy that sets them.
type ServerConfig struct {
	Host                    string        `mapstructure:"host"`
	Port                    int           `mapstructure:"port"`
	PublicURL               string        `mapstructure:"public_url"`
	TrustProxyHeaders       bool          `mapstructure:"trust_proxy_headers"`
	ReadTimeout             time.Duration `mapstructure:"read_timeout"`
	WriteTimeout            time.Duration `mapstructure:"write_timeout"`
	GracefulShutdownTimeout time.Duration `mapstructure:"graceful_shutdown_timeout"`
	MaxBodyBytes            int64         `mapstructure:"max_body_bytes"`
}

type StorageConfig struct {
	Type       string           `mapstructure:"type"` // sqlite | filesystem | memory | s3 | dynamodb | redis | postgres
	Filesystem FilesystemConfig `mapstructure:"filesystem"`
	SQLite     SQLiteConfig     `mapstructure:"sqlite"`
	S3         S3Config         `mapstructure:"s3"`
	DynamoDB   DynamoDBConfig   `mapstructure:"dynamodb"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
}

type FilesystemConfig struct {
	Path string `mapstructure:"path"`
}

type SQLiteConfig struct {
	DSN string `mapstructure:"dsn"`
}

type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
}

type DynamoDBConfig struct {
	Table string `mapstructure:"table"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type TokenConfig struct {
	Format string `mapstructure:"format"` // uuid | ulid
}

type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowedMethods   []string      `mapstructure:"allowed_methods"`
	AllowedHeaders   []string      `mapstructure:"allowed_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
}

var storageTypes = []string{"sqlite", "filesystem", "memory", "s3", "dynamodb", "redis", "postgres"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.public_url", "")
	v.SetDefault("server.trust_proxy_headers", false)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.graceful_shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", 5000000)

	v.SetDefault("storage.type", "sqlite")
	v.SetDefault("storage.filesystem.path", "dbs/mindmaps")
	v.SetDefault("storage.sqlite.dsn", "dbs/mindmaps.db")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.prefix", "mindmaps/")
	v.SetDefault("storage.dynamodb.table", "mindmaps")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "mindmap:")
	v.SetDefault("storage.postgres.dsn", "")

	v.SetDefault("token.format", "uuid")

	v.SetDefault("cors.allowed_origins", []string{"https://*", "http://*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Content-Type", "Content-Length", "Origin", "X-Requested-With"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads an optional YAML file, overlays environment variables and
// returns the validated Config. Environment keys follow the config path
// (STORAGE_SQLITE_DSN -> storage.sqlite.dsn); the older flat names
// STORAGE_TYPE, LOCAL_STORAGE_PATH, DATA_SOURCE_NAME, S3_BUCKET_NAME and
// PORT are honoured too.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("storage.filesystem.path", "STORAGE_FILESYSTEM_PATH", "LOCAL_STORAGE_PATH")
	_ = v.BindEnv("storage.sqlite.dsn", "STORAGE_SQLITE_DSN", "DATA_SOURCE_NAME")
	_ = v.BindEnv("storage.s3.bucket", "STORAGE_S3_BUCKET", "S3_BUCKET_NAME")
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.Storage.Type = strings.ToLower(strings.TrimSpace(c.Storage.Type))
	if !contains(storageTypes, c.Storage.Type) {
		return fmt.Errorf("invalid storage.type %q: must be one of %v", c.Storage.Type, storageTypes)
	}
	switch c.Storage.Type {
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for s3 storage")
		}
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("storage.postgres.dsn is required for postgres storage")
		}
	}
	if _, err := token.New(c.Token.Format); err != nil {
		return fmt.Errorf("invalid token.format: %w", err)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg LogConfig) *logrus.Logger {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
