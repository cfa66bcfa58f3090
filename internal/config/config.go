package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// CatalogConfig controls where the workout library is read from and how
// long a fetched copy is trusted.
type CatalogConfig struct {
	ObjectKey      string        `mapstructure:"object_key"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	ImageURLExpiry time.Duration `mapstructure:"image_url_expiry"`
}

type SessionConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// PersistTimeout bounds the history write made when a session completes.
	PersistTimeout time.Duration `mapstructure:"persist_timeout"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// LoadConfig reads configuration from file or environment variables.
// Nested keys map to env vars with dots replaced, e.g. jwt.secret -> JWT_SECRET.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "fitness_app_default")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("catalog.object_key", "master/workouts.json")
	v.SetDefault("catalog.cache_ttl", "24h")
	v.SetDefault("catalog.image_url_expiry", "15m")
	v.SetDefault("session.tick_interval", "1s")
	v.SetDefault("session.persist_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	err = v.ReadInConfig()
	// A missing file is fine; defaults and env vars still apply.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	// Duration strings ("60m", "1h") decode straight into time.Duration fields.
	err = v.Unmarshal(&config)
	if err != nil {
		return
	}
	return config, nil
}
