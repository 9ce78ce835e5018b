package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env    string       `yaml:"env" env:"ENV" env-default:"local"`
	HTTP   HTTPConfig   `yaml:"http"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Tokens TokensConfig `yaml:"tokens"`
	Photos PhotosConfig `yaml:"photos"`
	AI     AIConfig     `yaml:"ai"`
	Google GoogleConfig `yaml:"google"`
}

type HTTPConfig struct {
	Port        int           `yaml:"port" env-default:"3000"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	CORSOrigin  string        `yaml:"cors_origin" env-default:"http://localhost:5173"`
}

type MongoConfig struct {
	URI      string `yaml:"uri" env:"MONGO_URI" env-required:"true"`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-required:"true"`
}

// TokensConfig carries the signing secrets and validity windows for the
// access/refresh token pair. None of the fields have defaults: a missing
// secret or TTL must fail loudly instead of silently issuing weak tokens.
type TokensConfig struct {
	AccessSecret   string        `yaml:"access_secret" env:"ACCESS_TOKEN_SECRET" env-required:"true"`
	AccessTTL      time.Duration `yaml:"access_ttl" env:"ACCESS_TOKEN_TTL" env-required:"true"`
	RefreshSecret  string        `yaml:"refresh_secret" env:"REFRESH_TOKEN_SECRET" env-required:"true"`
	RefreshTTL     time.Duration `yaml:"refresh_ttl" env:"REFRESH_TOKEN_TTL" env-required:"true"`
	OneTimeRefresh bool          `yaml:"one_time_refresh" env:"ONE_TIME_REFRESH" env-default:"false"`
}

type PhotosConfig struct {
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
	Region    string `yaml:"region" env:"S3_REGION"`
	Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
}

type AIConfig struct {
	APIKey string `yaml:"api_key" env:"AI_API_KEY"`
	Model  string `yaml:"model" env:"AI_MODEL" env-default:"gemini-1.5-flash"`
}

type GoogleConfig struct {
	ClientID string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
}

func LoadConfig(path string) *Config {
	var cfg Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("config file not found: " + path)
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic("failed to read config: " + err.Error())
	}

	return &cfg
}
