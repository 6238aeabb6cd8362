package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

// Public holds settings safe to commit alongside the code. Durations are
// configured in whole seconds.
type Public struct {
	Address             string `yaml:"address"`
	JwtTTLSeconds       int64  `yaml:"jwt_ttl_seconds"`
	BlobBackend         string `yaml:"blob_backend"`  // "fs" or "s3"
	QueueBackend        string `yaml:"queue_backend"` // "redis" or "memory"
	MediaRoot           string `yaml:"media_root"`    // fs backend root
	MaxUploadBytes      int64  `yaml:"max_upload_bytes"`
	GCIntervalSeconds   int64  `yaml:"gc_interval_seconds"`
	GCMinBlobAgeSeconds int64  `yaml:"gc_min_blob_age_seconds"`
}

// Private holds credentials and is loaded from a separate, uncommitted file.
type Private struct {
	JwtKey string `yaml:"jwt_key"`
	Pg     Pg     `yaml:"pg"`
	Redis  Redis  `yaml:"redis"`
	S3     S3     `yaml:"s3"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3 struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

func (c *Config) JwtTTL() time.Duration {
	return time.Duration(c.Public.JwtTTLSeconds) * time.Second
}

func (c *Config) GCInterval() time.Duration {
	return time.Duration(c.Public.GCIntervalSeconds) * time.Second
}

func (c *Config) GCMinBlobAge() time.Duration {
	return time.Duration(c.Public.GCMinBlobAgeSeconds) * time.Second
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	return &Config{public, private}
}
