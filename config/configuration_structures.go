package config

import "github.com/aws/aws-sdk-go-v2/service/s3"

type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	BasePath string `yaml:"base_path"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Client   *s3.Client
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Local    bool   `yaml:"local"`
}

type JWTConfig struct {
	SecretKey      string `yaml:"secret_key"`
	AccessTokenTTL string `yaml:"access_token_ttl"`
}

// RateLimitConfig : backend = "memory" (один процесс) или "redis" (несколько инстансов)
type RateLimitConfig struct {
	Backend     string `yaml:"backend"`
	MaxRequests int    `yaml:"max_requests"`
	WindowMs    int    `yaml:"window_ms"`
}

// SecurityConfig : ключ для одностороннего хэширования IP адресов
type SecurityConfig struct {
	IPHashKey string `yaml:"ip_hash_key"`
}

type CertificateConfig struct {
	SignerKeyID string `yaml:"signer_key_id"`
}

type LinkConfig struct {
	TokenLength int `yaml:"token_length"`
}

type TTL struct {
	S3AndRedis       int `yaml:"s3AndRedis"`
	SignatureFetchS  int `yaml:"signatureFetch"`
	PresignDefaultS  int `yaml:"presignDefault"`
}
