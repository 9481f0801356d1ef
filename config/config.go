package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type (
	APP struct {
		Name      string
		Host      string
		Port      string
		Env       string
		JWTSecret string
		TokenTTL  time.Duration
	}
	DB struct {
		User     string
		Password string
		Name     string
		Host     string
		Port     string
	}
	S3 struct {
		Endpoint        string
		Region          string
		AccessKeyID     string
		SecretAccessKey string
		BucketUploads   string
		UseSSL          bool
	}
	MQ struct {
		User         string
		Password     string
		Vhost        string
		Host         string
		AmqpPort     string
		Exchange     string
		ExchangeType string
		QueueName    string
	}
	Files struct {
		MaxFileSize     int64
		SingleRetrieval bool
		JanitorInterval time.Duration
	}
	Crypto struct {
		RSABits       int
		KDFTime       uint32
		KDFMemoryKiB  uint32
		KDFThreads    uint8
		HashTime      uint32
		HashMemoryKiB uint32
		HashThreads   uint8
	}
	Scanner struct {
		ClamAVAddr string
	}

	Config struct {
		App     APP
		DB      DB
		S3      S3
		MQ      MQ
		Files   Files
		Crypto  Crypto
		Scanner Scanner
	}
)

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := getEnv(key, ""); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := getEnv(key, ""); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := getEnv(key, ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func Load() Config {
	app := APP{
		Name:      getEnv("SERVICE_NAME", "fileshare-api"),
		Host:      getEnv("SERVICE_HOST", ""),
		Port:      getEnv("SERVICE_PORT", "8080"),
		Env:       getEnv("SERVICE_ENV", ""),
		JWTSecret: getEnv("SERVICE_JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("SERVICE_TOKEN_TTL", time.Hour),
	}
	db := DB{
		User:     getEnv("POSTGRES_USER", ""),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		Name:     getEnv("POSTGRES_DB", ""),
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnv("POSTGRES_PORT", ""),
	}
	s3 := S3{
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		Region:          getEnv("S3_REGION", ""),
		AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		BucketUploads:   getEnv("S3_BUCKET_UPLOADS", "shared-files"),
		UseSSL:          getEnvBool("S3_USE_SSL", false),
	}
	mq := MQ{
		User:         getEnv("RABBITMQ_USER", ""),
		Password:     getEnv("RABBITMQ_PASSWORD", ""),
		Vhost:        getEnv("RABBITMQ_VHOST", ""),
		Host:         getEnv("RABBITMQ_HOST", ""),
		AmqpPort:     getEnv("RABBITMQ_AMQP_PORT", ""),
		Exchange:     getEnv("RABBITMQ_EXCHANGE", ""),
		ExchangeType: getEnv("RABBITMQ_EXCHANGE_TYPE", ""),
		QueueName:    getEnv("RABBITMQ_QUEUE_NAME", ""),
	}
	files := Files{
		// 10MB
		MaxFileSize:     getEnvInt64("FILESHARE_MAX_FILE_SIZE", 10<<20),
		SingleRetrieval: getEnvBool("FILESHARE_SINGLE_RETRIEVAL", false),
		JanitorInterval: getEnvDuration("FILESHARE_JANITOR_INTERVAL", time.Hour),
	}
	crypto := Crypto{
		RSABits:       int(getEnvInt64("CRYPTO_RSA_BITS", 3072)),
		KDFTime:       uint32(getEnvInt64("CRYPTO_KDF_TIME", 2)),
		KDFMemoryKiB:  uint32(getEnvInt64("CRYPTO_KDF_MEMORY_KIB", 64*1024)),
		KDFThreads:    uint8(getEnvInt64("CRYPTO_KDF_THREADS", 1)),
		HashTime:      uint32(getEnvInt64("CRYPTO_HASH_TIME", 2)),
		HashMemoryKiB: uint32(getEnvInt64("CRYPTO_HASH_MEMORY_KIB", 19*1024)),
		HashThreads:   uint8(getEnvInt64("CRYPTO_HASH_THREADS", 1)),
	}
	scanner := Scanner{
		ClamAVAddr: getEnv("CLAMAV_ADDR", ""),
	}

	return Config{
		App:     app,
		DB:      db,
		S3:      s3,
		MQ:      mq,
		Files:   files,
		Crypto:  crypto,
		Scanner: scanner,
	}
}

func (c Config) DBDSN() (string, error) {
	if c.DB.User == "" || c.DB.Name == "" || c.DB.Host == "" || c.DB.Port == "" {
		return "", fmt.Errorf("incomplete DB config")
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		c.DB.User,
		url.QueryEscape(c.DB.Password),
		c.DB.Host,
		c.DB.Port,
		c.DB.Name,
	), nil
}

func (c Config) AMQPDSN() (string, error) {
	if c.MQ.User == "" || c.MQ.Host == "" || c.MQ.AmqpPort == "" {
		return "", fmt.Errorf("invalid MQ config: user, host and amqp port are required")
	}

	return fmt.Sprintf(
		"%s://%s@%s:%s/%s",
		"amqp",
		url.UserPassword(c.MQ.User, c.MQ.Password).String(),
		c.MQ.Host,
		c.MQ.AmqpPort,
		url.PathEscape(c.MQ.Vhost),
	), nil
}
