// Package config provides configuration management for the commerce-agent platform.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration shared by the gateway, worker, and sender processes.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Bus       BusConfig
	Buffer    BufferConfig
	LLM       LLMRetryConfig
	Circuit   CircuitConfig
	Job       JobConfig
	Payment   PaymentConfig
	WhatsApp  WhatsAppConfig
	Geocoding GeocodingConfig
}

// ServerConfig holds HTTP server configuration for the gateway process.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL             string        `mapstructure:"database_url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig holds cache configuration.
type RedisConfig struct {
	URL      string        `mapstructure:"redis_url"`
	PoolSize int           `mapstructure:"pool_size"`
	JobTTL   time.Duration `mapstructure:"redis_job_ttl"`
}

// BusConfig holds message bus fabric configuration.
type BusConfig struct {
	URL           string `mapstructure:"rabbitmq_url"`
	TaskQueue     string `mapstructure:"rabbitmq_task_queue"`
	CRMQueue      string `mapstructure:"rabbitmq_crm_queue"`
	WAQueue       string `mapstructure:"rabbitmq_wa_queue"`
	EventExchange string `mapstructure:"rabbitmq_event_exchange"`
}

// BufferConfig holds buffer-and-flush engine tuning.
type BufferConfig struct {
	InitialDelay  time.Duration `mapstructure:"message_buffer_initial_delay"`
	ExtendDelay   time.Duration `mapstructure:"message_buffer_extend_delay"`
	MaxDelay      time.Duration `mapstructure:"message_buffer_max_delay"`
	FlushInterval time.Duration `mapstructure:"buffer_flush_interval"`
	Grace         time.Duration `mapstructure:"message_buffer_grace"`
}

// LLMRetryConfig holds default LLM call timeout/retry tuning.
type LLMRetryConfig struct {
	DefaultTimeout  time.Duration `mapstructure:"llm_default_timeout_seconds"`
	MaxRetries      int           `mapstructure:"llm_max_retries"`
	RetryInitial    time.Duration `mapstructure:"llm_retry_initial_delay"`
	RetryMax        time.Duration `mapstructure:"llm_retry_max_delay"`
	RetryMultiplier float64       `mapstructure:"llm_retry_multiplier"`
}

// CircuitConfig holds the LLM circuit breaker defaults.
type CircuitConfig struct {
	FailureThreshold int           `mapstructure:"circuit_breaker_failure_threshold"`
	SuccessThreshold int           `mapstructure:"circuit_breaker_success_threshold"`
	Timeout          time.Duration `mapstructure:"circuit_breaker_timeout_seconds"`
}

// JobConfig holds AI job retry tuning.
type JobConfig struct {
	DefaultMaxRetries int           `mapstructure:"job_default_max_retries"`
	RetryDelayMin     time.Duration `mapstructure:"job_retry_delay_min"`
	RetryDelayMax     time.Duration `mapstructure:"job_retry_delay_max"`
}

// PaymentConfig holds payment gateway credentials.
type PaymentConfig struct {
	MidtransServerKey  string `mapstructure:"midtrans_server_key"`
	MidtransClientKey  string `mapstructure:"midtrans_client_key"`
	MidtransProduction bool   `mapstructure:"midtrans_is_production"`
	XenditSecretKey    string `mapstructure:"xendit_secret_key"`
}

// WhatsAppConfig holds the WAHA bridge configuration.
type WhatsAppConfig struct {
	ServerURL     string `mapstructure:"waha_server_url"`
	APIKey        string `mapstructure:"waha_api_key"`
	WebhookSecret string `mapstructure:"waha_webhook_secret"`
	Session       string `mapstructure:"waha_session"`
}

// GeocodingConfig holds the geocoding enrichment client configuration.
type GeocodingConfig struct {
	APIKey  string `mapstructure:"google_geocoding_api_key"`
	BaseURL string `mapstructure:"google_geocoding_base_url"`
}

// Load reads configuration from environment variables and an optional YAML file.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/commerce-agent/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			Host:            v.GetString("server.host"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("database_url"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			URL:      v.GetString("redis_url"),
			PoolSize: v.GetInt("redis.pool_size"),
			JobTTL:   v.GetDuration("redis_job_ttl"),
		},
		Bus: BusConfig{
			URL:           v.GetString("rabbitmq_url"),
			TaskQueue:     v.GetString("rabbitmq_task_queue"),
			CRMQueue:      v.GetString("rabbitmq_crm_queue"),
			WAQueue:       v.GetString("rabbitmq_wa_queue"),
			EventExchange: v.GetString("rabbitmq_event_exchange"),
		},
		Buffer: BufferConfig{
			InitialDelay:  v.GetDuration("message_buffer_initial_delay"),
			ExtendDelay:   v.GetDuration("message_buffer_extend_delay"),
			MaxDelay:      v.GetDuration("message_buffer_max_delay"),
			FlushInterval: v.GetDuration("buffer_flush_interval"),
			Grace:         v.GetDuration("message_buffer_grace"),
		},
		LLM: LLMRetryConfig{
			DefaultTimeout:  v.GetDuration("llm_default_timeout_seconds"),
			MaxRetries:      v.GetInt("llm_max_retries"),
			RetryInitial:    v.GetDuration("llm_retry_initial_delay"),
			RetryMax:        v.GetDuration("llm_retry_max_delay"),
			RetryMultiplier: v.GetFloat64("llm_retry_multiplier"),
		},
		Circuit: CircuitConfig{
			FailureThreshold: v.GetInt("circuit_breaker_failure_threshold"),
			SuccessThreshold: v.GetInt("circuit_breaker_success_threshold"),
			Timeout:          v.GetDuration("circuit_breaker_timeout_seconds"),
		},
		Job: JobConfig{
			DefaultMaxRetries: v.GetInt("job_default_max_retries"),
			RetryDelayMin:     v.GetDuration("job_retry_delay_min"),
			RetryDelayMax:     v.GetDuration("job_retry_delay_max"),
		},
		Payment: PaymentConfig{
			MidtransServerKey:  v.GetString("midtrans_server_key"),
			MidtransClientKey:  v.GetString("midtrans_client_key"),
			MidtransProduction: v.GetBool("midtrans_is_production"),
			XenditSecretKey:    v.GetString("xendit_secret_key"),
		},
		WhatsApp: WhatsAppConfig{
			ServerURL:     v.GetString("waha_server_url"),
			APIKey:        v.GetString("waha_api_key"),
			WebhookSecret: v.GetString("waha_webhook_secret"),
			Session:       v.GetString("waha_session"),
		},
		Geocoding: GeocodingConfig{
			APIKey:  v.GetString("google_geocoding_api_key"),
			BaseURL: v.GetString("google_geocoding_base_url"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", "15m")

	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis_job_ttl", "3600s")

	v.SetDefault("rabbitmq_task_queue", "ai_tasks")
	v.SetDefault("rabbitmq_crm_queue", "crm_tasks")
	v.SetDefault("rabbitmq_wa_queue", "wa_messages")
	v.SetDefault("rabbitmq_event_exchange", "domain_events")

	v.SetDefault("message_buffer_initial_delay", "2s")
	v.SetDefault("message_buffer_extend_delay", "2s")
	v.SetDefault("message_buffer_max_delay", "10s")
	v.SetDefault("buffer_flush_interval", "500ms")
	v.SetDefault("message_buffer_grace", "5s")

	v.SetDefault("llm_default_timeout_seconds", "30s")
	v.SetDefault("llm_max_retries", 3)
	v.SetDefault("llm_retry_initial_delay", "1s")
	v.SetDefault("llm_retry_max_delay", "30s")
	v.SetDefault("llm_retry_multiplier", 2.0)

	v.SetDefault("circuit_breaker_failure_threshold", 5)
	v.SetDefault("circuit_breaker_success_threshold", 2)
	v.SetDefault("circuit_breaker_timeout_seconds", "60s")

	v.SetDefault("job_default_max_retries", 3)
	v.SetDefault("job_retry_delay_min", "5s")
	v.SetDefault("job_retry_delay_max", "300s")

	v.SetDefault("midtrans_is_production", false)
}

func (cfg *Config) validate() error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Buffer.ExtendDelay > cfg.Buffer.MaxDelay {
		return fmt.Errorf("message_buffer_extend_delay cannot exceed message_buffer_max_delay")
	}
	if cfg.Circuit.FailureThreshold <= 0 {
		return fmt.Errorf("circuit_breaker_failure_threshold must be positive")
	}
	if cfg.Circuit.SuccessThreshold <= 0 {
		return fmt.Errorf("circuit_breaker_success_threshold must be positive")
	}
	if cfg.Job.DefaultMaxRetries < 0 {
		return fmt.Errorf("job_default_max_retries cannot be negative")
	}
	return nil
}
