package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080},
		Buffer:  BufferConfig{ExtendDelay: 2 * time.Second, MaxDelay: 10 * time.Second},
		Circuit: CircuitConfig{FailureThreshold: 5, SuccessThreshold: 2},
		Job:     JobConfig{DefaultMaxRetries: 3},
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	if err := validConfig().validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateRejectsOutOfRangePort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000

	if err := cfg.validate(); err == nil {
		t.Fatal("expected an error for an out-of-range port")
	}
}

func TestValidateRejectsZeroPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0

	if err := cfg.validate(); err == nil {
		t.Fatal("expected an error for a zero port")
	}
}

func TestValidateRejectsExtendDelayExceedingMaxDelay(t *testing.T) {
	cfg := validConfig()
	cfg.Buffer.ExtendDelay = 20 * time.Second
	cfg.Buffer.MaxDelay = 10 * time.Second

	if err := cfg.validate(); err == nil {
		t.Fatal("expected an error when extend_delay exceeds max_delay")
	}
}

func TestValidateRejectsNonPositiveCircuitThresholds(t *testing.T) {
	cfg := validConfig()
	cfg.Circuit.FailureThreshold = 0

	if err := cfg.validate(); err == nil {
		t.Fatal("expected an error for a non-positive failure threshold")
	}
}

func TestValidateRejectsNegativeJobRetries(t *testing.T) {
	cfg := validConfig()
	cfg.Job.DefaultMaxRetries = -1

	if err := cfg.validate(); err == nil {
		t.Fatal("expected an error for negative max retries")
	}
}
