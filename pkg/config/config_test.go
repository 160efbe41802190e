package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		StorageDriver:     StorageMongo,
		MongoURI:          DefaultMongoURI,
		MongoDatabaseName: DefaultMongoDatabaseName,
		MongoConnTimeout:  DefaultMongoConnTimeout,
		Port:              DefaultPort,
		RateLimitRequests: DefaultRateLimitRequests,
		RateLimitWindow:   DefaultRateLimitWindow,
		RequestTimeout:    DefaultRequestTimeout,
		IdempotencyTTL:    DefaultIdempotencyTTL,
		MaxRequestSize:    DefaultMaxRequestSize,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
		KafkaEventsTopic:  DefaultKafkaEventsTopic,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "memory driver skips mongo checks", mutate: func(c *Config) {
			c.StorageDriver = StorageMemory
			c.MongoURI = ""
		}},
		{name: "unknown driver", mutate: func(c *Config) { c.StorageDriver = "postgres" }, wantErr: "StorageDriver"},
		{name: "bad port", mutate: func(c *Config) { c.Port = "70000" }, wantErr: "Port"},
		{name: "bad mongo uri", mutate: func(c *Config) { c.MongoURI = "http://localhost" }, wantErr: "MongoURI"},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeout = 0 }, wantErr: "RequestTimeout"},
		{name: "kafka without topic", mutate: func(c *Config) {
			c.KafkaEnabled = true
			c.KafkaEventsTopic = ""
		}, wantErr: "KafkaEventsTopic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TMS_TEST_NUM", "42")
	t.Setenv("TMS_TEST_BAD_NUM", "x")
	t.Setenv("TMS_TEST_DUR", "3s")
	t.Setenv("TMS_TEST_BOOL", "true")

	if got := getEnvNum("TMS_TEST_NUM", 1); got != 42 {
		t.Errorf("getEnvNum() = %d, want 42", got)
	}
	if got := getEnvNum("TMS_TEST_BAD_NUM", 7); got != 7 {
		t.Errorf("getEnvNum() fallback = %d, want 7", got)
	}
	if got := getEnvDuration("TMS_TEST_DUR", time.Second); got != 3*time.Second {
		t.Errorf("getEnvDuration() = %s, want 3s", got)
	}
	if got := getEnvBool("TMS_TEST_BOOL", false); !got {
		t.Errorf("getEnvBool() = false, want true")
	}
	if got := getEnvStr("TMS_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("getEnvStr() = %q, want fallback", got)
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:secret@db:27017")
	if strings.Contains(got, "secret") {
		t.Errorf("redactMongoURI() leaked credentials: %s", got)
	}
}
