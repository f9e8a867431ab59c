package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a configuration that passes Validate.
func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080, ShutdownTimeout: time.Second, RequestTimeout: time.Minute},
		Engine:  EngineConfig{MemoryLimit: "512MB", Threads: 2},
		Ingest:  IngestConfig{SizeGateBytes: 1_000_000_000, PreviewRows: 10, MaxDecompressedBytes: 1 << 30},
		Upload:  UploadConfig{MaxFileSize: 1, MaxConcurrent: 1, MaxWaitTime: time.Second},
		Rate:    RateLimitConfig{Enabled: true, RequestsPerMinute: 60},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Engine.MemoryLimit != "512MB" {
		t.Errorf("Engine.MemoryLimit = %q, want %q", cfg.Engine.MemoryLimit, "512MB")
	}
	if cfg.Engine.Threads != 2 {
		t.Errorf("Engine.Threads = %d, want %d", cfg.Engine.Threads, 2)
	}
	if !cfg.Engine.OfflineExtensions {
		t.Error("Engine.OfflineExtensions = false, want true")
	}
	if cfg.Ingest.SizeGateBytes != 1_000_000_000 {
		t.Errorf("Ingest.SizeGateBytes = %d, want %d", cfg.Ingest.SizeGateBytes, 1_000_000_000)
	}
	if cfg.Ingest.PreviewRows != 10 {
		t.Errorf("Ingest.PreviewRows = %d, want %d", cfg.Ingest.PreviewRows, 10)
	}
	if cfg.Upload.MaxConcurrent != 4 {
		t.Errorf("Upload.MaxConcurrent = %d, want %d", cfg.Upload.MaxConcurrent, 4)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ENGINE_MEMORY_LIMIT", "2GB")
	t.Setenv("ENGINE_OFFLINE_EXTENSIONS", "false")
	t.Setenv("INGEST_PREVIEW_ROWS", "25")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Engine.MemoryLimit != "2GB" {
		t.Errorf("Engine.MemoryLimit = %q, want %q", cfg.Engine.MemoryLimit, "2GB")
	}
	if cfg.Engine.OfflineExtensions {
		t.Error("Engine.OfflineExtensions = true, want false")
	}
	if cfg.Ingest.PreviewRows != 25 {
		t.Errorf("Ingest.PreviewRows = %d, want %d", cfg.Ingest.PreviewRows, 25)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	t.Setenv("PORT", "3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 3000)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("ENGINE_THREADS", "many")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for non-numeric ENGINE_THREADS")
	}
	if !strings.Contains(err.Error(), "ENGINE_THREADS") {
		t.Errorf("error should mention ENGINE_THREADS: %v", err)
	}
}

func TestLoad_Duration(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("UPLOAD_MAX_WAIT_TIME", "1m30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Upload.MaxWaitTime != 90*time.Second {
		t.Errorf("Upload.MaxWaitTime = %v, want %v", cfg.Upload.MaxWaitTime, 90*time.Second)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(expected) {
		t.Fatalf("TrustedProxies length = %d, want %d", len(cfg.Security.TrustedProxies), len(expected))
	}
	for i, v := range expected {
		if cfg.Security.TrustedProxies[i] != v {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], v)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"invalid port", func(c *Config) { c.Server.Port = 99999 }, "SERVER_PORT"},
		{"invalid log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"bad memory limit", func(c *Config) { c.Engine.MemoryLimit = "lots" }, "ENGINE_MEMORY_LIMIT"},
		{"gibibyte memory limit", func(c *Config) { c.Engine.MemoryLimit = "2GiB" }, ""},
		{"zero preview rows", func(c *Config) { c.Ingest.PreviewRows = 0 }, "INGEST_PREVIEW_ROWS"},
		{"zero size gate", func(c *Config) { c.Ingest.SizeGateBytes = 0 }, "INGEST_SIZE_GATE_BYTES"},
		{"negative threads", func(c *Config) { c.Engine.Threads = -1 }, "ENGINE_THREADS"},
		{"rate limit without budget", func(c *Config) { c.Rate.RequestsPerMinute = 0 }, "RATE_LIMIT_REQUESTS_PER_MINUTE"},
		{"disabled rate limit without budget", func(c *Config) { c.Rate = RateLimitConfig{} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should mention %s: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "LOG_LEVEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
		{"localhost", 443, "localhost:443"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		got := cfg.Addr()
		if got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString_MasksPaths(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.ExtensionDir = "/home/alice/.duckdb/extensions"

	str := cfg.String()
	if strings.Contains(str, "alice") {
		t.Error("String() should mask the extension directory")
	}
	if !strings.Contains(str, "MASKED") {
		t.Error("String() should contain MASKED placeholder")
	}
}
