package forwarder

import (
	"logup/internal/global"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) (path string) {
	t.Helper()
	path = filepath.Join(t.TempDir(), "logup.json")
	err := os.WriteFile(path, []byte(content), 0600)
	if err != nil {
		t.Fatalf("failed writing config: %v", err)
	}
	return
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"pipeline": {"maxRecordSize": 4096, "queueCapacity": 50, "maxRetries": 0, "shutdownTimeout": "2s"},
		"outputs": {
			"disableEcho": true,
			"filePath": "/var/log/forwarded.log",
			"cloudwatch": {"logGroup": "app"},
			"kafka": {"brokers": ["k1:9092", "k2:9092"], "topic": "logs"}
		},
		"metrics": {"enableHTTPServer": true, "HTTPServerPort": 9100}
	}`)

	jsonCfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := jsonCfg.NewDaemonConf()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Config{
		MaxRecordSize:       4096,
		QueueCapacity:       50,
		MaxRetries:          0,
		ShutdownTimeout:     2 * time.Second,
		DisableEcho:         true,
		FilePath:            "/var/log/forwarded.log",
		CloudWatchLogGroup:  "app",
		KafkaBrokers:        []string{"k1:9092", "k2:9092"},
		KafkaTopic:          "logs",
		MetricServerEnabled: true,
		MetricServerPort:    9100,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("expected error for missing file")
	}

	_, err = LoadConfig(writeConfig(t, `{"pipeline": `))
	if err == nil {
		t.Error("expected error for invalid syntax")
	}
}

func TestNewDaemonConf_Pipeline(t *testing.T) {
	negative := -2
	three := 3

	tests := []struct {
		name        string
		retries     *int
		timeout     string
		wantRetries int
		wantTimeout time.Duration
		wantErr     bool
	}{
		{name: "unset", retries: nil, wantRetries: -1},
		{name: "explicit", retries: &three, timeout: "750ms", wantRetries: 3, wantTimeout: 750 * time.Millisecond},
		{name: "negative retries", retries: &negative, wantErr: true},
		{name: "bad timeout", timeout: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var jsonCfg JSONConfig
			jsonCfg.Pipeline.MaxRetries = tt.retries
			jsonCfg.Pipeline.ShutdownTimeout = tt.timeout

			cfg, err := jsonCfg.NewDaemonConf()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.MaxRetries != tt.wantRetries {
				t.Errorf("expected retries %d, got %d", tt.wantRetries, cfg.MaxRetries)
			}
			if cfg.ShutdownTimeout != tt.wantTimeout {
				t.Errorf("expected timeout %v, got %v", tt.wantTimeout, cfg.ShutdownTimeout)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	cfg := Config{MaxRetries: -1}
	cfg.setDefaults()

	want := Config{
		MaxRecordSize:    global.DefaultMaxRecordSize,
		ReadBufferSize:   global.DefaultReadBufferSize,
		QueueCapacity:    global.DefaultQueueCapacity,
		MaxRetries:       global.DefaultMaxRetries,
		ShutdownTimeout:  global.DefaultShutdownTimeout,
		MetricServerPort: global.DefaultMetricPort,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}

	// Explicit zero retries survive
	cfg = Config{MaxRetries: 0}
	cfg.setDefaults()
	if cfg.MaxRetries != 0 {
		t.Errorf("expected explicit 0 retries to be kept, got %d", cfg.MaxRetries)
	}
}

func TestApplyEnvironment(t *testing.T) {
	env := map[string]string{
		global.EnvAWSLogGroup:     "env-group",
		global.EnvNewRelicAPIKey:  "secret",
		global.EnvGoogleProjectID: "",
	}
	lookup := func(key string) (value string, found bool) {
		value, found = env[key]
		return
	}

	cfg := Config{
		CloudWatchLogGroup:  "file-group",
		CloudWatchLogStream: "file-stream",
		GCPProjectID:        "file-project",
	}
	cfg.ApplyEnvironment(lookup)

	if cfg.CloudWatchLogGroup != "env-group" {
		t.Errorf("expected environment to override group, got %q", cfg.CloudWatchLogGroup)
	}
	if cfg.CloudWatchLogStream != "file-stream" {
		t.Errorf("expected unset variable to keep stream, got %q", cfg.CloudWatchLogStream)
	}
	if cfg.NewRelicAPIKey != "secret" {
		t.Errorf("expected API key from environment, got %q", cfg.NewRelicAPIKey)
	}
	if cfg.GCPProjectID != "file-project" {
		t.Errorf("expected empty variable to keep project, got %q", cfg.GCPProjectID)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{MaxRetries: -1}
		cfg.setDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{"defaults", func(cfg *Config) {}, false},
		{"minimal sizes", func(cfg *Config) { cfg.MaxRecordSize, cfg.ReadBufferSize, cfg.QueueCapacity = 1, 1, 1 }, false},
		{"negative record size", func(cfg *Config) { cfg.MaxRecordSize = -1 }, true},
		{"negative buffer", func(cfg *Config) { cfg.ReadBufferSize = -5 }, true},
		{"negative capacity", func(cfg *Config) { cfg.QueueCapacity = -1 }, true},
		{"negative timeout", func(cfg *Config) { cfg.ShutdownTimeout = -time.Second }, true},
		{"port out of range", func(cfg *Config) { cfg.MetricServerPort = 70000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClampQueueCapacity(t *testing.T) {
	tests := []struct {
		name         string
		capacity     int
		recordSize   int
		totalMemory  uint64
		queues       int
		wantCapacity int
		wantClamped  bool
	}{
		{"fits", 100, 1024, 4 * 1024 * 1024, 2, 100, false},
		{"lowered", 1000, 1024, 4 * 1024 * 1024, 2, 512, true},
		{"floor of one", 1000, 1024 * 1024, 1024, 1, 1, true},
		{"unknown memory", 1000, 1024, 0, 2, 1000, false},
		{"no queues", 1000, 1024, 1024, 0, 1000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{QueueCapacity: tt.capacity, MaxRecordSize: tt.recordSize}
			clamped := cfg.clampQueueCapacity(tt.totalMemory, tt.queues)
			if clamped != tt.wantClamped {
				t.Errorf("expected clamped %v, got %v", tt.wantClamped, clamped)
			}
			if cfg.QueueCapacity != tt.wantCapacity {
				t.Errorf("expected capacity %d, got %d", tt.wantCapacity, cfg.QueueCapacity)
			}
		})
	}
}
