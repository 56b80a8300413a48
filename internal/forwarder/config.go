package forwarder

import (
	"encoding/json"
	"fmt"
	"logup/internal/global"
	"os"
	"time"
)

// Loads JSON config from file
func LoadConfig(path string) (cfg JSONConfig, err error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config file: %w", err)
		return
	}

	err = json.Unmarshal(configFile, &cfg)
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %w", path, err)
		return
	}
	return
}

// Parses JSON config into daemon config
func (cfg JSONConfig) NewDaemonConf() (config Config, err error) {
	// Pipeline settings
	config.MaxRecordSize = cfg.Pipeline.MaxRecordSize
	config.ReadBufferSize = cfg.Pipeline.ReadBufferSize
	config.QueueCapacity = cfg.Pipeline.QueueCapacity
	config.MaxRetries = -1
	if cfg.Pipeline.MaxRetries != nil {
		config.MaxRetries = *cfg.Pipeline.MaxRetries
		if config.MaxRetries < 0 {
			err = fmt.Errorf("maximum retries cannot be negative, got %d", config.MaxRetries)
			return
		}
	}
	if cfg.Pipeline.ShutdownTimeout != "" {
		config.ShutdownTimeout, err = time.ParseDuration(cfg.Pipeline.ShutdownTimeout)
		if err != nil {
			err = fmt.Errorf("failed to parse shutdown timeout: %w", err)
			return
		}
	}
	config.FlushPartialOnExit = cfg.Pipeline.FlushPartialOnExit

	// Output settings
	config.DisableEcho = cfg.Outputs.DisableEcho
	config.FilePath = cfg.Outputs.FilePath
	config.JournaldURL = cfg.Outputs.Journald.URL
	config.JournaldIdentifier = cfg.Outputs.Journald.Identifier
	config.BeatsAddress = cfg.Outputs.BeatsAddress
	config.CloudWatchLogGroup = cfg.Outputs.CloudWatch.LogGroup
	config.CloudWatchLogStream = cfg.Outputs.CloudWatch.LogStream
	config.NewRelicRegion = cfg.Outputs.NewRelic.Region
	config.NewRelicAPIKey = cfg.Outputs.NewRelic.APIKey
	config.GCPProjectID = cfg.Outputs.GCPLogging.ProjectID
	config.GCPLogID = cfg.Outputs.GCPLogging.LogID
	config.KafkaBrokers = cfg.Outputs.Kafka.Brokers
	config.KafkaTopic = cfg.Outputs.Kafka.Topic
	config.NATSURL = cfg.Outputs.NATS.URL
	config.NATSSubject = cfg.Outputs.NATS.Subject

	// Metric settings
	config.MetricServerEnabled = cfg.Metrics.EnableHTTPServer
	config.MetricServerPort = cfg.Metrics.HTTPServerPort
	return
}

// Applies destination names and secrets from the environment, overriding file values
func (cfg *Config) ApplyEnvironment(lookup func(key string) (value string, found bool)) {
	overrides := []struct {
		key    string
		target *string
	}{
		{global.EnvAWSLogGroup, &cfg.CloudWatchLogGroup},
		{global.EnvAWSLogStream, &cfg.CloudWatchLogStream},
		{global.EnvNewRelicRegion, &cfg.NewRelicRegion},
		{global.EnvNewRelicAPIKey, &cfg.NewRelicAPIKey},
		{global.EnvGoogleProjectID, &cfg.GCPProjectID},
	}
	for _, override := range overrides {
		value, found := lookup(override.key)
		if found && value != "" {
			*override.target = value
		}
	}
}

// Sets defaults for any missing values
func (cfg *Config) setDefaults() {
	if cfg.MaxRecordSize == 0 {
		cfg.MaxRecordSize = global.DefaultMaxRecordSize
	}
	if cfg.ReadBufferSize == 0 {
		cfg.ReadBufferSize = global.DefaultReadBufferSize
	}
	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = global.DefaultQueueCapacity
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = global.DefaultMaxRetries
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = global.DefaultShutdownTimeout
	}
	if cfg.MetricServerPort == 0 {
		cfg.MetricServerPort = global.DefaultMetricPort
	}
}

// Rejects values no component can work with. Call after setDefaults.
func (cfg *Config) validate() (err error) {
	switch {
	case cfg.MaxRecordSize < 1:
		err = fmt.Errorf("maximum record size must be at least 1 byte, got %d", cfg.MaxRecordSize)
	case cfg.ReadBufferSize < 1:
		err = fmt.Errorf("read buffer size must be at least 1 byte, got %d", cfg.ReadBufferSize)
	case cfg.QueueCapacity < 1:
		err = fmt.Errorf("queue capacity must be at least 1, got %d", cfg.QueueCapacity)
	case cfg.ShutdownTimeout < 0:
		err = fmt.Errorf("shutdown timeout cannot be negative, got %v", cfg.ShutdownTimeout)
	case cfg.MetricServerPort < 1 || cfg.MetricServerPort > 65535:
		err = fmt.Errorf("invalid metric server port %d", cfg.MetricServerPort)
	}
	return
}

// Lowers queue capacity so that all queues holding maximum sized records stay within
// the configured share of system memory. totalMemory of 0 (unknown) leaves capacity unchanged.
func (cfg *Config) clampQueueCapacity(totalMemory uint64, queues int) (clamped bool) {
	if totalMemory == 0 || queues < 1 || cfg.MaxRecordSize < 1 {
		return
	}

	budget := totalMemory / global.QueueMemoryShareDivisor
	perRecord := uint64(cfg.MaxRecordSize) * uint64(queues)

	limit := budget / perRecord
	if limit < 1 {
		limit = 1
	}
	if uint64(cfg.QueueCapacity) > limit {
		cfg.QueueCapacity = int(limit)
		clamped = true
	}
	return
}
