package forwarder

import (
	"context"
	"io"
	"logup/internal/assembler"
	"logup/internal/fanout"
	"logup/internal/metrics"
	"logup/internal/queue/bounded"
	"logup/pkg/logstream"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

type JSONConfig struct {
	Pipeline struct {
		MaxRecordSize      int    `json:"maxRecordSize,omitempty"`
		ReadBufferSize     int    `json:"readBufferSize,omitempty"`
		QueueCapacity      int    `json:"queueCapacity,omitempty"`
		MaxRetries         *int   `json:"maxRetries,omitempty"`
		ShutdownTimeout    string `json:"shutdownTimeout,omitempty"`
		FlushPartialOnExit bool   `json:"flushPartialOnExit,omitempty"`
	} `json:"pipeline"`
	Outputs struct {
		DisableEcho bool   `json:"disableEcho,omitempty"`
		FilePath    string `json:"filePath,omitempty"`
		Journald    struct {
			URL        string `json:"url,omitempty"`
			Identifier string `json:"identifier,omitempty"`
		} `json:"journald"`
		BeatsAddress string `json:"beatsAddress,omitempty"`
		CloudWatch   struct {
			LogGroup  string `json:"logGroup,omitempty"`
			LogStream string `json:"logStream,omitempty"`
		} `json:"cloudwatch"`
		NewRelic struct {
			Region string `json:"region,omitempty"`
			APIKey string `json:"apiKey,omitempty"`
		} `json:"newrelic"`
		GCPLogging struct {
			ProjectID string `json:"projectID,omitempty"`
			LogID     string `json:"logID,omitempty"`
		} `json:"gcpLogging"`
		Kafka struct {
			Brokers []string `json:"brokers,omitempty"`
			Topic   string   `json:"topic,omitempty"`
		} `json:"kafka"`
		NATS struct {
			URL     string `json:"url,omitempty"`
			Subject string `json:"subject,omitempty"`
		} `json:"nats"`
	} `json:"outputs"`
	Metrics struct {
		EnableHTTPServer bool `json:"enableHTTPServer"`
		HTTPServerPort   int  `json:"HTTPServerPort,omitempty"`
	} `json:"metrics"`
}

type Config struct {
	// Pipeline
	MaxRecordSize      int
	ReadBufferSize     int
	QueueCapacity      int
	MaxRetries         int // negative means unset
	ShutdownTimeout    time.Duration
	FlushPartialOnExit bool

	// Outputs
	DisableEcho         bool
	FilePath            string
	JournaldURL         string
	JournaldIdentifier  string
	BeatsAddress        string
	CloudWatchLogGroup  string
	CloudWatchLogStream string
	NewRelicRegion      string
	NewRelicAPIKey      string
	GCPProjectID        string
	GCPLogID            string
	KafkaBrokers        []string
	KafkaTopic          string
	NATSURL             string
	NATSSubject         string

	// Metrics
	MetricServerEnabled bool
	MetricServerPort    int
}

// Destination with a lifecycle, usable as a fan-out target
type OutputModule interface {
	logstream.Sink
	Shutdown() (err error)
}

// One opened destination and the queue in front of it
type output struct {
	name   string
	module OutputModule
	queue  *bounded.Queue // nil when written directly by the fan-out
	direct bool
}

// Counters for a finished read loop
type LoopStats struct {
	Chunks uint64 // non-empty reads
	Bytes  uint64 // bytes read
}

type Daemon struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup

	// Pipeline components (in data flow order)
	assembler *assembler.Instance
	fanout    *fanout.Instance
	outputs   []output
	attached  []output // supplied by the caller before Start

	echoWriter io.Writer

	Registry     *metrics.Registry
	MetricServer *http.Server
	Metrics      *MetricStorage

	stopping     atomic.Bool
	shutdownOnce sync.Once
	shutdownErr  error
}

type MetricStorage struct {
	Chunks atomic.Uint64 // reads returning data
	Bytes  atomic.Uint64 // bytes read from the source
}
