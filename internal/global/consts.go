package global

import "time"

const (
	// Descriptive Names for available verbosity levels
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Descriptive names for available severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgVersion  string = "v0.3.0"
	ProgBaseName string = "logup"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultConfigPath string = "/etc/logup.json"

	// Pipeline defaults
	DefaultReadBufferSize  int           = 1024
	DefaultMaxRecordSize   int           = 256 * 1024 // CloudWatch Logs per-event ceiling
	DefaultQueueCapacity   int           = 1000
	DefaultMaxRetries      int           = 3
	DefaultShutdownTimeout time.Duration = 5 * time.Second

	// Share of total system memory all queues together may pin in the worst case
	QueueMemoryShareDivisor uint64 = 4

	// Remote sink network defaults
	DefaultDialTimeout    time.Duration = 3 * time.Second
	DefaultRequestTimeout time.Duration = 10 * time.Second

	// Environment variables understood in place of config file values
	EnvAWSLogGroup     string = "AWS_LOG_GROUP_NAME"
	EnvAWSLogStream    string = "AWS_LOG_STREAM_NAME"
	EnvNewRelicRegion  string = "NEW_RELIC_REGION"
	EnvNewRelicAPIKey  string = "NEW_RELIC_API_KEY"
	EnvGoogleProjectID string = "GOOGLE_CLOUD_PROJECT"

	// Metric HTTP server
	DefaultMetricPort int           = 18514
	HTTPListenAddr    string        = "localhost" // Metric queries only exposed to local machine
	HTTPReadTimeout   time.Duration = 30 * time.Second
	HTTPWriteTimeout  time.Duration = 10 * time.Second
	HTTPIdleTimeout   time.Duration = 180 * time.Second
	MetricsPath       string        = "/metrics"
	DiscoveryPath     string        = "/discover/"

	// Namespacing Name Components
	NSMetric    string = "Metrics"
	NSMetricSrv string = "Server"
	NSTest      string = "Test"
	NSCLI       string = "CLI"
	NSFwd       string = "Forwarder"
	NSLoop      string = "Reader"
	NSAssm      string = "Assembler"
	NSFanout    string = "Fanout"
	NSQueue     string = "Queue"
	NSOut       string = "Output"
	NSWorker    string = "Worker"
	NSoStdout   string = "Stdout"
	NSoFile     string = "File"
	NSoJrnl     string = "Journal"
	NSoBeats    string = "Beats"
	NSoCW       string = "CloudWatch"
	NSoNR       string = "NewRelic"
	NSoGCP      string = "GCPLogging"
	NSoKafka    string = "Kafka"
	NSoNATS     string = "NATS"
)
