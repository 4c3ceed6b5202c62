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
	ProgBaseName string = "loracom"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultBinaryPath  string = "/usr/local/bin/loracom"
	DefaultConfigDir   string = "/etc/loracom"
	DefaultConfigPath  string = DefaultConfigDir + "/node.json"
	DefaultUnitPath    string = "/etc/systemd/system/loracom.service"
	DefaultStateDir    string = "/var/lib/loracom"
	DefaultHistoryPath string = DefaultStateDir + "/history.db"
	DefaultEventsPath  string = DefaultStateDir + "/events.log"
	DefaultAAProfName  string = "usr.local.bin.loracom"
	DefaultLinkKeySize int    = 32

	// Protocol defaults
	DefaultQueueSize   int           = 10
	DefaultMaxRetries  int           = 10
	DefaultAckTimeout  time.Duration = 1 * time.Second
	DefaultTxTimeout   time.Duration = 1 * time.Second
	DefaultServiceTick time.Duration = 50 * time.Millisecond
	DefaultDeviceID    uint8         = 1

	// Node defaults
	DefaultStatusInterval time.Duration = 10 * time.Second
	DefaultInboxSize      int           = 64
	DefaultSerialBaud     int           = 115200
	DefaultAirAddress     string        = "127.255.255.255:8700"
	DefaultSimRSSI        int           = -60
	DefaultCommandTimeout time.Duration = 20 * time.Second

	// Timeout values
	NodeShutdownTimeout time.Duration = 5 * time.Second

	// Metric collection
	DefaultMetricInterval time.Duration = 10 * time.Second
	DefaultMetricMaxAge   time.Duration = 1 * time.Hour

	// Node HTTP API
	HTTPListenPort   int           = 8701
	HTTPListenAddr   string        = "localhost" // Only exposed to local machine
	HTTPReadTimeout  time.Duration = 30 * time.Second
	HTTPWriteTimeout time.Duration = 10 * time.Second
	HTTPIdleTimeout  time.Duration = 180 * time.Second
	DataPath         string        = "/data/"
	DiscoveryPath    string        = "/discover/"
	AggregationPath  string        = "/aggregate/"
	QueuePath        string        = "/queue"
	OutcomePath      string        = "/outcome/"
	CommandPath      string        = "/command"

	// Namespacing Name Components
	NSMetric    string = "Metrics"
	NSMetricSrv string = "Server"
	NSTest      string = "Test"
	NSCLI       string = "CLI"
	NSNode      string = "Node"
	NSEngine    string = "Engine"
	NSRadio     string = "Radio"
	NSQueue     string = "Queue"
	NSInbox     string = "Inbox"
	NSService   string = "Service"
	NSReceive   string = "Receive"
	NSStatus    string = "Status"
	NSCommander string = "Commander"
	NSConsole   string = "Console"
	NSTracker   string = "Tracker"
	NSoBeats    string = "Beats"
	NSoHistory  string = "History"
	NSoJournal  string = "Journal"
	NSoFile     string = "EventLog"
)
