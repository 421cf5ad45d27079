package config

// Config file discovery.
const (
	configName = "rangelist"
	envPrefix  = "RANGELIST"
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Render defaults.
const (
	DefaultRenderTheme = "westeros"
	DefaultRenderTitle = "Intensity profile"
)

// Bench defaults.
const (
	DefaultBenchOps            = 100000
	DefaultBenchSeed           = 42
	DefaultBenchMaxPosition    = 1e6
	DefaultBenchMaxSpan        = 1e4
	DefaultBenchMaxAmount      = 10.0
	DefaultBenchSetRatio       = 0.25
	DefaultBenchHibernateEvery = 0
)

// Observability defaults.
const (
	// DefaultExporter disables telemetry export; providers become no-op.
	DefaultExporter = "none"
)
