package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Placement  PlacementConfig  `yaml:"placement"`
	Composer   ComposerConfig   `yaml:"composer"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	ContentGen ContentGenConfig `yaml:"content_gen"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// SchedulerConfig holds FSRS v4 scheduler parameters (spec §4.1).
type SchedulerConfig struct {
	LearningStepsRaw      string  `yaml:"learning_steps"           env:"SCHEDULER_LEARNING_STEPS"          env-default:"1m,10m"`
	RelearningStepsRaw    string  `yaml:"relearning_steps"         env:"SCHEDULER_RELEARNING_STEPS"        env-default:"10m"`
	GraduatingIntervalDay int     `yaml:"graduating_interval_day"  env:"SCHEDULER_GRADUATING_INTERVAL_DAY" env-default:"1"`
	EasyIntervalDays      int     `yaml:"easy_interval_days"       env:"SCHEDULER_EASY_INTERVAL_DAYS"      env-default:"4"`
	MaxIntervalDays       int     `yaml:"max_interval_days"        env:"SCHEDULER_MAX_INTERVAL_DAYS"       env-default:"36500"`
	HardIntervalFactor    float64 `yaml:"hard_interval_factor"     env:"SCHEDULER_HARD_INTERVAL_FACTOR"    env-default:"1.2"`
	UndoWindowMinutes     int     `yaml:"undo_window_minutes"      env:"SCHEDULER_UNDO_WINDOW_MINUTES"     env-default:"10"`
	EnableFuzz            bool    `yaml:"enable_fuzz"              env:"SCHEDULER_ENABLE_FUZZ"             env-default:"false"`

	// LearningSteps/RelearningSteps are parsed from the Raw fields by Validate.
	LearningSteps   []time.Duration `yaml:"-" env:"-"`
	RelearningSteps []time.Duration `yaml:"-" env:"-"`
}

// PlacementConfig holds the adaptive placement engine's CAT parameters
// (spec §4.2).
type PlacementConfig struct {
	InitialSE      float64 `yaml:"initial_se"     env:"PLACEMENT_INITIAL_SE"     env-default:"1.0"`
	TargetSE       float64 `yaml:"target_se"      env:"PLACEMENT_TARGET_SE"      env-default:"0.3"`
	MinItems       int     `yaml:"min_items"      env:"PLACEMENT_MIN_ITEMS"      env-default:"7"`
	MaxItems       int     `yaml:"max_items"      env:"PLACEMENT_MAX_ITEMS"      env-default:"12"`
	Discrimination float64 `yaml:"discrimination" env:"PLACEMENT_DISCRIMINATION" env-default:"1.5"`
	ThetaMin       float64 `yaml:"theta_min"      env:"PLACEMENT_THETA_MIN"      env-default:"-3"`
	ThetaMax       float64 `yaml:"theta_max"      env:"PLACEMENT_THETA_MAX"      env-default:"4"`
	SEFloor        float64 `yaml:"se_floor"       env:"PLACEMENT_SE_FLOOR"       env-default:"0.1"`
}

// ComposerConfig holds the session composer's defaults (spec §4.4).
type ComposerConfig struct {
	DefaultBatchSize int `yaml:"default_batch_size" env:"COMPOSER_DEFAULT_BATCH_SIZE" env-default:"20"`
}

// MetricsConfig holds the Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path"    env:"METRICS_PATH"    env-default:"/metrics"`
}

// CORSConfig holds CORS settings for the HTTP transport.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// RateLimitConfig holds per-IP token bucket settings for the HTTP transport.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"          env:"RATELIMIT_ENABLED"          env-default:"true"`
	MaxPerMinute    int           `yaml:"max_per_minute"   env:"RATELIMIT_MAX_PER_MINUTE"   env-default:"120"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"RATELIMIT_CLEANUP_INTERVAL" env-default:"5m"`
}

// ContentGenConfig holds the circuit breaker settings guarding the
// out-of-scope external LLM content generator (spec §1: "interfaces
// only" — this repo never calls a real generator, only decorates the
// client interface a caller would supply).
type ContentGenConfig struct {
	BreakerMaxRequests      uint32        `yaml:"breaker_max_requests"      env:"CONTENTGEN_BREAKER_MAX_REQUESTS"      env-default:"3"`
	BreakerInterval         time.Duration `yaml:"breaker_interval"          env:"CONTENTGEN_BREAKER_INTERVAL"          env-default:"30s"`
	BreakerTimeout          time.Duration `yaml:"breaker_timeout"           env:"CONTENTGEN_BREAKER_TIMEOUT"           env-default:"10s"`
	BreakerFailureThreshold uint32        `yaml:"breaker_failure_threshold" env:"CONTENTGEN_BREAKER_FAILURE_THRESHOLD" env-default:"5"`
}
