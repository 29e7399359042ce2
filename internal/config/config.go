package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Training TrainingConfig `mapstructure:"training" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// TrainingConfig contains the tunable parameters of the training engine.
type TrainingConfig struct {
	// TickIntervalSeconds is how often active sessions are advanced to
	// refresh fatigue and focus.
	TickIntervalSeconds int `mapstructure:"tick_interval_seconds" validate:"required,gt=0"`

	// Perfect completions required to master each level.
	CrawlPerfectCompletions          int `mapstructure:"crawl_perfect_completions"           validate:"required,gt=0"`
	WalkPerfectCompletions           int `mapstructure:"walk_perfect_completions"            validate:"required,gt=0"`
	RunGuidedPerfectCompletions      int `mapstructure:"run_guided_perfect_completions"      validate:"required,gt=0"`
	RunIndependentPerfectCompletions int `mapstructure:"run_independent_perfect_completions" validate:"required,gt=0"`

	// PromotionSessionThreshold is how many sessions at a stress tier a user
	// needs before that tier can become their tolerance level.
	PromotionSessionThreshold int `mapstructure:"promotion_session_threshold" validate:"required,gt=0"`

	// BaselineWindow is how many recent drill attempts feed the unstressed
	// accuracy baseline.
	BaselineWindow int `mapstructure:"baseline_window" validate:"required,gt=0"`
}
