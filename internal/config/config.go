package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error fatal"`
	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string `mapstructure:"cors_origins" validate:"dive,required"`
	// RequestTimeoutSeconds bounds each request at the HTTP boundary.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"required,min=4,max=31"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0,lt=44640"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lt=259200,gtfield=TokenLifetimeMinutes"`
}

// SeedConfig names the initial owner account created by the seed command.
type SeedConfig struct {
	OwnerEmail    string `mapstructure:"owner_email"    validate:"omitempty,email"`
	OwnerPassword string `mapstructure:"owner_password" validate:"omitempty,min=8,max=72"`
}
