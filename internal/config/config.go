// Package config defines the configuration structure for the slskd relay.
// Configuration is loaded once at process start and is immutable thereafter.
// It follows 12-Factor App principles by strictly separating code from
// configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> <VAR>_FILE secret files (Lowest)
//
// Any missing required value or invalid format aborts startup (fail fast).
package config

import (
	"net"
	"strconv"
	"time"

	"slskdrelay/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type used
// throughout configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the relay. Sub-components
// receive only the specific config subsets they require.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`

	Server  ServerConfig
	Discord DiscordConfig
	Slskd   SlskdConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds the inbound HTTP listener settings.
type ServerConfig struct {
	Host string `envconfig:"WEBHOOK_HOST" default:"0.0.0.0"`
	Port int    `envconfig:"WEBHOOK_PORT" default:"8080" validate:"min=1,max=65535"`
	// Path is the route slskd posts events to.
	Path string `envconfig:"WEBHOOK_PATH" default:"/webhook" validate:"startswith=/"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	MaxBodyBytes    int64         `envconfig:"MAX_BODY_BYTES" default:"1048576" validate:"min=1"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DiscordConfig holds the outbound Discord webhook settings.
type DiscordConfig struct {
	// WebhookURL embeds the webhook token, hence SecretString.
	WebhookURL    SecretString  `envconfig:"DISCORD_WEBHOOK_URL" validate:"required,url"`
	MentionUserID string        `envconfig:"DISCORD_USER_ID" validate:"omitempty,numeric"`
	Username      string        `envconfig:"DISCORD_USERNAME" default:"Slskd"`
	AvatarURL     string        `envconfig:"DISCORD_AVATAR_URL" validate:"omitempty,url"`
	Timeout       time.Duration `envconfig:"DISCORD_TIMEOUT" default:"10s"`
	UserAgent     string        `envconfig:"DISCORD_USER_AGENT" default:"slskd-relay/1.0"`
}

// SlskdConfig describes the slskd instance events originate from.
type SlskdConfig struct {
	// URL is the slskd web UI base, used to link chat authors. Optional.
	URL string `envconfig:"SLSKD_URL" validate:"omitempty,url"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string `ignored:"true"`
	Commit    string `ignored:"true"`
	BuildTime string `ignored:"true"`
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a referenced secret could not be found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrSecretResolution indicates a failure while reading secret files.
	ErrSecretResolution ConfigErrorType = "SECRET_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
