// loader.go implements the configuration loading lifecycle for the relay.
//
// The loading sequence is:
//  1. Enforce UTC timezone to prevent drift bugs.
//  2. Load .env file via godotenv (non-fatal if absent).
//  3. Scan environment for <VAR>_FILE pointers to secret-capable variables,
//     resolve them via the SecretProvider and inject the values back into
//     the environment.
//  4. Use envconfig to process struct tags and populate the Config struct.
//  5. Populate BuildInfo from linker-injected variables.
//  6. Validate the struct using go-playground/validator.
package config

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError is a diagnostic error type returned by LoadConfig to aid debugging.
// It wraps a ConfigErrorType and an underlying error message.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// secretFileSuffix marks an environment variable as a pointer to a file
// holding the value of its target. DISCORD_WEBHOOK_URL_FILE=/run/secrets/hook
// supplies DISCORD_WEBHOOK_URL.
const secretFileSuffix = "_FILE"

// secretFileTargets lists the variables that may be supplied via a secret
// file. Other *_FILE variables in the environment are left alone.
var secretFileTargets = map[string]bool{
	"DISCORD_WEBHOOK_URL": true,
	"DISCORD_USER_ID":     true,
	"DISCORD_AVATAR_URL":  true,
	"SLSKD_URL":           true,
}

// secretResolveTimeout bounds the whole secret resolution step.
const secretResolveTimeout = 10 * time.Second

// envLookup is a function type for looking up environment variables.
// It matches the signature of os.LookupEnv and allows injection for testing.
type envLookup func(key string) (string, bool)

// envSet is a function type for setting environment variables.
// It matches the signature of os.Setenv and allows injection for testing.
type envSet func(key, value string) error

// environ is a function type for listing all environment variables.
// It matches the signature of os.Environ and allows injection for testing.
type environ func() []string

// loaderDeps holds the injectable dependencies for the loader, enabling
// testing without mutating global state.
type loaderDeps struct {
	lookupEnv envLookup
	setEnv    envSet
	environ   environ
}

// defaultDeps returns the standard OS-backed dependencies.
func defaultDeps() loaderDeps {
	return loaderDeps{
		lookupEnv: os.LookupEnv,
		setEnv:    os.Setenv,
		environ:   os.Environ,
	}
}

// LoadConfig loads and validates the relay configuration.
//
// The provider resolves <VAR>_FILE secret references. A nil provider falls
// back to a FileSecretProvider reading the local filesystem.
func LoadConfig(provider SecretProvider) (*Config, error) {
	return loadConfigWithDeps(provider, defaultDeps())
}

// loadConfigWithDeps is the internal implementation of LoadConfig that accepts
// injectable dependencies for testing.
func loadConfigWithDeps(provider SecretProvider, deps loaderDeps) (*Config, error) {
	// Step 1: Enforce UTC timezone to prevent drift bugs.
	time.Local = time.UTC

	// Step 2: Load .env file (non-fatal if absent). godotenv does NOT
	// override existing environment variables.
	_ = godotenv.Load()

	// Step 3: Resolve <VAR>_FILE secrets.
	if provider == nil {
		provider = NewFileSecretProvider()
	}
	if err := resolveSecretFiles(provider, deps); err != nil {
		return nil, err
	}

	// Step 4: Process envconfig tags. The empty prefix means envconfig falls
	// back to the exact tag values (e.g. envconfig:"WEBHOOK_PORT").
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	// Step 5: Populate build metadata from linker-injected variables.
	cfg.Build = NewBuildInfo()

	// Step 6: Validate the populated struct.
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return &cfg, nil
}

// resolveSecretFiles scans the environment for <VAR>_FILE variables whose
// target is secret-capable, reads the referenced files via the provider and
// injects the values back into the environment so envconfig sees them.
//
// A target that is already set directly is not overridden; this respects the
// priority chain Env > Dotenv > secret file.
func resolveSecretFiles(provider SecretProvider, deps loaderDeps) error {
	// refToTargets maps file reference -> target env vars for reverse lookup
	// after batch retrieval. Two targets may share one file.
	refToTargets := make(map[string][]string)

	for _, envEntry := range deps.environ() {
		key, ref, ok := strings.Cut(envEntry, "=")
		if !ok || !strings.HasSuffix(key, secretFileSuffix) {
			continue
		}

		target := strings.TrimSuffix(key, secretFileSuffix)
		if !secretFileTargets[target] {
			continue
		}
		if _, exists := deps.lookupEnv(target); exists {
			continue
		}
		if ref == "" {
			continue
		}

		refToTargets[ref] = append(refToTargets[ref], target)
	}

	if len(refToTargets) == 0 {
		return nil
	}

	refs := make([]string, 0, len(refToTargets))
	for ref := range refToTargets {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	ctx, cancel := context.WithTimeout(context.Background(), secretResolveTimeout)
	defer cancel()

	resolved, err := provider.GetSecretsBatch(ctx, refs)
	if err != nil {
		return &ConfigError{
			Type:    ErrSecretResolution,
			Message: fmt.Sprintf("failed to resolve %d secret files", len(refs)),
			Err:     err,
		}
	}

	var missing []string
	for _, ref := range refs {
		value, ok := resolved[ref]
		if !ok {
			missing = append(missing, refToTargets[ref]...)
			continue
		}
		for _, target := range refToTargets[ref] {
			if err := deps.setEnv(target, value); err != nil {
				return &ConfigError{
					Type:    ErrSecretResolution,
					Message: fmt.Sprintf("failed to set resolved value for %s", target),
					Err:     err,
				}
			}
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return &ConfigError{
			Type:    ErrMissingEnv,
			Message: fmt.Sprintf("secret files not found for: %s", strings.Join(missing, ", ")),
		}
	}

	return nil
}
