package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoaderOptions configures Load.
type LoaderOptions struct {
	// ConfigDir is the directory containing config files (default "config").
	ConfigDir string
	// Environment overrides automatic environment detection.
	Environment string
	// SkipEnvSubstitution disables ${VAR} substitution.
	SkipEnvSubstitution bool
	// SkipValidation disables the post-load ValidateConfiguration check.
	SkipValidation bool
	// DotEnvPath, if non-empty, is preloaded with godotenv before any
	// environment variable is read. Missing files are silently ignored.
	DotEnvPath string
}

// DefaultLoaderOptions returns the loader's default options.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		ConfigDir:  "config",
		DotEnvPath: ".env",
	}
}

// Load resolves a Config: ConfigDir/<environment>.yaml, falling back
// to ConfigDir/default.yaml, then ConfigDir/config.yaml, then an
// empty Config populated entirely by defaults. Environment variable
// overrides (HYPERBOREA_*) always win over file contents.
func Load(opts ...LoaderOptions) (*Config, error) {
	options := DefaultLoaderOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	if options.DotEnvPath != "" {
		_ = godotenv.Load(options.DotEnvPath) // optional; missing file is fine
	}

	env := options.Environment
	if env == "" {
		env = GetEnvironment()
	}

	cfg, err := firstReadableConfig(options.ConfigDir, env)
	if err != nil {
		cfg = &Config{}
	}

	if cfg.Environment == "" {
		cfg.Environment = env
	}
	setDefaults(cfg)

	if !options.SkipEnvSubstitution {
		SubstituteEnvVarsInConfig(cfg)
	}

	applyEnvironmentOverrides(cfg)

	if !options.SkipValidation {
		if errs := ValidateConfiguration(cfg); HasErrors(errs) {
			return cfg, fmt.Errorf("invalid configuration: %v", errs)
		}
	}

	return cfg, nil
}

func firstReadableConfig(dir, env string) (*Config, error) {
	candidates := []string{
		filepath.Join(dir, fmt.Sprintf("%s.yaml", env)),
		filepath.Join(dir, "default.yaml"),
		filepath.Join(dir, "config.yaml"),
	}

	var lastErr error
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			lastErr = err
			continue
		}
		return LoadFromFile(path)
	}
	return nil, lastErr
}

func applyEnvironmentOverrides(cfg *Config) {
	if key := os.Getenv("HYPERBOREA_SECRET_KEY"); key != "" {
		cfg.Node.SecretKeyBase64 = key
	}
	if addr := os.Getenv("HYPERBOREA_LISTEN_ADDRESS"); addr != "" {
		cfg.Transport.ListenAddress = addr
	}
	if addr := os.Getenv("HYPERBOREA_PUBLIC_ADDRESS"); addr != "" {
		cfg.Transport.PublicAddress = addr
	}
	if level := os.Getenv("HYPERBOREA_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if enabled, err := strconv.ParseBool(os.Getenv("HYPERBOREA_METRICS_ENABLED")); err == nil {
		cfg.Metrics.Enabled = enabled
	}
	if interval := os.Getenv("HYPERBOREA_TRAVERSAL_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Traversal.Interval = d
		}
	}
}

// MustLoad calls Load and panics on error.
func MustLoad(opts ...LoaderOptions) *Config {
	cfg, err := Load(opts...)
	if err != nil {
		panic(fmt.Sprintf("load configuration: %v", err))
	}
	return cfg
}
