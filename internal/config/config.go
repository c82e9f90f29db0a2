// Package config aggregates application settings from defaults, command
// line flags, a .env file and environment variables (in increasing
// precedence for env over flags) and validates the result.
package config

import (
	"flag"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/avmusatov/tunebase/internal/logger"
)

// Config holds the full application configuration.
type Config struct {
	// RunAddr is the address and port the HTTP server listens on.
	RunAddr string `env:"SERVER_ADDRESS" validate:"hostname_port"`

	// LogLevel is the global logger level.
	LogLevel string `env:"LOG_LEVEL" validate:"loglevel"`

	// DBFileName is the JSON document store file. Empty selects the
	// in-memory store.
	DBFileName string `env:"FILE_STORAGE_PATH" validate:"omitempty,filepath"`

	// TokenSigningSecretKey is the base64 (URL encoding) HMAC key used
	// to sign access tokens. Loaded once at startup; never rotated.
	TokenSigningSecretKey string `env:"JWT_SECRET_KEY" validate:"base64url"`

	// TokenTTL bounds the lifetime of issued access tokens.
	TokenTTL time.Duration `env:"ACCESS_TOKEN_TTL"`

	// TrustedSubnet is the CIDR allowed to call internal endpoints.
	// Empty disables them.
	TrustedSubnet string `env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`

	// BcryptCost is the password hashing work factor. Zero means the
	// bcrypt default.
	BcryptCost int `env:"BCRYPT_COST"`
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warning": true,
		"error":   true,
		"fatal":   true,
	}

	return allowedLogLevels[fieldLevel.Field().String()]
}

func (cfg *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(cfg)
}

// InitOption customizes the behavior of New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing skips flag.Parse(); used by tests where the
// test binary owns the flag set.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New builds the configuration. The signing secret default exists for
// local development only and is expected to be overridden in production.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		logger.Log.Debugln("unable to load .env file:", err)
	}

	cfg := &Config{
		RunAddr:               ":8080",
		LogLevel:              "info",
		DBFileName:            "",
		TokenSigningSecretKey: "c3VwZXJzZWNyZXRrZXlmb3JkZXZlbG9wbWVudA==",
		TokenTTL:              30 * time.Minute,
		TrustedSubnet:         "",
		BcryptCost:            0,
	}

	if !options.disableFlagsParsing {
		flag.StringVar(&cfg.RunAddr, "a", cfg.RunAddr, "address and port to run server")
		flag.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "logger level")
		flag.StringVar(&cfg.DBFileName, "f", cfg.DBFileName, "JSON file name with database")
		flag.StringVar(&cfg.TrustedSubnet, "t", cfg.TrustedSubnet, "trusted subnet for internal endpoints in CIDR notation")
		flag.Parse()
	}

	var valuesFromEnv Config
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, err
	}

	if valuesFromEnv.RunAddr != "" {
		cfg.RunAddr = valuesFromEnv.RunAddr
	}

	if valuesFromEnv.LogLevel != "" {
		cfg.LogLevel = valuesFromEnv.LogLevel
	}

	if valuesFromEnv.DBFileName != "" {
		cfg.DBFileName = valuesFromEnv.DBFileName
	}

	if valuesFromEnv.TokenSigningSecretKey != "" {
		cfg.TokenSigningSecretKey = valuesFromEnv.TokenSigningSecretKey
	}

	if valuesFromEnv.TokenTTL != 0 {
		cfg.TokenTTL = valuesFromEnv.TokenTTL
	}

	if valuesFromEnv.TrustedSubnet != "" {
		cfg.TrustedSubnet = valuesFromEnv.TrustedSubnet
	}

	if valuesFromEnv.BcryptCost != 0 {
		cfg.BcryptCost = valuesFromEnv.BcryptCost
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
