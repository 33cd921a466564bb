// Package config loads application configuration from environment variables,
// optionally seeded from a YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreS3     = "s3"
)

// Cipher variants.
const (
	CipherAESGCM    = "aesgcm"
	CipherPlaintext = "plaintext"
)

// Quantum backends.
const (
	QuantumLocal  = "local"
	QuantumBraket = "braket"
	QuantumOff    = "off"
)

// Config holds the application configuration. Field tags name the keys
// accepted in the YAML file; environment variables use the QUANTUMVAULT_
// prefix and the upper-cased key.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	Store    string `yaml:"store"`
	DBPath   string `yaml:"db_path"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Prefix string `yaml:"s3_prefix"`

	AWSRegion string `yaml:"aws_region"`

	Cipher     string `yaml:"cipher"`
	SecretKey  string `yaml:"secret_key"`
	KeyFile    string `yaml:"key_file"`
	Asymmetric bool   `yaml:"asymmetric"`

	QuantumBackend  string        `yaml:"quantum_backend"`
	QuantumShots    int           `yaml:"quantum_shots"`
	QuantumTimeout  time.Duration `yaml:"quantum_timeout"`
	BraketBucket    string        `yaml:"braket_bucket"`
	BraketDeviceARN string        `yaml:"braket_device_arn"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// HasSecretKey reports whether a key is configured directly or via a key
// file. Without either the cipher key is ephemeral.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != "" || c.KeyFile != ""
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaults() *Config {
	return &Config{
		ListenAddr:     "127.0.0.1:8080",
		Store:          StoreMemory,
		DBPath:         "quantumvault.db",
		S3Prefix:       "passwords",
		AWSRegion:      "us-east-1",
		Cipher:         CipherAESGCM,
		QuantumBackend: QuantumLocal,
		QuantumTimeout: 2 * time.Minute,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load reads configuration and returns a validated Config. If
// QUANTUMVAULT_CONFIG_FILE names a YAML file its values replace the defaults;
// environment variables always take precedence over the file.
// Defaults: QUANTUMVAULT_LISTEN_ADDR (127.0.0.1:8080), QUANTUMVAULT_STORE (memory),
// QUANTUMVAULT_DB_PATH (quantumvault.db), QUANTUMVAULT_S3_PREFIX (passwords),
// QUANTUMVAULT_AWS_REGION (us-east-1), QUANTUMVAULT_CIPHER (aesgcm),
// QUANTUMVAULT_QUANTUM_BACKEND (local), QUANTUMVAULT_QUANTUM_SHOTS (2 on braket, 100 otherwise),
// QUANTUMVAULT_QUANTUM_TIMEOUT (2m).
func Load() (*Config, error) {
	cfg := defaults()

	if path, ok := os.LookupEnv("QUANTUMVAULT_CONFIG_FILE"); ok && path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.QuantumShots == 0 {
		cfg.QuantumShots = defaultShots(cfg.QuantumBackend)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultShots keeps cloud runs cheap; the local simulator can afford more.
func defaultShots(backend string) int {
	if backend == QuantumBraket {
		return 2
	}
	return 100
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"QUANTUMVAULT_LISTEN_ADDR":       &cfg.ListenAddr,
		"QUANTUMVAULT_STORE":             &cfg.Store,
		"QUANTUMVAULT_DB_PATH":           &cfg.DBPath,
		"QUANTUMVAULT_S3_BUCKET":         &cfg.S3Bucket,
		"QUANTUMVAULT_S3_PREFIX":         &cfg.S3Prefix,
		"QUANTUMVAULT_AWS_REGION":        &cfg.AWSRegion,
		"QUANTUMVAULT_CIPHER":            &cfg.Cipher,
		"QUANTUMVAULT_SECRET_KEY":        &cfg.SecretKey,
		"QUANTUMVAULT_KEY_FILE":          &cfg.KeyFile,
		"QUANTUMVAULT_QUANTUM_BACKEND":   &cfg.QuantumBackend,
		"QUANTUMVAULT_BRAKET_BUCKET":     &cfg.BraketBucket,
		"QUANTUMVAULT_BRAKET_DEVICE_ARN": &cfg.BraketDeviceARN,
		"QUANTUMVAULT_LOG_LEVEL":         &cfg.LogLevel,
		"QUANTUMVAULT_LOG_FORMAT":        &cfg.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := os.LookupEnv("QUANTUMVAULT_ASYMMETRIC"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("QUANTUMVAULT_ASYMMETRIC has invalid boolean %q: %w", v, err)
		}
		cfg.Asymmetric = parsed
	}

	if v, ok := os.LookupEnv("QUANTUMVAULT_QUANTUM_SHOTS"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("QUANTUMVAULT_QUANTUM_SHOTS has invalid integer %q: %w", v, err)
		}
		cfg.QuantumShots = parsed
	}

	if v, ok := os.LookupEnv("QUANTUMVAULT_QUANTUM_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("QUANTUMVAULT_QUANTUM_TIMEOUT has invalid duration %q: %w", v, err)
		}
		cfg.QuantumTimeout = parsed
	}

	return nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StoreS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("QUANTUMVAULT_S3_BUCKET is required when QUANTUMVAULT_STORE=%s", StoreS3)
		}
	default:
		return fmt.Errorf("QUANTUMVAULT_STORE must be one of memory, sqlite, s3; got %q", c.Store)
	}

	switch c.Cipher {
	case CipherAESGCM, CipherPlaintext:
	default:
		return fmt.Errorf("QUANTUMVAULT_CIPHER must be aesgcm or plaintext; got %q", c.Cipher)
	}

	switch c.QuantumBackend {
	case QuantumLocal, QuantumOff:
	case QuantumBraket:
		if c.BraketBucket == "" {
			return fmt.Errorf("QUANTUMVAULT_BRAKET_BUCKET is required when QUANTUMVAULT_QUANTUM_BACKEND=%s", QuantumBraket)
		}
	default:
		return fmt.Errorf("QUANTUMVAULT_QUANTUM_BACKEND must be one of local, braket, off; got %q", c.QuantumBackend)
	}

	if c.QuantumShots < 1 {
		return fmt.Errorf("QUANTUMVAULT_QUANTUM_SHOTS must be positive; got %d", c.QuantumShots)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("QUANTUMVAULT_LOG_FORMAT must be text or json; got %q", c.LogFormat)
	}

	return nil
}
