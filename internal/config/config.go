// Package config loads the composer configuration.
//
// Precedence, lowest first: defaults, invoice-composer.yaml, .env,
// INVOICE_COMPOSER_* environment variables, command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable
const EnvPrefix = "INVOICE_COMPOSER"

// Store drivers
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRemote = "remote"
)

// Export sinks
const (
	SinkFile = "file"
	SinkGCS  = "gcs"
)

// Config is the resolved configuration. Keys match the flag names.
type Config struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	Debug       bool     `mapstructure:"debug"`
	CORSOrigins []string `mapstructure:"cors-origins"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`

	Store         string        `mapstructure:"store"`
	RemoteURL     string        `mapstructure:"remote-url"`
	RemoteTimeout time.Duration `mapstructure:"remote-timeout"`
	SQLiteDSN     string        `mapstructure:"sqlite-dsn"`

	Locale        string `mapstructure:"locale"`
	Labels        string `mapstructure:"labels"`
	StrictContact bool   `mapstructure:"strict-contact"`
	PhoneRegion   string `mapstructure:"phone-region"`
	ErrorDisplay  string `mapstructure:"error-display"`

	ExportFormat       string `mapstructure:"export-format"`
	Sink               string `mapstructure:"sink"`
	OutputDir          string `mapstructure:"output-dir"`
	GCSBucket          string `mapstructure:"gcs-bucket"`
	GCSPrefix          string `mapstructure:"gcs-prefix"`
	GCSCredentialsJSON string `mapstructure:"gcs-credentials-json"`
}

// Defaults returns the default value of every key
func Defaults() map[string]any {
	return map[string]any{
		"host":                 "0.0.0.0",
		"port":                 8080,
		"debug":                false,
		"cors-origins":         []string{},
		"log-level":            "info",
		"log-format":           "json",
		"store":                StoreMemory,
		"remote-url":           "",
		"remote-timeout":       "30s",
		"sqlite-dsn":           "file:invoices.db?_pragma=busy_timeout(5000)",
		"locale":               "en",
		"labels":               "en",
		"strict-contact":       false,
		"phone-region":         "CO",
		"error-display":        "blur",
		"export-format":        "pdf",
		"sink":                 SinkFile,
		"output-dir":           ".",
		"gcs-bucket":           "",
		"gcs-prefix":           "invoices",
		"gcs-credentials-json": "",
	}
}

// Options controls where Load looks for files
type Options struct {
	// ConfigFile is an explicit config file; empty searches the working
	// directory and the user config dir for invoice-composer.yaml
	ConfigFile string
	// EnvFile is loaded into the environment when present
	EnvFile string
}

// Load resolves the configuration. cmd may be nil.
func Load(cmd *cobra.Command, opts Options) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName("invoice-composer")
	v.SetConfigType("yaml")
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	}
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(dir + "/invoice-composer")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, fmt.Errorf("load %s: %w", envFile, err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, c.Validate()
}

// Validate checks enumerated values and required combinations
func (c Config) Validate() error {
	if !slices.Contains([]string{StoreMemory, StoreSQLite, StoreRemote}, c.Store) {
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.Store == StoreRemote && strings.TrimSpace(c.RemoteURL) == "" {
		return errors.New("remote store requires remote-url")
	}
	if !slices.Contains([]string{"pdf", "xlsx", "html"}, c.ExportFormat) {
		return fmt.Errorf("unknown export format %q", c.ExportFormat)
	}
	if !slices.Contains([]string{SinkFile, SinkGCS}, c.Sink) {
		return fmt.Errorf("unknown sink %q", c.Sink)
	}
	if c.Sink == SinkGCS && strings.TrimSpace(c.GCSBucket) == "" {
		return errors.New("gcs sink requires gcs-bucket")
	}
	if !slices.Contains([]string{"en", "es"}, c.Labels) {
		return fmt.Errorf("unknown labels %q", c.Labels)
	}
	if !slices.Contains([]string{"blur", "always"}, c.ErrorDisplay) {
		return fmt.Errorf("unknown error display %q", c.ErrorDisplay)
	}
	for _, origin := range c.CORSOrigins {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("cors origin %q must start with http:// or https://", origin)
		}
	}
	return nil
}

// Addr is the listen address of the HTTP server
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
