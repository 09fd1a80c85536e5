// Package config loads templex configuration using Viper, from a
// .templex.yml file, TEMPLEX_ environment variables and command-line flags.
//
// Values missing from every source fall back to defaults after unmarshal,
// and the result is validated before use.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/templex/internal/errors"
	"github.com/conneroisu/templex/internal/lexer"
	"github.com/conneroisu/templex/internal/logging"
)

// FileName is the default configuration file name.
const FileName = ".templex.yml"

// EnvPrefix prefixes environment overrides, e.g. TEMPLEX_SERVER_PORT.
const EnvPrefix = "TEMPLEX"

type Config struct {
	Lexer       LexerConfig      `mapstructure:"lexer" yaml:"lexer"`
	Serializer  SerializerConfig `mapstructure:"serializer" yaml:"serializer"`
	Watch       WatchConfig      `mapstructure:"watch" yaml:"watch"`
	Server      ServerConfig     `mapstructure:"server" yaml:"server"`
	Log         LogConfig        `mapstructure:"log" yaml:"log"`
	TargetFiles []string         `mapstructure:"-" yaml:"-"` // CLI arguments, not from config file
}

type LexerConfig struct {
	Open       string   `mapstructure:"open" yaml:"open"`
	Close      string   `mapstructure:"close" yaml:"close"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
}

type SerializerConfig struct {
	SkipWhitespace bool `mapstructure:"skip_whitespace" yaml:"skip_whitespace"`
}

type WatchConfig struct {
	Paths    []string      `mapstructure:"paths" yaml:"paths"`
	Ignore   []string      `mapstructure:"ignore" yaml:"ignore"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host" yaml:"host"`
	Port           int      `mapstructure:"port" yaml:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins,omitempty"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	syntax := lexer.DefaultSyntax()
	return &Config{
		Lexer: LexerConfig{
			Open:       syntax.Open,
			Close:      syntax.Close,
			Extensions: []string{".hbs", ".html", ".tmpl"},
		},
		Watch: WatchConfig{
			Paths:    []string{"."},
			Ignore:   []string{"node_modules", ".git"},
			Debounce: 300 * time.Millisecond,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// envKeys are the settings that can be overridden from the environment.
var envKeys = []string{
	"lexer.open", "lexer.close", "lexer.extensions",
	"serializer.skip_whitespace",
	"watch.paths", "watch.ignore", "watch.debounce",
	"server.host", "server.port", "server.allowed_origins",
	"log.level", "log.format",
}

// BindEnv makes v read every setting from TEMPLEX_<SECTION>_<KEY>.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return errors.WrapConfig(err, errors.CodeInvalidConfig, "binding "+key)
		}
	}
	return nil
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads, defaults and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfig(err, errors.CodeInvalidConfig, "decoding configuration")
	}

	// Slices set through flags or env arrive as strings
	if v.IsSet("lexer.extensions") && len(config.Lexer.Extensions) == 0 {
		config.Lexer.Extensions = v.GetStringSlice("lexer.extensions")
	}
	if v.IsSet("watch.paths") && len(config.Watch.Paths) == 0 {
		config.Watch.Paths = v.GetStringSlice("watch.paths")
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func applyDefaults(config *Config) {
	def := Default()

	if config.Lexer.Open == "" {
		config.Lexer.Open = def.Lexer.Open
	}
	if config.Lexer.Close == "" {
		config.Lexer.Close = def.Lexer.Close
	}
	if len(config.Lexer.Extensions) == 0 {
		config.Lexer.Extensions = def.Lexer.Extensions
	}

	if len(config.Watch.Paths) == 0 {
		config.Watch.Paths = def.Watch.Paths
	}
	if len(config.Watch.Ignore) == 0 {
		config.Watch.Ignore = def.Watch.Ignore
	}
	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = def.Watch.Debounce
	}

	if config.Server.Host == "" {
		config.Server.Host = def.Server.Host
	}
	if config.Server.Port == 0 {
		config.Server.Port = def.Server.Port
	}

	if config.Log.Level == "" {
		config.Log.Level = def.Log.Level
	}
	if config.Log.Format == "" {
		config.Log.Format = def.Log.Format
	}
}

// Syntax returns the lexer delimiters.
func (c *Config) Syntax() lexer.Syntax {
	return lexer.Syntax{Open: c.Lexer.Open, Close: c.Lexer.Close}
}

// Address returns host:port for the preview server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Logger builds a logger from the log section.
func (c *Config) Logger() (*logging.TemplexLogger, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.WrapConfig(err, errors.CodeInvalidConfig, "log.level")
	}
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Format = c.Log.Format
	return logging.NewLogger(cfg), nil
}
