// Package cmd provides the templex command-line interface.
//
// Settings come from, highest priority first:
//  1. command-line flags (--open, --port, --log-level, ...)
//  2. TEMPLEX_<SECTION>_<KEY> environment variables
//  3. the configuration file: --config, TEMPLEX_CONFIG_FILE or .templex.yml
//  4. built-in defaults
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/templex/internal/config"
	"github.com/conneroisu/templex/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "templex",
	Short: "Lex mustache-style templates and serialize HTML",
	Long: `templex tokenizes mustache-style templates ({{expr}}, {{{safe}}},
{{#block}}, {{> partial}}, comments and raw blocks) and re-serializes HTML
event streams with correct void-element, raw-text and whitespace handling.

Quick Start:
  templex lex views/*.hbs          Print the tokens of each template
  templex render page.html         Normalize an HTML document
  templex watch                    Re-lex templates as they change
  templex serve                    Live preview in the browser
  templex config init              Write a .templex.yml`,
	SilenceUsage: true,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .templex.yml, can also use TEMPLEX_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
	configFlag(rootCmd.PersistentFlags(), "log-level", "log.level")
	configFlag(rootCmd.PersistentFlags(), "log-format", "log.format")
}

func initConfig() {
	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	case os.Getenv(config.EnvPrefix+"_CONFIG_FILE") != "":
		viper.SetConfigFile(os.Getenv(config.EnvPrefix + "_CONFIG_FILE"))
	default:
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(strings.TrimSuffix(config.FileName, ".yml"))
	}

	if err := config.BindEnv(viper.GetViper()); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Warning: failed to read config file:", err)
		}
	}
}

// loadConfig binds cmd's flags and returns the effective configuration
// with a logger built from it.
func loadConfig(cmd *cobra.Command) (*config.Config, logging.Logger, error) {
	if err := bindConfigFlags(cmd); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
