package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigWizard asks for the main settings and writes a .templex.yml.
type ConfigWizard struct {
	reader *bufio.Reader
	out    io.Writer
	config *Config
}

// NewConfigWizard creates a wizard reading answers from in and printing
// prompts to out.
func NewConfigWizard(in io.Reader, out io.Writer) *ConfigWizard {
	return &ConfigWizard{
		reader: bufio.NewReader(in),
		out:    out,
		config: Default(),
	}
}

// Run asks every question and returns the validated configuration. Empty
// answers keep the defaults.
func (w *ConfigWizard) Run() (*Config, error) {
	fmt.Fprintln(w.out, "templex configuration")
	fmt.Fprintln(w.out, "=====================")

	w.configureLexer()
	w.configureSerializer()
	if err := w.configureWatch(); err != nil {
		return nil, fmt.Errorf("watch configuration failed: %w", err)
	}
	if err := w.configureServer(); err != nil {
		return nil, fmt.Errorf("server configuration failed: %w", err)
	}
	w.config.Log.Level = w.askChoice("Log level", []string{"debug", "info", "warn", "error"}, w.config.Log.Level)

	if err := w.config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return w.config, nil
}

func (w *ConfigWizard) configureLexer() {
	w.config.Lexer.Open = w.askString("Opening delimiter", w.config.Lexer.Open)
	w.config.Lexer.Close = w.askString("Closing delimiter", w.config.Lexer.Close)

	exts := w.askString("Template extensions (comma separated)", strings.Join(w.config.Lexer.Extensions, ","))
	w.config.Lexer.Extensions = splitList(exts)
}

func (w *ConfigWizard) configureSerializer() {
	w.config.Serializer.SkipWhitespace = w.askBool("Drop leading whitespace of text", w.config.Serializer.SkipWhitespace)
}

func (w *ConfigWizard) configureWatch() error {
	paths := w.askString("Paths to watch (comma separated)", strings.Join(w.config.Watch.Paths, ","))
	w.config.Watch.Paths = splitList(paths)

	ms, err := w.askInt("Debounce in milliseconds", int(w.config.Watch.Debounce/time.Millisecond), 0, 60000)
	if err != nil {
		return err
	}
	w.config.Watch.Debounce = time.Duration(ms) * time.Millisecond
	return nil
}

func (w *ConfigWizard) configureServer() error {
	port, err := w.askInt("Preview server port", w.config.Server.Port, 1, 65535)
	if err != nil {
		return err
	}
	w.config.Server.Port = port
	w.config.Server.Host = w.askString("Preview server host", w.config.Server.Host)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Helper methods for user interaction

func (w *ConfigWizard) readLine() (string, bool) {
	input, err := w.reader.ReadString('\n')
	if err != nil && input == "" {
		return "", false
	}
	return strings.TrimSpace(input), true
}

func (w *ConfigWizard) askString(prompt, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprintf(w.out, "%s [%s]: ", prompt, defaultValue)
	} else {
		fmt.Fprintf(w.out, "%s: ", prompt)
	}

	input, ok := w.readLine()
	if !ok || input == "" {
		return defaultValue
	}
	return input
}

func (w *ConfigWizard) askInt(prompt string, defaultValue, min, max int) (int, error) {
	for {
		fmt.Fprintf(w.out, "%s [%d]: ", prompt, defaultValue)

		input, ok := w.readLine()
		if !ok || input == "" {
			return defaultValue, nil
		}

		value, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(w.out, "Invalid number. Please enter a number between %d and %d.\n", min, max)
			continue
		}
		if value < min || value > max {
			fmt.Fprintf(w.out, "Number out of range. Please enter a number between %d and %d.\n", min, max)
			continue
		}
		return value, nil
	}
}

func (w *ConfigWizard) askBool(prompt string, defaultValue bool) bool {
	defaultStr := "n"
	if defaultValue {
		defaultStr = "y"
	}
	fmt.Fprintf(w.out, "%s [%s]: ", prompt, defaultStr)

	input, ok := w.readLine()
	if !ok || input == "" {
		return defaultValue
	}
	input = strings.ToLower(input)
	return input == "y" || input == "yes" || input == "true"
}

func (w *ConfigWizard) askChoice(prompt string, choices []string, defaultValue string) string {
	for {
		fmt.Fprintf(w.out, "%s [%s] (options: %s): ", prompt, defaultValue, strings.Join(choices, ", "))

		input, ok := w.readLine()
		if !ok || input == "" {
			return defaultValue
		}
		for _, choice := range choices {
			if strings.EqualFold(input, choice) {
				return choice
			}
		}
		fmt.Fprintf(w.out, "Invalid choice. Please select from: %s\n", strings.Join(choices, ", "))
	}
}

// WriteConfigFile writes the configuration as YAML. An existing file is
// only replaced when overwrite is set.
func WriteConfigFile(config *Config, filename string, overwrite bool) error {
	if _, err := os.Stat(filename); err == nil && !overwrite {
		return fmt.Errorf("configuration file %s already exists", filename)
	}

	content, err := Marshal(config)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}

// Marshal renders config as a commented YAML document.
func Marshal(config *Config) ([]byte, error) {
	body, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	return append([]byte("# templex configuration file\n"), body...), nil
}
