//go:build property

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestConfigurationProperties tests configuration validation properties
func TestConfigurationProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("ports in range validate", prop.ForAll(
		func(port int) bool {
			cfg := Default()
			cfg.Server.Port = port
			return cfg.Validate() == nil
		},
		gen.IntRange(1, 65535),
	))

	properties.Property("ports out of range never validate", prop.ForAll(
		func(port int) bool {
			cfg := Default()
			cfg.Server.Port = port
			return cfg.Validate() != nil
		},
		gen.OneGenOf(gen.IntRange(-100000, -1), gen.IntRange(65536, 1000000)),
	))

	properties.Property("delimiters validate exactly when the lexer accepts them", prop.ForAll(
		func(open, close string) bool {
			cfg := Default()
			cfg.Lexer.Open, cfg.Lexer.Close = open, close
			lexerOK := cfg.Syntax().Validate() == nil
			return lexerOK == (cfg.Validate() == nil)
		},
		gen.OneConstOf("{{", "<%", "", "{ {", "[["),
		gen.OneConstOf("}}", "%>", "", "<%", "]]"),
	))

	properties.Property("relative paths without traversal validate", prop.ForAll(
		func(parts []string) bool {
			cfg := Default()
			cfg.Watch.Paths = []string{"./" + strings.Join(append(parts, "x"), "/")}
			return cfg.Validate() == nil
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("non-negative debounce validates", prop.ForAll(
		func(ms int) bool {
			cfg := Default()
			cfg.Watch.Debounce = time.Duration(ms) * time.Millisecond
			return cfg.Validate() == nil
		},
		gen.IntRange(0, 600000),
	))

	properties.TestingRun(t)
}
