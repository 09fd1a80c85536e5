package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// configKeyAnnotation marks a flag that overrides a configuration key.
const configKeyAnnotation = "templex_config_key"

// configFlag ties the flag name in fs to the configuration key.
func configFlag(fs *pflag.FlagSet, name, key string) {
	if err := fs.SetAnnotation(name, configKeyAnnotation, []string{key}); err != nil {
		panic(err)
	}
}

// bindConfigFlags binds the annotated flags of cmd to viper. Binding happens
// when a command runs so commands sharing a key do not steal each other's
// bindings.
func bindConfigFlags(cmd *cobra.Command) error {
	var err error
	bind := func(f *pflag.Flag) {
		keys := f.Annotations[configKeyAnnotation]
		if len(keys) != 1 || err != nil {
			return
		}
		err = viper.BindPFlag(keys[0], f)
	}
	cmd.Flags().VisitAll(bind)
	cmd.InheritedFlags().VisitAll(bind)
	return err
}

func addLexerFlags(cmd *cobra.Command) {
	cmd.Flags().String("open", "", "opening delimiter (default {{)")
	cmd.Flags().String("close", "", "closing delimiter (default }})")
	configFlag(cmd.Flags(), "open", "lexer.open")
	configFlag(cmd.Flags(), "close", "lexer.close")
}

func addSerializerFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("skip-whitespace", false, "drop whitespace-only text before the first child of each element")
	configFlag(cmd.Flags(), "skip-whitespace", "serializer.skip_whitespace")
}

func addServerFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("port", "p", 0, "port to serve on (default 8080)")
	cmd.Flags().String("host", "", "host to bind to (default localhost)")
	configFlag(cmd.Flags(), "port", "server.port")
	configFlag(cmd.Flags(), "host", "server.host")
}

// outputFormat is a pflag.Value restricted to a fixed set of formats.
type outputFormat struct {
	value   string
	allowed []string
}

func newOutputFormat(def string, allowed ...string) *outputFormat {
	return &outputFormat{value: def, allowed: allowed}
}

func (o *outputFormat) String() string { return o.value }

func (o *outputFormat) Set(s string) error {
	for _, a := range o.allowed {
		if strings.EqualFold(s, a) {
			o.value = a
			return nil
		}
	}
	return fmt.Errorf("must be one of: %s", strings.Join(o.allowed, ", "))
}

func (o *outputFormat) Type() string { return "format" }

func (o *outputFormat) usage(what string) string {
	return fmt.Sprintf("%s format (%s)", what, strings.Join(o.allowed, "|"))
}
