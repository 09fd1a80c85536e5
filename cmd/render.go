package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/templex/internal/events"
)

var renderEvents = newOutputFormat("", "", "json", "yaml", "msgpack")

var renderCmd = &cobra.Command{
	Use:   "render [file.html]",
	Short: "Re-serialize an HTML document",
	Long: `Read an HTML document, turn it into a structural event stream and
serialize it again. Void elements lose their end tags, script and style
content is written verbatim, text and attribute values are escaped, and
elements left open are closed.

With no file, or "-", the document is read from standard input.

Examples:
  templex render page.html
  templex render --skip-whitespace < page.html
  templex render --events json page.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	addSerializerFlags(renderCmd)
	renderCmd.Flags().Var(renderEvents, "events", "print the event stream instead, in this format (json|yaml|msgpack)")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	evs, err := events.FromHTML(in)
	if err != nil {
		return err
	}
	if format := renderEvents.String(); format != "" {
		return encode(cmd.OutOrStdout(), format, evs)
	}

	doc := &events.Document{
		Events:         evs,
		SkipWhitespace: cfg.Serializer.SkipWhitespace,
		Logger:         logger,
	}
	return doc.Render(cmd.Context(), cmd.OutOrStdout())
}
