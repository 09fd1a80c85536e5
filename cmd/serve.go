package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/templex/internal/config"
	"github.com/conneroisu/templex/internal/events"
	"github.com/conneroisu/templex/internal/lexer"
	"github.com/conneroisu/templex/internal/logging"
	"github.com/conneroisu/templex/internal/preview"
	"github.com/conneroisu/templex/internal/source"
	"github.com/conneroisu/templex/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve a live preview of the templates",
	Long: `Serve every template under the watch paths at http://host:port/ and
reload the browser when one changes.

Each template is lexed first; scan errors are shown in the terminal and the
browser console. The template source is then read as HTML and re-serialized.
/targets lists every served file, /?target=<path> selects one.

Examples:
  templex serve
  templex serve -p 3000 --skip-whitespace`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addLexerFlags(serveCmd)
	addSerializerFlags(serveCmd)
	addServerFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	srv := preview.NewServer(cfg, logger)
	p := &publisher{cfg: cfg, srv: srv, lx: newLexer(cfg, logger), logger: logger, out: out}

	paths, err := discoverTemplates(cfg)
	if err != nil {
		return err
	}
	for _, path := range paths {
		p.publish(ctx, path)
	}

	fw, err := startWatcher(ctx, cfg, logger, func(evs []watcher.ChangeEvent) error {
		for _, path := range changedPaths(evs) {
			p.publish(ctx, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer fw.Stop()

	fmt.Fprintf(out, "Serving %d templates at http://%s/ (Press Ctrl+C to stop)\n", len(paths), cfg.Address())
	return srv.ListenAndServe(ctx)
}

// publisher lexes a template and pushes its serialization to the preview.
type publisher struct {
	cfg    *config.Config
	srv    *preview.Server
	lx     *lexer.Lexer
	logger logging.Logger
	out    io.Writer
}

func (p *publisher) publish(ctx context.Context, path string) {
	f, err := source.Load(path)
	if err != nil {
		p.fail(path, f, err)
		return
	}
	tokens, err := p.lx.Lex(f)
	if err != nil {
		p.fail(path, f, err)
		return
	}

	evs, err := events.FromHTML(strings.NewReader(f.Content))
	if err != nil {
		p.fail(path, f, err)
		return
	}
	doc := &events.Document{
		Events:         evs,
		SkipWhitespace: p.cfg.Serializer.SkipWhitespace,
		Logger:         p.logger,
	}
	if err := p.srv.Publish(ctx, path, doc); err != nil {
		reportError(p.out, f, err)
		return
	}

	okLabel.Fprint(p.out, "ok ")
	fmt.Fprintf(p.out, "%s (%d tokens)\n", path, len(tokens))
}

func (p *publisher) fail(path string, f *source.File, err error) {
	reportError(p.out, f, err)
	p.srv.PublishError(path, err)
}
