package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/templex/internal/config"
	"github.com/conneroisu/templex/internal/lexer"
	"github.com/conneroisu/templex/internal/logging"
	"github.com/conneroisu/templex/internal/watcher"
)

var watchVerbose bool

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Re-lex templates as they change",
	Long: `Watch the configured paths and lex every changed template file.

Changes are debounced (watch.debounce) and reported once per file.
Deleted files are skipped.

Examples:
  templex watch
  templex watch -v --open "[[" --close "]]"`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	addLexerFlags(watchCmd)
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "List every change event")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	lx := newLexer(cfg, logger)
	handler := func(evs []watcher.ChangeEvent) error {
		if watchVerbose {
			for _, ev := range evs {
				fmt.Fprintf(out, "%s: %s\n", ev.Type, ev.Path)
			}
		}
		relex(cmd.Context(), lx, out, changedPaths(evs))
		return nil
	}

	fw, err := startWatcher(cmd.Context(), cfg, logger, handler)
	if err != nil {
		return err
	}
	defer fw.Stop()

	fmt.Fprintln(out, "Watching for changes... (Press Ctrl+C to stop)")
	<-cmd.Context().Done()
	return nil
}

// changedPaths returns the paths of events whose file still exists.
func changedPaths(evs []watcher.ChangeEvent) []string {
	var paths []string
	for _, ev := range evs {
		if ev.Type == watcher.EventTypeDeleted || ev.Type == watcher.EventTypeRenamed {
			continue
		}
		paths = append(paths, ev.Path)
	}
	return paths
}

// relex lexes paths and prints one line per file.
func relex(ctx context.Context, lx *lexer.Lexer, out io.Writer, paths []string) int {
	if len(paths) == 0 {
		return 0
	}
	results, _ := lx.LexFiles(ctx, paths)
	return reportResults(out, results, paths)
}

// startWatcher watches cfg's paths for template changes and calls handler
// with each debounced batch until ctx is done.
func startWatcher(ctx context.Context, cfg *config.Config, logger logging.Logger, handler watcher.ChangeHandler) (*watcher.FileWatcher, error) {
	fw, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	for _, filter := range templateFilters(cfg) {
		fw.AddFilter(filter)
	}
	fw.AddHandler(handler)

	for _, path := range cfg.Watch.Paths {
		if err := fw.AddRecursive(path, cfg.Watch.Ignore...); err != nil {
			fw.Stop()
			return nil, fmt.Errorf("failed to watch %s: %w", path, err)
		}
		logger.Debug(ctx, "watching", "path", path)
	}

	if err := fw.Start(ctx); err != nil {
		fw.Stop()
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}
	return fw, nil
}
