package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/conneroisu/templex/internal/config"
	"github.com/conneroisu/templex/internal/lexer"
	"github.com/conneroisu/templex/internal/logging"
	"github.com/conneroisu/templex/internal/watcher"
)

var lexFormat = newOutputFormat("table", "table", "json", "yaml", "msgpack")

var lexCmd = &cobra.Command{
	Use:   "lex [files...]",
	Short: "Tokenize template files",
	Long: `Tokenize template files and print their tokens.

Without arguments every file under the configured watch paths with a
template extension is lexed. Files are lexed concurrently; a scan error in
one file does not stop the others and is printed with the offending line.

Examples:
  templex lex views/page.hbs
  templex lex -o json views/*.hbs
  templex lex --open "[[" --close "]]" page.tmpl`,
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	addLexerFlags(lexCmd)
	lexCmd.Flags().VarP(lexFormat, "output", "o", lexFormat.usage("Output"))
}

func runLex(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		if paths, err = discoverTemplates(cfg); err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no template files found in %v", cfg.Watch.Paths)
	}

	results, err := lexPaths(cmd.Context(), cfg, logger, paths)
	if err != nil && cmd.Context().Err() != nil {
		return err
	}

	files := toFileTokens(paths, results)
	if lexFormat.String() == "table" {
		writeTokenTable(cmd.OutOrStdout(), files)
	} else if err := encode(cmd.OutOrStdout(), lexFormat.String(), files); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			reportError(cmd.ErrOrStderr(), r.File, r.Err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to lex", failed, len(results))
	}
	return nil
}

func newLexer(cfg *config.Config, logger logging.Logger) *lexer.Lexer {
	return lexer.New(lexer.WithSyntax(cfg.Syntax()), lexer.WithLogger(logger))
}

func lexPaths(ctx context.Context, cfg *config.Config, logger logging.Logger, paths []string) ([]lexer.Result, error) {
	return newLexer(cfg, logger).LexFiles(ctx, paths)
}

// templateFilters selects template files outside ignored directories.
func templateFilters(cfg *config.Config) []watcher.FileFilter {
	return []watcher.FileFilter{
		watcher.ExtensionFilter(cfg.Lexer.Extensions...),
		watcher.IgnoreFilter(cfg.Watch.Ignore...),
		watcher.NoBackupFilter,
	}
}

// discoverTemplates walks the watch paths and returns the template files,
// sorted.
func discoverTemplates(cfg *config.Config) ([]string, error) {
	filters := templateFilters(cfg)
	seen := make(map[string]bool)
	var paths []string

	for _, root := range cfg.Watch.Paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && !watcher.IgnoreFilter(cfg.Watch.Ignore...)(path) {
					return filepath.SkipDir
				}
				return nil
			}
			for _, accept := range filters {
				if !accept(path) {
					return nil
				}
			}
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}
	}

	sort.Strings(paths)
	return paths, nil
}
