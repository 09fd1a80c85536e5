package lexer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/templex/internal/errors"
	"github.com/conneroisu/templex/internal/source"
)

// Result is the outcome of lexing one file.
type Result struct {
	File   *source.File
	Tokens []Token
	Err    error
}

// LexFiles loads and lexes paths concurrently. Each file is an independent
// parse attempt; a failure in one file does not stop the others. Results are
// in input order and the returned error combines every per-file error. Only
// cancellation of ctx stops the batch early.
func (lx *Lexer) LexFiles(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))
	collector := errors.NewErrorCollector()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := source.Load(path)
			if err != nil {
				results[i] = Result{Err: err}
				collector.Add(err)
				return nil
			}
			tokens, err := lx.Lex(f)
			results[i] = Result{File: f, Tokens: tokens, Err: err}
			collector.Add(err)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, collector.Err()
}
