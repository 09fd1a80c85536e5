package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/templex/internal/errors"
	"github.com/conneroisu/templex/internal/lexer"
	"github.com/conneroisu/templex/internal/source"
)

const valueWidth = 48

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	okLabel      = color.New(color.FgGreen)
	snippetColor = color.New(color.Faint)
	headerColor  = color.New(color.Bold)
)

// fileTokens is the encoded form of one lexed file.
type fileTokens struct {
	Path   string        `json:"path" yaml:"path" msgpack:"path"`
	Tokens []lexer.Token `json:"tokens" yaml:"tokens" msgpack:"tokens"`
	Error  string        `json:"error,omitempty" yaml:"error,omitempty" msgpack:"error,omitempty"`
}

func toFileTokens(paths []string, results []lexer.Result) []fileTokens {
	files := make([]fileTokens, len(results))
	for i, r := range results {
		files[i] = fileTokens{Path: paths[i], Tokens: r.Tokens}
		if files[i].Tokens == nil {
			files[i].Tokens = []lexer.Token{}
		}
		if r.Err != nil {
			files[i].Error = errors.FormatError(r.Err)
		}
	}
	return files
}

// encode writes v as json, yaml or msgpack.
func encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "msgpack":
		return msgpack.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// writeTokenTable prints one aligned row per token. Values are quoted and
// cut to a fixed display width.
func writeTokenTable(w io.Writer, files []fileTokens) {
	for i, f := range files {
		if i > 0 {
			fmt.Fprintln(w)
		}
		headerColor.Fprintln(w, f.Path)
		if len(f.Tokens) == 0 {
			fmt.Fprintln(w, "  (no tokens)")
			continue
		}
		for _, tok := range f.Tokens {
			value := runewidth.Truncate(fmt.Sprintf("%q", tok.Value), valueWidth, "...")
			row := []string{
				runewidth.FillRight(tok.Pos.String(), 8),
				runewidth.FillRight(tok.Kind.String(), 12),
				value,
			}
			if tok.Name != "" {
				row = append(row, "name="+tok.Name)
			}
			if tok.Args != "" {
				row = append(row, fmt.Sprintf("args=%q", tok.Args))
			}
			fmt.Fprintln(w, "  "+strings.TrimRight(strings.Join(row, " "), " "))
		}
	}
}

// reportError prints err with the offending source line when it is a
// located scan error in f.
func reportError(w io.Writer, f *source.File, err error) {
	errorLabel.Fprint(w, "error: ")
	fmt.Fprintln(w, errors.FormatError(err))

	te, ok := errors.AsTemplexError(err)
	if !ok || f == nil || te.Type != errors.ErrorTypeScan {
		return
	}
	snippetColor.Fprintln(w, f.Snippet(te.Offset))
}

// reportResults prints one line per file and returns how many failed.
func reportResults(w io.Writer, results []lexer.Result, paths []string) int {
	failed := 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			reportError(w, r.File, r.Err)
			continue
		}
		okLabel.Fprint(w, "ok ")
		fmt.Fprintf(w, "%s (%d tokens)\n", paths[i], len(r.Tokens))
	}
	return failed
}
