package serializer

import (
	"io"
	"strings"
)

const nbsp = "\u00a0"

// writeEscaped writes s with the markup escapes applied. In attribute mode
// double quotes are escaped and angle brackets pass through; in text mode it
// is the other way around. Unescaped runs are written in one call.
func writeEscaped(w io.Writer, s string, attrMode bool) error {
	last := 0
	for i := 0; i < len(s); i++ {
		var esc string
		switch s[i] {
		case '&':
			esc = "&amp;"
		case '"':
			if attrMode {
				esc = "&quot;"
			}
		case '<':
			if !attrMode {
				esc = "&lt;"
			}
		case '>':
			if !attrMode {
				esc = "&gt;"
			}
		case nbsp[0]:
			if strings.HasPrefix(s[i:], nbsp) {
				esc = "&nbsp;"
			}
		}
		if esc == "" {
			continue
		}

		if err := writeRun(w, s[last:i]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, esc); err != nil {
			return err
		}
		if esc == "&nbsp;" {
			i += len(nbsp) - 1
		}
		last = i + 1
	}
	return writeRun(w, s[last:])
}

func writeRun(w io.Writer, s string) error {
	if s == "" {
		return nil
	}
	_, err := io.WriteString(w, s)
	return err
}

// Escape returns s escaped for text content.
func Escape(s string) string {
	var b strings.Builder
	_ = writeEscaped(&b, s, false)
	return b.String()
}

// EscapeAttr returns s escaped for a double-quoted attribute value.
func EscapeAttr(s string) string {
	var b strings.Builder
	_ = writeEscaped(&b, s, true)
	return b.String()
}
