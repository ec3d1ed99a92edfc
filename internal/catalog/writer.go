package catalog

import (
	"bufio"
	"fmt"
	"io"
	"runtime"
	"strings"
	"unicode/utf8"
)

// Declaration is the first line of every rendered catalog.
const Declaration = `<?xml version="1.0" encoding="utf-8"?>`

// LineBreak is the platform line terminator used by rendered catalogs.
var LineBreak = platformLineBreak()

func platformLineBreak() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

type writerOptions struct {
	lineBreak string
}

type WriterOption func(*writerOptions)

// WithLineBreak overrides the platform line terminator.
func WithLineBreak(lineBreak string) WriterOption {
	return func(o *writerOptions) {
		o.lineBreak = lineBreak
	}
}

// DefaultWriter renders the flat terms > term layout.
type DefaultWriter struct {
	lineBreak string
}

// NewWriter creates a new catalog writer
func NewWriter(opts ...WriterOption) Writer {
	options := writerOptions{lineBreak: LineBreak}
	for _, opt := range opts {
		opt(&options)
	}
	return &DefaultWriter{lineBreak: options.lineBreak}
}

// Write renders terms to w. Only &, <, > and carriage returns are escaped;
// quotes and newlines are written as they are.
func (w *DefaultWriter) Write(out io.Writer, terms []Term) error {
	writer := bufio.NewWriter(out)
	nl := w.lineBreak

	fmt.Fprintf(writer, "%s%s", Declaration, nl)
	if len(terms) == 0 {
		fmt.Fprintf(writer, "<%s></%s>%s", RootElement, RootElement, nl)
		return writer.Flush()
	}

	fmt.Fprintf(writer, "<%s>%s", RootElement, nl)
	for _, term := range terms {
		fmt.Fprintf(writer, "  <%s>%s", TermElement, nl)
		writeValue(writer, NameElement, term.Name, nl)
		writeValue(writer, EnglishValueElement, term.EnglishValue, nl)
		writeValue(writer, FrenchValueElement, term.FrenchValue, nl)
		fmt.Fprintf(writer, "  </%s>%s", TermElement, nl)
	}
	fmt.Fprintf(writer, "</%s>%s", RootElement, nl)

	return writer.Flush()
}

func writeValue(writer *bufio.Writer, tag, value, nl string) {
	fmt.Fprintf(writer, "    <%s>%s</%s>%s", tag, escapeText(value), tag, nl)
}

// escapeText escapes character data. Runes XML cannot carry become U+FFFD.
func escapeText(value string) string {
	var sb strings.Builder
	sb.Grow(len(value))
	for _, r := range value {
		switch {
		case r == '&':
			sb.WriteString("&amp;")
		case r == '<':
			sb.WriteString("&lt;")
		case r == '>':
			sb.WriteString("&gt;")
		case r == '\r':
			// parsers turn a literal CR into LF
			sb.WriteString("&#xD;")
		case !isXMLChar(r):
			sb.WriteRune(utf8.RuneError)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func isXMLChar(r rune) bool {
	return r == '\t' || r == '\n' || r == '\r' ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

// Render returns the document text for terms using the platform line break.
func Render(terms []Term, opts ...WriterOption) string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = NewWriter(opts...).Write(&sb, terms)
	return sb.String()
}
