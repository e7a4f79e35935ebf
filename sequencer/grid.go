package sequencer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go-sampler/debug"
)

// maxToken bounds the characters of one integer field.
const maxToken = 256

// ParseError describes a problem in trigger-grid text. Warnings are
// recoverable formatting issues; errors replace the offending value with 0.
type ParseError struct {
	Source  string
	Line    int
	Column  int
	Message string
	Warning bool
}

func (e *ParseError) Error() string {
	kind := "error"
	if e.Warning {
		kind = "warning"
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.Source, e.Line, e.Column, kind, e.Message)
}

// GridReader reads trigger-grid text one byte at a time, tracking the
// position for diagnostics. Read errors from the underlying stream are
// treated as end of input.
type GridReader struct {
	r      *bufio.Reader
	source string
	line   int
	col    int
	eof    bool

	problems []*ParseError
}

// NewGridReader wraps r; source names it in diagnostics.
func NewGridReader(r io.Reader, source string) *GridReader {
	return &GridReader{
		r:      bufio.NewReader(r),
		source: source,
		line:   1,
	}
}

// Problems returns every warning and error seen so far.
func (g *GridReader) Problems() []*ParseError {
	return g.problems
}

// HasErrors reports whether any problem was more than a warning.
func (g *GridReader) HasErrors() bool {
	for _, p := range g.problems {
		if !p.Warning {
			return true
		}
	}
	return false
}

// AtEOF reports whether the input is exhausted.
func (g *GridReader) AtEOF() bool {
	_, ok := g.peek()
	return !ok
}

func (g *GridReader) peek() (byte, bool) {
	if g.eof {
		return 0, false
	}
	b, err := g.r.Peek(1)
	if err != nil {
		g.stop(err)
		return 0, false
	}
	return b[0], true
}

func (g *GridReader) next() (byte, bool) {
	if g.eof {
		return 0, false
	}
	c, err := g.r.ReadByte()
	if err != nil {
		g.stop(err)
		return 0, false
	}
	if c == '\n' {
		g.line++
		g.col = 0
	} else {
		g.col++
	}
	return c, true
}

func (g *GridReader) stop(err error) {
	g.eof = true
	if err != io.EOF {
		debug.Log("grid", "%s: read failed at %d:%d: %v", g.source, g.line, g.col, err)
	}
}

// skipLine discards input up to and including the next newline.
func (g *GridReader) skipLine() {
	for {
		c, ok := g.next()
		if !ok || c == '\n' {
			return
		}
	}
}

func (g *GridReader) report(warning bool, format string, args ...any) {
	e := &ParseError{
		Source:  g.source,
		Line:    g.line,
		Column:  g.col,
		Message: fmt.Sprintf(format, args...),
		Warning: warning,
	}
	g.problems = append(g.problems, e)
	debug.Log("grid", "%s", e.Error())
}

func (g *GridReader) warnf(format string, args ...any)  { g.report(true, format, args...) }
func (g *GridReader) errorf(format string, args ...any) { g.report(false, format, args...) }

// readInt reads an integer field terminated by term and checks it against
// [lo, hi]. A newline or end of input before term is left unread and ok is
// false. Bad values are reported and resolve to 0.
func (g *GridReader) readInt(term byte, lo, hi int) (v int, ok bool) {
	var sb strings.Builder
	overflow := false
	for {
		c, more := g.peek()
		if !more || c == '\n' {
			g.errorf("missing %q", term)
			return 0, false
		}
		g.next()
		if c == term {
			break
		}
		if sb.Len() < maxToken {
			sb.WriteByte(c)
		} else {
			overflow = true
		}
	}

	tok := strings.TrimSpace(sb.String())
	switch {
	case overflow:
		g.errorf("value longer than %d characters", maxToken)
		return 0, true
	case tok == "":
		g.errorf("missing value before %q", term)
		return 0, true
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		g.errorf("bad value %q", tok)
		return 0, true
	}
	if n < lo || n > hi {
		g.errorf("value %d outside %d..%d", n, lo, hi)
		return 0, true
	}
	return n, true
}
