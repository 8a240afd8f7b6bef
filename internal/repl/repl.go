// Package repl is the line-oriented interactive mode used when stdin is not
// a terminal or the full-screen interface is disabled.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"semsearch/internal/domain"
	"semsearch/internal/render"
)

// MaxLineBytes bounds a single query line. Longer lines are discarded and
// reported without ending the session.
const MaxLineBytes = 1 << 20

var errLineTooLong = fmt.Errorf("query longer than %d bytes ignored", MaxLineBytes)

type inputLine struct {
	text string
	err  error
}

// Querier answers one query.
type Querier interface {
	Query(ctx context.Context, text string, topK int) ([]domain.RankedResult, error)
}

// IsQuit reports whether line asks to end the session.
func IsQuit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

// Run reads queries from in until EOF, a quit command or ctx cancellation.
// Query errors are printed and the session continues; cancellation ends it
// without error.
func Run(ctx context.Context, q Querier, in io.Reader, out io.Writer, topK int) error {
	p := render.NewPrinter(out)
	p.Line("Interactive Query Mode")
	p.Line("Type 'quit' or 'exit' to stop")

	lines := make(chan inputLine)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		r := bufio.NewReader(in)
		for {
			text, err := readLine(r, MaxLineBytes)
			if err != nil && !errors.Is(err, errLineTooLong) {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
			select {
			case lines <- inputLine{text: text, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		p.Line("\nEnter your question:")
		var next inputLine
		var ok bool
		select {
		case <-ctx.Done():
			p.Line("Goodbye!")
			return nil
		case next, ok = <-lines:
		}
		if !ok {
			p.Line("Goodbye!")
			select {
			case err := <-readErr:
				return err
			default:
				return nil
			}
		}
		if next.err != nil {
			p.Error(next.err)
			continue
		}
		line := next.text
		if IsQuit(line) {
			p.Line("Goodbye!")
			return nil
		}
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		results, err := q.Query(ctx, text, topK)
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				p.Line("Goodbye!")
				return nil
			}
			p.Error(err)
			continue
		}
		p.Results(text, results)
	}
}

// readLine returns the next line without its terminator. A line longer than
// limit is consumed up to its newline and reported as errLineTooLong.
func readLine(r *bufio.Reader, limit int) (string, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			buf = append(buf, chunk...)
			// room for a CRLF terminator
			if len(buf) > limit+2 {
				tooLong, buf = true, nil
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if err != nil && !tooLong && len(buf) == 0 {
			return "", io.EOF
		}
		line := strings.TrimRight(string(buf), "\r\n")
		if tooLong || len(line) > limit {
			return "", errLineTooLong
		}
		return line, nil
	}
}
