package main

import (
	"bytes"
	"io"
	"os"

	"github.com/nathan-fiscaletti/consolesize-go"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// terminal is an interactive headless session: stdin in raw mode so single keys arrive without
// Enter, and stdout translated to CRLF line endings since raw mode turns off output processing.
type terminal struct {
	fd    int
	state *term.State
	out   io.Writer
	width int
}

// openTerminal puts in into raw mode. It returns nil when in is not a terminal.
func openTerminal(in, out *os.File) (*terminal, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, errors.Wrap(err, "switching terminal to raw mode")
	}
	cols, _ := consolesize.GetConsoleSize()
	return &terminal{fd: fd, state: state, out: crlfWriter{out}, width: cols}, nil
}

// Close restores the terminal mode found by openTerminal.
func (t *terminal) Close() error {
	return term.Restore(t.fd, t.state)
}

type crlfWriter struct {
	w io.Writer
}

func (cw crlfWriter) Write(p []byte) (int, error) {
	if _, err := cw.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
