package device

import (
	"bufio"
	"context"
	"io"
	"strings"

	"go.tdeck.dev/pda/components/board/fake"
	"go.tdeck.dev/pda/components/input/trackball"
	"go.tdeck.dev/pda/logging"
)

const keyQueueSize = 32

const (
	keyInterrupt = 0x03
	keyEscape    = 0x1b
)

var wordSources = map[string]trackball.Source{
	"up":    trackball.Up,
	"down":  trackball.Down,
	"left":  trackball.Left,
	"right": trackball.Right,
	"click": trackball.Click,
}

// arrowSources maps the final byte of an ANSI cursor key sequence (ESC [ X).
var arrowSources = map[byte]trackball.Source{
	'A': trackball.Up,
	'B': trackball.Down,
	'C': trackball.Right,
	'D': trackball.Left,
}

// keyQueue is a KeySource fed by the headless reader.
type keyQueue chan byte

func (q keyQueue) Key() (byte, bool) {
	select {
	case k := <-q:
		return k, true
	default:
		return 0, false
	}
}

func (q keyQueue) push(k byte) bool {
	select {
	case q <- k:
		return true
	default:
		return false
	}
}

// headlessInput turns terminal input into trackball edges on a fake board and key presses.
type headlessInput struct {
	board      *fake.Board
	interrupts map[trackball.Source]string
	keys       keyQueue
	logger     logging.Logger
}

func (h *headlessInput) tick(ctx context.Context, src trackball.Source, nowNanos uint64) {
	if h.board == nil {
		h.logger.Debugw("no fake board to move", "source", src.String())
		return
	}
	if err := h.board.Tick(ctx, h.interrupts[src], nowNanos); err != nil {
		h.logger.Warnw("cannot tick interrupt", "source", src.String(), "error", err)
	}
}

func (h *headlessInput) typeKey(k byte) {
	if !h.keys.push(k) {
		h.logger.Debugw("key queue full, dropping key", "key", string(k))
	}
}

// handleWord ticks the interrupt named by a direction word and types any other single character.
func (h *headlessInput) handleWord(ctx context.Context, word string, nowNanos uint64) {
	if src, ok := wordSources[strings.ToLower(word)]; ok {
		h.tick(ctx, src, nowNanos)
		return
	}
	if len(word) == 1 {
		h.typeKey(word[0])
		return
	}
	h.logger.Infow("unknown input, use up/down/left/right/click or a single key", "input", word)
}

// read consumes whitespace separated words until r ends.
func (h *headlessInput) read(ctx context.Context, r io.Reader, now func() uint64) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		h.handleWord(ctx, scanner.Text(), now())
	}
	if err := scanner.Err(); err != nil {
		h.logger.Warnw("headless input stopped", "error", err)
	}
}

// readRaw consumes a terminal in raw mode byte by byte: arrow keys move, Enter clicks and every
// other printable byte is typed. Ctrl-C calls stop since raw mode does not raise SIGINT.
func (h *headlessInput) readRaw(ctx context.Context, r io.Reader, now func() uint64, stop func()) {
	br := bufio.NewReader(r)
	for ctx.Err() == nil {
		b, err := br.ReadByte()
		if err != nil {
			if err != io.EOF {
				h.logger.Warnw("headless input stopped", "error", err)
			}
			return
		}
		switch {
		case b == keyInterrupt:
			stop()
			return
		case b == keyEscape:
			h.readEscape(ctx, br, now())
		case b == '\r' || b == '\n':
			h.tick(ctx, trackball.Click, now())
		case b >= ' ' && b < 0x7f:
			h.typeKey(b)
		}
	}
}

// readEscape handles the rest of an escape sequence. Only cursor keys are understood; anything
// else is dropped.
func (h *headlessInput) readEscape(ctx context.Context, br *bufio.Reader, nowNanos uint64) {
	if next, err := br.ReadByte(); err != nil || next != '[' {
		return
	}
	final, err := br.ReadByte()
	if err != nil {
		return
	}
	if src, ok := arrowSources[final]; ok {
		h.tick(ctx, src, nowNanos)
	}
}
