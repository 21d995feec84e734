// serial_console.go - Line-oriented diagnostic byte stream. Every
// subsystem formats its own messages and writes through here; there is
// no structured logging framework, matching the teacher's direct-write
// diagnostics (debug_monitor.go, runtime_status.go). Grounded on
// terminal_host.go / terminal_output.go.

package main

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"golang.org/x/term"
)

// SerialConsole is the single diagnostic sink described in spec.md §6:
// "byte-stream for diagnostics and pre-STI safety logging. Line-oriented;
// newline-flushed."
type SerialConsole struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	raw    *term.State
	fd     int
}

// NewSerialConsole wraps w as the serial sink. If w is backed by a real
// terminal fd (a pty-backed serial port under emulation), raw mode is
// entered so the host shell's line discipline does not mangle the
// kernel's own newline-flushed framing, mirroring terminal_host.go.
func NewSerialConsole(w io.Writer, fd int, enterRaw bool) (*SerialConsole, error) {
	sc := &SerialConsole{w: bufio.NewWriter(w), fd: fd}
	if closer, ok := w.(io.Closer); ok {
		sc.closer = closer
	}
	if enterRaw && term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("serial console: enter raw mode: %w", err)
		}
		sc.raw = state
	}
	return sc, nil
}

// Writeln writes line followed by a newline and flushes immediately,
// since the harness and fault sentinel must not lose a diagnostic line
// to a buffered write that never gets flushed before a halt.
func (sc *SerialConsole) Writeln(line string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.w.WriteString(line)
	sc.w.WriteByte('\n')
	sc.w.Flush()
}

// Close restores the host terminal's prior mode (if raw mode was
// entered) and closes the underlying writer if it supports it.
func (sc *SerialConsole) Close() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.w.Flush()
	if sc.raw != nil {
		_ = term.Restore(sc.fd, sc.raw)
	}
	if sc.closer != nil {
		return sc.closer.Close()
	}
	return nil
}
