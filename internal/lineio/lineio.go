// Package lineio delivers newline-terminated text lines from a serial port
// (or any io.Reader) to a single-threaded poll loop.
package lineio

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goburrow/serial"
	"github.com/golang/glog"

	"github.com/sweeney/servo-bridge/internal/linebuf"
)

// DefaultBaud is the line rate the protocol was defined at.
const DefaultBaud = 9600

// maxLineLen bounds a line; longer lines are discarded whole.
const maxLineLen = linebuf.DefaultMaxLen

// SerialConfig selects and configures a serial device.
type SerialConfig struct {
	Port        string
	Baud        int
	ReadTimeout time.Duration
}

// Port is an open serial device.
type Port = io.ReadWriteCloser

// OpenSerial opens cfg.Port as 8N1 at cfg.Baud.
func OpenSerial(cfg SerialConfig) (Port, error) {
	baud := cfg.Baud
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := serial.Open(&serial.Config{
		Address:  cfg.Port,
		BaudRate: baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", cfg.Port, err)
	}
	return p, nil
}

// Source reads lines from r in a background goroutine and hands them to the
// poll loop one at a time. The reader does not read past a pending line, so
// a line that arrives while the previous one is processed waits in the OS or
// driver buffer.
type Source struct {
	lines chan string
	done  chan struct{}
	err   error
}

// NewSource starts reading from r.
func NewSource(r io.Reader) *Source {
	s := &Source{
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go s.run(r)
	return s
}

func (s *Source) run(r io.Reader) {
	defer close(s.done)

	sp := linebuf.New(maxLineLen)
	buf := make([]byte, 64)
	dropped := 0
	for {
		n, err := r.Read(buf)
		sp.Feed(buf[:n])
		for {
			line, ok := sp.Next()
			if !ok {
				break
			}
			s.lines <- line
		}
		if d := sp.Dropped(); d > dropped {
			glog.Warningf("lineio: discarded %d line(s) longer than %d bytes", d-dropped, maxLineLen)
			dropped = d
		}

		if err != nil {
			if errors.Is(err, serial.ErrTimeout) {
				continue
			}
			if !errors.Is(err, io.EOF) {
				s.err = err
				return
			}
			// Unterminated last line
			if line, ok := sp.Rest(); ok {
				s.lines <- line
			}
			return
		}
	}
}

// Poll returns the next line if one is ready. It never blocks.
func (s *Source) Poll() (string, bool) {
	select {
	case l := <-s.lines:
		return l, true
	default:
		return "", false
	}
}

// Done is closed when the reader stops (EOF or read error).
func (s *Source) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that stopped the reader, or nil on EOF.
// Only valid after Done is closed.
func (s *Source) Err() error {
	return s.err
}

// WriteLine writes s followed by CRLF.
func WriteLine(w io.Writer, s string) error {
	_, err := io.WriteString(w, s+"\r\n")
	return err
}
