// Command servoctl sends one command frame to a servo bridge and prints the
// state it answers with.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/sweeney/servo-bridge/internal/lineio"
	"github.com/sweeney/servo-bridge/internal/protocol"
)

func main() {
	port := flag.String("port", "/dev/ttyACM0", "Serial device of the bridge")
	baud := flag.Int("baud", lineio.DefaultBaud, "Baud rate")
	angles := flag.String("angles", "90,90,90,90,90,90", "Comma-separated servo angles")
	outputs := flag.String("outputs", "0,0,0", "Comma-separated output states (0/1)")
	bannerWait := flag.Duration("banner-wait", 3*time.Second, "How long to wait for the ready banner")
	timeout := flag.Duration("timeout", 2*time.Second, "How long to wait for the response")

	flag.Parse()
	defer glog.Flush()

	frame, err := buildFrame(*angles, *outputs)
	if err != nil {
		glog.Exitf("fatal: %v", err)
	}

	p, err := lineio.OpenSerial(lineio.SerialConfig{Port: *port, Baud: *baud, ReadTimeout: 50 * time.Millisecond})
	if err != nil {
		glog.Exitf("fatal: %v", err)
	}
	defer p.Close()

	snap, err := exchange(lineio.NewSource(p), p, frame, *bannerWait, *timeout)
	if err != nil {
		glog.Exitf("fatal: %v", err)
	}
	printState(os.Stdout, snap)
}

var errTimeout = errors.New("timed out waiting for response")

// buildFrame assembles a command frame from the -angles and -outputs values.
func buildFrame(angles, outputs string) (protocol.Frame, error) {
	var f protocol.Frame
	a, err := parseList(angles, protocol.ServoCount)
	if err != nil {
		return f, fmt.Errorf("angles: %w", err)
	}
	o, err := parseList(outputs, protocol.OutputCount)
	if err != nil {
		return f, fmt.Errorf("outputs: %w", err)
	}
	copy(f[:protocol.ServoCount], a)
	copy(f[protocol.ServoCount:], o)
	return f, nil
}

func parseList(s string, want int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("need %d values, got %d", want, len(parts))
	}
	out := make([]int, want)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

type lineSource interface {
	Poll() (string, bool)
	Done() <-chan struct{}
}

// waitLine polls src until accept returns true for a line or d elapses.
func waitLine(src lineSource, d time.Duration, accept func(string) bool) (string, error) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if line, ok := src.Poll(); ok {
			glog.V(2).Infof("<- %q", line)
			if accept(line) {
				return line, nil
			}
			continue
		}
		select {
		case <-src.Done():
			return "", io.ErrUnexpectedEOF
		case <-time.After(5 * time.Millisecond):
		}
	}
	return "", errTimeout
}

// exchange waits for the ready banner (opening the port usually resets the
// board), sends f and returns the parsed response.
func exchange(src lineSource, w io.Writer, f protocol.Frame, bannerWait, timeout time.Duration) (protocol.Snapshot, error) {
	if _, err := waitLine(src, bannerWait, func(l string) bool { return l == protocol.Banner }); err != nil {
		glog.Warningf("no ready banner (%v), sending anyway", err)
	}

	cmd := protocol.FormatCommand(f)
	glog.V(2).Infof("-> %q", cmd)
	if err := lineio.WriteLine(w, cmd); err != nil {
		return protocol.Snapshot{}, fmt.Errorf("write command: %w", err)
	}

	line, err := waitLine(src, timeout, func(l string) bool {
		return l == protocol.ErrorResponse || strings.HasPrefix(l, string(protocol.StartMarker))
	})
	if err != nil {
		return protocol.Snapshot{}, err
	}
	snap, err := protocol.ParseState(line)
	if err != nil {
		return protocol.Snapshot{}, fmt.Errorf("response %q: %w", line, err)
	}
	return snap, nil
}

func printState(w io.Writer, s protocol.Snapshot) {
	fmt.Fprintf(w, "servos:  %v\n", s.Angles)
	fmt.Fprintf(w, "outputs: %s\n", onOff(s.Outputs[:]))
	fmt.Fprintf(w, "inputs:  %s\n", onOff(s.Inputs[:]))
}

func onOff(bs []bool) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = "OFF"
		if b {
			parts[i] = "ON"
		}
	}
	return strings.Join(parts, " ")
}
