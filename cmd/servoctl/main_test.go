package main

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/servo-bridge/internal/lineio"
	"github.com/sweeney/servo-bridge/internal/protocol"
)

func TestBuildFrame(t *testing.T) {
	f, err := buildFrame("0, 45,90,135,180,90", "1,0,1")
	require.NoError(t, err)
	assert.Equal(t, protocol.Frame{0, 45, 90, 135, 180, 90, 1, 0, 1}, f)
}

func TestBuildFrameRejectsBadLists(t *testing.T) {
	_, err := buildFrame("90,90", "0,0,0")
	assert.ErrorContains(t, err, "angles")

	_, err = buildFrame("90,90,90,90,90,90", "0,x,0")
	assert.ErrorContains(t, err, "outputs")
}

func TestExchange(t *testing.T) {
	in := strings.NewReader("Arduino Ready\r\nS10,20,30,40,50,60,1,0,1,0,1,0E\r\n")
	var out bytes.Buffer

	snap, err := exchange(lineio.NewSource(in), &out, protocol.Frame{10, 20, 30, 40, 50, 60, 1, 0, 1}, time.Second, time.Second)
	require.NoError(t, err)

	assert.Equal(t, "S10,20,30,40,50,60,1,0,1E\r\n", out.String())
	assert.Equal(t, [protocol.ServoCount]int{10, 20, 30, 40, 50, 60}, snap.Angles)
	assert.Equal(t, [protocol.InputCount]bool{false, true, false}, snap.Inputs)
}

func TestExchangeWithoutBanner(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer

	go func() {
		time.Sleep(50 * time.Millisecond)
		pw.Write([]byte("S90,90,90,90,90,90,0,0,0,0,0,0E\n"))
	}()

	snap, err := exchange(lineio.NewSource(pr), &out, protocol.Frame{90, 90, 90, 90, 90, 90}, 20*time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 90, snap.Angles[0])
}

func TestExchangeErrorResponse(t *testing.T) {
	in := strings.NewReader("Arduino Ready\n" + protocol.ErrorResponse + "\n")

	_, err := exchange(lineio.NewSource(in), io.Discard, protocol.Frame{}, time.Second, time.Second)
	assert.True(t, errors.Is(err, protocol.ErrInvalidFrame), "got %v", err)
}

func TestExchangeEOF(t *testing.T) {
	in := strings.NewReader("Arduino Ready\n")

	_, err := exchange(lineio.NewSource(in), io.Discard, protocol.Frame{}, time.Second, time.Second)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestExchangeTimeout(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	_, err := exchange(lineio.NewSource(pr), io.Discard, protocol.Frame{}, 10*time.Millisecond, 30*time.Millisecond)
	assert.ErrorIs(t, err, errTimeout)
}

func TestPrintState(t *testing.T) {
	var out bytes.Buffer
	printState(&out, protocol.Snapshot{
		Angles:  [protocol.ServoCount]int{1, 2, 3, 4, 5, 6},
		Outputs: [protocol.OutputCount]bool{true, false, false},
		Inputs:  [protocol.InputCount]bool{false, false, true},
	})

	assert.Equal(t, "servos:  [1 2 3 4 5 6]\noutputs: ON OFF OFF\ninputs:  OFF OFF ON\n", out.String())
}
