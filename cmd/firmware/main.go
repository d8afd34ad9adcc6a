//go:build rp2040

// Command firmware runs the servo bridge directly on an RP2040 board,
// answering command frames on UART0.
package main

import (
	"context"
	"fmt"
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"github.com/sweeney/servo-bridge/internal/bank"
	"github.com/sweeney/servo-bridge/internal/linebuf"
	"github.com/sweeney/servo-bridge/internal/logic"
	"github.com/sweeney/servo-bridge/internal/protocol"
)

const (
	baudRate          = 9600
	heartbeatInterval = time.Second
	pollInterval      = 10 * time.Millisecond
)

// Pico pin map: servos on GP2..GP7, outputs GP8..GP10, inputs GP11..GP13,
// indicator on the onboard LED.
var table = bank.Table{
	Servos:    [bank.NumServos]int{2, 3, 4, 5, 6, 7},
	Outputs:   [bank.NumOutputs]int{8, 9, 10},
	Inputs:    [bank.NumInputs]int{11, 12, 13},
	Indicator: int(machine.LED),
}

func main() {
	uart := uartx.UART0
	if err := uart.Configure(uartx.UARTConfig{
		BaudRate: baudRate,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	}); err != nil {
		halt(uart, fmt.Errorf("uart0: %w", err))
	}

	bnk, err := bank.NewPicoBank(table)
	if err != nil {
		halt(uart, err)
	}
	bank.Initialize(bnk)
	writeLine(uart, protocol.Banner)

	ctrl := protocol.NewController(bnk)
	hb := logic.NewHeartbeat(heartbeatInterval, time.Now())

	lines := linebuf.New(linebuf.DefaultMaxLen)
	buf := make([]byte, 64)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), pollInterval)
		n, _ := uart.RecvSomeContext(ctx, buf)
		cancel()
		lines.Feed(buf[:n])

		// At most one line per pass; the rest waits for the next one.
		if line, ok := lines.Next(); ok {
			writeLine(uart, ctrl.Handle(line).Response)
		}

		if hb.Due(time.Now()) {
			bnk.SetIndicator(hb.State())
		}
	}
}

// halt reports err on the UART once a second, forever.
func halt(u *uartx.UART, err error) {
	for {
		writeLine(u, "ERR:"+err.Error())
		time.Sleep(time.Second)
	}
}

func writeLine(u *uartx.UART, s string) {
	u.Write([]byte(s + "\r\n"))
}
