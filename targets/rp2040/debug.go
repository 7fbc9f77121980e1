//go:build rp2040

package main

import (
	"machine"

	"hbridge/core"
)

// InitDebugUART routes core debug output to UART0 on GPIO0 (TX) / GPIO1 (RX)
// so USB stays reserved for the command link
func InitDebugUART() {
	uart := machine.UART0

	err := uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GPIO0,
		RX:       machine.GPIO1,
	})
	if err != nil {
		return
	}

	core.SetDebugWriter(func(s string) {
		uart.Write([]byte(s))
		uart.Write([]byte("\r\n"))
	})
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()
	core.DebugPrintln("=== hbridge debug UART, 115200 baud ===")
}
