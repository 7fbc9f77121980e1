//go:build rp2040

package main

import (
	"machine"
)

// InitUSB initializes USB serial communication
// On RP2040, machine.Serial is USB CDC, not UART
func InitUSB() error {
	return machine.Serial.Configure(machine.UARTConfig{})
}

// USBRead copies whatever bytes are buffered into buf
func USBRead(buf []byte) int {
	n := 0
	for n < len(buf) && machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			break
		}
		buf[n] = b
		n++
	}
	return n
}
