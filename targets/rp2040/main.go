//go:build rp2040

package main

import (
	"machine"
	"time"

	"hbridge/core"
	"hbridge/protocol"
)

// 20 kHz keeps the H-bridge switching above the audible range
const pwmPeriodNs = 50000

// H-bridge inputs: right motor on slice 1, left motor on slice 2
var motorPins = []struct {
	ch  core.TimerChannel
	pin machine.Pin
}{
	{core.CH1, machine.GPIO2}, // right backward
	{core.CH2, machine.GPIO3}, // right forward
	{core.CH3, machine.GPIO4}, // left forward
	{core.CH4, machine.GPIO5}, // left backward
}

var (
	// Debug counters
	framesReceived uint32
	msgerrors      uint32
)

func main() {
	InitDebugUART()

	if err := InitUSB(); err != nil {
		core.DebugPrintln("[USB] configure failed: " + err.Error())
	}

	timer := NewRP2040MotorTimer(core.MAX_TIMER_COUNTS)
	for _, mp := range motorPins {
		if err := timer.ConfigureChannel(mp.ch, mp.pin, pwmPeriodNs); err != nil {
			core.DebugPrintln("[PWM] configure failed: " + err.Error())
			halt()
		}
	}

	drive, err := core.NewDrive(timer, core.DefaultDriveConfig())
	if err != nil {
		core.DebugPrintln("[MOTOR] " + err.Error())
		halt()
	}

	registry := core.NewCommandRegistry()
	core.RegisterMotorCommands(registry, drive, GetHardwareTime)
	core.DebugPrintln(registry.Dictionary())

	decoder := protocol.NewFrameDecoder()
	rx := make([]byte, protocol.MessageLengthMax)

	for {
		func() {
			// A panicking handler must not leave the motors running
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
					decoder.Reset()
					drive.ResetMotors()
					core.DumpEventRing()
				}
			}()

			n := USBRead(rx)
			for _, frame := range decoder.Feed(rx[:n]) {
				framesReceived++
				if err := protocol.DispatchFrame(frame.Payload, registry.Dispatch); err != nil {
					msgerrors++
					core.DebugAsync("[CMD] " + err.Error())
				}
			}

			drive.CheckTimeout(GetHardwareTime())
		}()

		time.Sleep(100 * time.Microsecond)
	}
}

// halt parks the firmware with all outputs left as configured
func halt() {
	for {
		time.Sleep(time.Second)
	}
}
