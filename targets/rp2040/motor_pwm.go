//go:build rp2040

package main

import (
	"machine"

	"hbridge/core"
)

// pwmPeripheral is an interface for PWM hardware peripherals
// This abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// pwmOutput is one H-bridge input bound to a slice channel
type pwmOutput struct {
	pwm     pwmPeripheral
	channel uint8
}

// RP2040MotorTimer implements core.TimerDriver on the RP2040 PWM slices.
// Each logical timer channel is bound to one GPIO pin; compare values in
// [0, maxCounts] are scaled to the slice's TOP register.
type RP2040MotorTimer struct {
	outputs   map[core.TimerChannel]pwmOutput
	maxCounts uint32
}

// NewRP2040MotorTimer creates a timer whose full duty cycle is maxCounts
func NewRP2040MotorTimer(maxCounts uint32) *RP2040MotorTimer {
	return &RP2040MotorTimer{
		outputs:   make(map[core.TimerChannel]pwmOutput),
		maxCounts: maxCounts,
	}
}

// ConfigureChannel binds ch to pin with the given PWM period in nanoseconds
func (d *RP2040MotorTimer) ConfigureChannel(ch core.TimerChannel, pin machine.Pin, period uint64) error {
	// RP2040: GPIO pin N maps to slice (N >> 1) & 0x7, channel N & 1 (A/B)
	pwm := getPWMPeripheral(uint8((uint32(pin) >> 1) & 0x7))

	if err := pwm.Configure(machine.PWMConfig{Period: period}); err != nil {
		return err
	}

	channel, err := pwm.Channel(pin)
	if err != nil {
		return err
	}
	pwm.Set(channel, 0)

	d.outputs[ch] = pwmOutput{pwm: pwm, channel: channel}
	return nil
}

// SetCompare sets the duty cycle of a configured channel.
// Writes to unknown channels are ignored.
func (d *RP2040MotorTimer) SetCompare(ch core.TimerChannel, value uint32) {
	out, ok := d.outputs[ch]
	if !ok {
		return
	}
	if value > d.maxCounts {
		value = d.maxCounts
	}

	// 64-bit math avoids overflow for large TOP values
	duty := uint64(value) * uint64(out.pwm.Top()) / uint64(d.maxCounts)
	out.pwm.Set(out.channel, uint32(duty))
}

// getPWMPeripheral returns the PWM peripheral for a given slice number
func getPWMPeripheral(sliceNum uint8) pwmPeripheral {
	switch sliceNum {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}
