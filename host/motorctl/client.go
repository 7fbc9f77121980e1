// Package motorctl drives the H-bridge firmware from the host
package motorctl

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"hbridge/protocol"
)

// ClockFreq is the firmware clock rate used for timeout ticks
const ClockFreq = 1000000

// Motor ids on the wire
const (
	MotorLeft  uint8 = 0
	MotorRight uint8 = 1
)

// Client encodes motor commands into frames on w.
// It is safe for concurrent use, so a keepalive can share it with a shell.
type Client struct {
	mu  sync.Mutex
	w   io.Writer
	seq uint8

	// Last commanded power per motor, repeated by Keepalive
	left, right float32
}

// NewClient creates a client writing to w
func NewClient(w io.Writer) *Client {
	return &Client{
		w:   w,
		seq: protocol.MessageDest,
	}
}

// send frames payload and writes it, must be called with mu held
func (c *Client) send(payload []byte) error {
	frame, err := protocol.EncodeFrame(c.seq, payload)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	if _, err := c.w.Write(frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	c.seq = protocol.NextSequence(c.seq)
	return nil
}

// SetMotorPower sends set_motor_power for one motor
func (c *Client) SetMotorPower(motor uint8, power float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(protocol.AppendSetMotorPower(nil, motor, power)); err != nil {
		return err
	}
	switch motor {
	case MotorLeft:
		c.left = power
	case MotorRight:
		c.right = power
	}
	return nil
}

// SetLeft sets the left motor power
func (c *Client) SetLeft(power float32) error {
	return c.SetMotorPower(MotorLeft, power)
}

// SetRight sets the right motor power
func (c *Client) SetRight(power float32) error {
	return c.SetMotorPower(MotorRight, power)
}

// SetDrive sets both motors in one frame
func (c *Client) SetDrive(left, right float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setDriveLocked(left, right)
}

func (c *Client) setDriveLocked(left, right float32) error {
	if err := c.send(protocol.AppendSetDrivePower(nil, left, right)); err != nil {
		return err
	}
	c.left, c.right = left, right
	return nil
}

// Stop sends reset_motors
func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(protocol.AppendResetMotors(nil)); err != nil {
		return err
	}
	c.left, c.right = 0, 0
	return nil
}

// SetTimeout configures the firmware command watchdog, 0 disables it
func (c *Client) SetTimeout(d time.Duration) error {
	ticks := uint64(d / time.Microsecond * (ClockFreq / 1000000))
	if ticks > 0xFFFFFFFF {
		return fmt.Errorf("timeout %v does not fit the firmware clock", d)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send(protocol.AppendSetMotorTimeout(nil, uint32(ticks)))
}

// Power returns the last commanded power of both motors
func (c *Client) Power() (left, right float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left, c.right
}

// Keepalive repeats the last drive command every interval until ctx is done,
// so the firmware watchdog only fires when the host goes away.
// Nothing is sent while both motors are stopped.
func (c *Client) Keepalive(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.mu.Lock()
			var err error
			if c.left != 0 || c.right != 0 {
				err = c.setDriveLocked(c.left, c.right)
			}
			c.mu.Unlock()
			if err != nil {
				return err
			}
		}
	}
}
