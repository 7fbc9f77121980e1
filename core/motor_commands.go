package core

import (
	"errors"

	"hbridge/protocol"
)

var ErrUnknownMotor = errors.New("unknown motor id")

// ClockSource returns the current system clock in ticks
type ClockSource func() uint32

// motorCommands holds the state the command handlers share
type motorCommands struct {
	drive *Drive
	clock ClockSource
}

// RegisterMotorCommands registers the drive commands with r.
// clock stamps accepted commands for the command watchdog.
func RegisterMotorCommands(r *CommandRegistry, d *Drive, clock ClockSource) {
	mc := &motorCommands{drive: d, clock: clock}

	r.Register(protocol.CmdSetMotorPower, "set_motor_power", "motor=%c power=%i", mc.handleSetMotorPower)
	r.Register(protocol.CmdSetDrivePower, "set_drive_power", "left=%i right=%i", mc.handleSetDrivePower)
	r.Register(protocol.CmdResetMotors, "reset_motors", "", mc.handleResetMotors)
	r.Register(protocol.CmdSetMotorTimeout, "set_motor_timeout", "max_duration=%u", mc.handleSetMotorTimeout)
}

func (mc *motorCommands) now() uint32 {
	if mc.clock == nil {
		return 0
	}
	return mc.clock()
}

// handleSetMotorPower sets the power of a single motor
// Format: set_motor_power motor=%c power=%i
func (mc *motorCommands) handleSetMotorPower(data *[]byte) error {
	id, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}

	power, err := protocol.DecodeVLQInt(data)
	if err != nil {
		return err
	}

	if id > 0xFF {
		return ErrUnknownMotor
	}
	motor := mc.drive.Motor(MotorID(id))
	if motor == nil {
		return ErrUnknownMotor
	}

	now := mc.now()
	motor.SetPower(protocol.DecodePower(power))
	mc.drive.Touch(now)
	RecordEvent(EvtSetPower, uint8(id), now, power)

	DebugPrintln("[MOTOR] " + motor.Name + " power=" + powerString(motor.Power()))
	return nil
}

// handleSetDrivePower sets both motors from one command
// Format: set_drive_power left=%i right=%i
func (mc *motorCommands) handleSetDrivePower(data *[]byte) error {
	left, err := protocol.DecodeVLQInt(data)
	if err != nil {
		return err
	}

	right, err := protocol.DecodeVLQInt(data)
	if err != nil {
		return err
	}

	now := mc.now()
	mc.drive.SetLeftMotorPower(protocol.DecodePower(left))
	mc.drive.SetRightMotorPower(protocol.DecodePower(right))
	mc.drive.Touch(now)
	RecordEvent(EvtSetPower, uint8(MotorLeft), now, left)
	RecordEvent(EvtSetPower, uint8(MotorRight), now, right)

	DebugPrintln("[MOTOR] drive left=" + powerString(mc.drive.Left.Power()) +
		" right=" + powerString(mc.drive.Right.Power()))
	return nil
}

// handleResetMotors stops both motors
// Format: reset_motors
func (mc *motorCommands) handleResetMotors(data *[]byte) error {
	now := mc.now()
	mc.drive.ResetMotors()
	mc.drive.Touch(now)
	RecordEvent(EvtReset, bothMotors, now, 0)
	return nil
}

// handleSetMotorTimeout configures the command watchdog
// Format: set_motor_timeout max_duration=%u
func (mc *motorCommands) handleSetMotorTimeout(data *[]byte) error {
	maxDuration, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}

	now := mc.now()
	mc.drive.SetMaxDuration(maxDuration)
	mc.drive.Touch(now)
	RecordEvent(EvtTimeoutConfig, bothMotors, now, int32(maxDuration))
	return nil
}
