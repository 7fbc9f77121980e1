package protocol

import "math"

// Command IDs shared by the firmware and the host tool
const (
	CmdSetMotorPower   uint16 = 1 // motor=%c power=%i
	CmdSetDrivePower   uint16 = 2 // left=%i right=%i
	CmdResetMotors     uint16 = 3
	CmdSetMotorTimeout uint16 = 4 // max_duration=%u
)

// PowerScale is the fixed point scale of power values on the wire
const PowerScale = 10000

// EncodePower converts a power command into its wire value, limited to [-1, 1]
func EncodePower(p float32) int32 {
	if p > 1 {
		p = 1
	} else if p < -1 {
		p = -1
	}
	return int32(math.Round(float64(p) * PowerScale))
}

// DecodePower converts a wire value back into a power command
func DecodePower(v int32) float32 {
	return float32(v) / PowerScale
}

// AppendSetMotorPower appends a set_motor_power command
func AppendSetMotorPower(dst []byte, motor uint8, power float32) []byte {
	dst = AppendVLQUint(dst, uint32(CmdSetMotorPower))
	dst = AppendVLQUint(dst, uint32(motor))
	return AppendVLQInt(dst, EncodePower(power))
}

// AppendSetDrivePower appends a set_drive_power command
func AppendSetDrivePower(dst []byte, left, right float32) []byte {
	dst = AppendVLQUint(dst, uint32(CmdSetDrivePower))
	dst = AppendVLQInt(dst, EncodePower(left))
	return AppendVLQInt(dst, EncodePower(right))
}

// AppendResetMotors appends a reset_motors command
func AppendResetMotors(dst []byte) []byte {
	return AppendVLQUint(dst, uint32(CmdResetMotors))
}

// AppendSetMotorTimeout appends a set_motor_timeout command
func AppendSetMotorTimeout(dst []byte, maxDuration uint32) []byte {
	dst = AppendVLQUint(dst, uint32(CmdSetMotorTimeout))
	return AppendVLQUint(dst, maxDuration)
}
