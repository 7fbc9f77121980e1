// Motor actuation for a two wheel H-bridge drive.
// Each motor has a forward and a backward input on the H-bridge, both driven
// by compare channels of one shared timer.
package core

import (
	"errors"
	"math"
)

const (
	// PWM_MAX is the largest power magnitude a motor is ever driven at
	PWM_MAX = 0.8

	// MAX_TIMER_COUNTS is the compare value for a 100% duty cycle
	MAX_TIMER_COUNTS = 1000
)

var (
	ErrInvalidConfig = errors.New("invalid drive configuration")
	ErrNoTimer       = errors.New("timer driver not configured")
)

// MotorID selects a logical motor
type MotorID uint8

const (
	MotorLeft  MotorID = 0
	MotorRight MotorID = 1
)

// MotorChannels maps a motor to its pair of H-bridge inputs
type MotorChannels struct {
	Forward  TimerChannel
	Backward TimerChannel
}

// DriveConfig holds the board constants of a drive
type DriveConfig struct {
	PWMMax         float32
	MaxTimerCounts uint32
	Left           MotorChannels
	Right          MotorChannels
}

// DefaultDriveConfig returns the reference board layout:
// left forward CH3, left backward CH4, right forward CH2, right backward CH1
func DefaultDriveConfig() DriveConfig {
	return DriveConfig{
		PWMMax:         PWM_MAX,
		MaxTimerCounts: MAX_TIMER_COUNTS,
		Left:           MotorChannels{Forward: CH3, Backward: CH4},
		Right:          MotorChannels{Forward: CH2, Backward: CH1},
	}
}

// Validate checks limits and that all four channels are distinct
func (c DriveConfig) Validate() error {
	if !(c.PWMMax > 0 && c.PWMMax <= 1) {
		return ErrInvalidConfig
	}
	if c.MaxTimerCounts == 0 {
		return ErrInvalidConfig
	}
	chans := [4]TimerChannel{c.Left.Forward, c.Left.Backward, c.Right.Forward, c.Right.Backward}
	for i := 0; i < len(chans); i++ {
		for j := i + 1; j < len(chans); j++ {
			if chans[i] == chans[j] {
				return ErrInvalidConfig
			}
		}
	}
	return nil
}

// LimitPWM clamps pwm to [-PWM_MAX, PWM_MAX]
func LimitPWM(pwm float32) float32 {
	return clampPower(pwm, PWM_MAX)
}

func clampPower(pwm, max float32) float32 {
	if pwm > max {
		return max
	} else if pwm < -max {
		return -max
	}
	return pwm
}

// dutyCounts converts a non-negative power into compare register units,
// rounding half away from zero
func dutyCounts(power float32, maxCounts uint32) uint32 {
	return uint32(math.Round(float64(power) * float64(maxCounts)))
}

// Motor drives one H-bridge through two timer channels
type Motor struct {
	Name     string
	Channels MotorChannels

	timer     TimerDriver
	pwmMax    float32
	maxCounts uint32

	// Last power applied after clamping
	power float32
}

// SetPower drives the motor forward for pwm >= 0 and backward for pwm < 0.
// The channel being switched off is always written before the other one is
// switched on, so both inputs are never high together.
func (m *Motor) SetPower(pwm float32) {
	limited := clampPower(pwm, m.pwmMax)

	if pwm >= 0 {
		m.timer.SetCompare(m.Channels.Backward, 0)
		m.timer.SetCompare(m.Channels.Forward, dutyCounts(limited, m.maxCounts))
	} else {
		m.timer.SetCompare(m.Channels.Forward, 0)
		m.timer.SetCompare(m.Channels.Backward, dutyCounts(-limited, m.maxCounts))
	}
	m.power = limited
}

// Power returns the last clamped power applied to the motor
func (m *Motor) Power() float32 {
	return m.power
}

// Drive is the pair of wheel motors sharing one timer
type Drive struct {
	Left  *Motor
	Right *Motor

	// Command watchdog, see watchdog.go
	maxDuration uint32
	lastCommand uint32
}

// NewDrive binds the two motors of cfg to timer and brings them to rest
func NewDrive(timer TimerDriver, cfg DriveConfig) (*Drive, error) {
	if timer == nil {
		return nil, ErrNoTimer
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	newMotor := func(name string, ch MotorChannels) *Motor {
		return &Motor{
			Name:      name,
			Channels:  ch,
			timer:     timer,
			pwmMax:    cfg.PWMMax,
			maxCounts: cfg.MaxTimerCounts,
		}
	}

	d := &Drive{
		Left:  newMotor("left", cfg.Left),
		Right: newMotor("right", cfg.Right),
	}
	d.ResetMotors()
	return d, nil
}

// Motor returns the motor for id, or nil for an unknown id
func (d *Drive) Motor(id MotorID) *Motor {
	switch id {
	case MotorLeft:
		return d.Left
	case MotorRight:
		return d.Right
	default:
		return nil
	}
}

// SetLeftMotorPower sets the left wheel power
func (d *Drive) SetLeftMotorPower(pwm float32) {
	d.Left.SetPower(pwm)
}

// SetRightMotorPower sets the right wheel power
func (d *Drive) SetRightMotorPower(pwm float32) {
	d.Right.SetPower(pwm)
}

// ResetMotors drives all four channels to zero
func (d *Drive) ResetMotors() {
	d.Left.SetPower(0)
	d.Right.SetPower(0)
}
