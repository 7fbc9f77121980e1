package core

// TimerChannel identifies one compare-capture channel of the motor timer
type TimerChannel uint8

// Timer 4 compare channels on the reference board
const (
	CH1 TimerChannel = 1
	CH2 TimerChannel = 2
	CH3 TimerChannel = 3
	CH4 TimerChannel = 4
)

// TimerDriver is the abstract timer interface that the motor code uses.
// Platform-specific implementations own the peripheral and its setup.
type TimerDriver interface {
	// SetCompare loads the compare register of a channel
	// value: 0 (always low) to MAX_TIMER_COUNTS (full duty cycle)
	SetCompare(ch TimerChannel, value uint32)
}

// RegisterWrite is one recorded compare register write
type RegisterWrite struct {
	Channel TimerChannel
	Value   uint32
}

// RegisterFile is an in-memory TimerDriver.
// It keeps the last value of every channel and the order writes arrived in.
type RegisterFile struct {
	values map[TimerChannel]uint32
	log    []RegisterWrite
}

// NewRegisterFile creates an empty register file with all channels at 0
func NewRegisterFile() *RegisterFile {
	return &RegisterFile{
		values: make(map[TimerChannel]uint32),
	}
}

// SetCompare records the write and updates the channel value
func (r *RegisterFile) SetCompare(ch TimerChannel, value uint32) {
	r.values[ch] = value
	r.log = append(r.log, RegisterWrite{Channel: ch, Value: value})
}

// Value returns the current value of a channel
func (r *RegisterFile) Value(ch TimerChannel) uint32 {
	return r.values[ch]
}

// Writes returns the writes recorded since the last ClearLog
func (r *RegisterFile) Writes() []RegisterWrite {
	return r.log
}

// ClearLog forgets recorded writes, values are kept
func (r *RegisterFile) ClearLog() {
	r.log = r.log[:0]
}
