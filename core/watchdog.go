package core

// SetMaxDuration sets how long, in clock ticks, the motors may keep running
// without a new command. 0 disables the watchdog.
func (d *Drive) SetMaxDuration(ticks uint32) {
	d.maxDuration = ticks
}

// MaxDuration returns the watchdog period in clock ticks
func (d *Drive) MaxDuration() uint32 {
	return d.maxDuration
}

// Touch records that a command was accepted at clock now
func (d *Drive) Touch(now uint32) {
	d.lastCommand = now
}

// Running reports whether either motor has a non-zero output
func (d *Drive) Running() bool {
	return d.Left.power != 0 || d.Right.power != 0
}

// CheckTimeout stops both motors once max duration has passed since the last
// command. Returns true if the motors were stopped by this call.
func (d *Drive) CheckTimeout(now uint32) bool {
	if d.maxDuration == 0 || !d.Running() {
		return false
	}
	// Unsigned subtraction handles clock wraparound
	if now-d.lastCommand < d.maxDuration {
		return false
	}

	DebugPrintln("[MOTOR] command timeout after " + utoa(now-d.lastCommand) + " ticks, stopping")
	RecordEvent(EvtTimeout, bothMotors, now, 0)
	d.ResetMotors()
	return true
}
