package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// MotorEvent captures a drive event for post-mortem analysis
type MotorEvent struct {
	EventType uint8  // Event type code
	Motor     uint8  // MotorID, or 0xFF for both
	Clock     uint32 // System clock at event
	Value     int32  // Fixed point power (see protocol.PowerScale)
}

// Event type codes
const (
	EvtSetPower      = 1 // set_motor_power / set_drive_power applied
	EvtReset         = 2 // reset_motors received
	EvtTimeout       = 3 // watchdog stopped the motors
	EvtTimeoutConfig = 4 // set_motor_timeout received
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
	bothMotors    = 0xFF
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	eventRing     [EventRingSize]MotorEvent
	eventRingHead uint8

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking)
// Drops the message if the channel is full
func DebugAsync(msg string) {
	if debugEnabled && debugChan != nil {
		select {
		case debugChan <- msg:
		default:
		}
	}
}

// RecordEvent captures a drive event in the ring buffer
func RecordEvent(eventType, motor uint8, clock uint32, value int32) {
	idx := eventRingHead
	eventRing[idx] = MotorEvent{
		EventType: eventType,
		Motor:     motor,
		Clock:     clock,
		Value:     value,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// Events returns recorded events from oldest to newest
func Events() []MotorEvent {
	events := make([]MotorEvent, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// DumpEventRing outputs the event ring buffer (call on shutdown/error)
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[MOTOR] === Event Ring Dump ===")
	for _, evt := range Events() {
		var name string
		switch evt.EventType {
		case EvtSetPower:
			name = "SET_POWER"
		case EvtReset:
			name = "RESET"
		case EvtTimeout:
			name = "TIMEOUT!"
		case EvtTimeoutConfig:
			name = "TIMEOUT_CFG"
		default:
			name = "UNKNOWN"
		}

		debugPrintln("[MOTOR] " + name +
			" motor=" + itoa(int(evt.Motor)) +
			" clock=" + utoa(evt.Clock) +
			" value=" + itoa(int(evt.Value)))
	}
	debugPrintln("[MOTOR] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	for i := range eventRing {
		eventRing[i] = MotorEvent{}
	}
	eventRingHead = 0
}
