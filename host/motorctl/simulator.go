package motorctl

import (
	"sync"
	"time"

	"hbridge/core"
	"hbridge/protocol"
)

// Simulator runs the firmware command path against an in-memory timer.
// Frames written to it are decoded and dispatched exactly as on the MCU.
type Simulator struct {
	mu       sync.Mutex
	regs     *core.RegisterFile
	drive    *core.Drive
	registry *core.CommandRegistry
	decoder  *protocol.FrameDecoder
	start    time.Time

	// now returns the simulated clock, in ClockFreq ticks
	now func() uint32

	// Errors returned by command handlers
	Errors []error
}

// NewSimulator creates a simulated MCU with the given drive layout
func NewSimulator(cfg core.DriveConfig) (*Simulator, error) {
	s := &Simulator{
		regs:     core.NewRegisterFile(),
		registry: core.NewCommandRegistry(),
		decoder:  protocol.NewFrameDecoder(),
		start:    time.Now(),
	}
	s.now = func() uint32 {
		return uint32(time.Since(s.start) / time.Microsecond * (ClockFreq / 1000000))
	}

	drive, err := core.NewDrive(s.regs, cfg)
	if err != nil {
		return nil, err
	}
	s.drive = drive
	core.RegisterMotorCommands(s.registry, drive, func() uint32 { return s.now() })
	return s, nil
}

// Write feeds frame bytes to the simulated firmware
func (s *Simulator) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, frame := range s.decoder.Feed(p) {
		if err := protocol.DispatchFrame(frame.Payload, s.registry.Dispatch); err != nil {
			s.Errors = append(s.Errors, err)
		}
	}
	return len(p), nil
}

// Tick runs the command watchdog, as the firmware main loop does
func (s *Simulator) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drive.CheckTimeout(s.now())
}

// Channels returns the four compare registers of the drive,
// as left forward, left backward, right forward, right backward
func (s *Simulator) Channels() [4]uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return [4]uint32{
		s.regs.Value(s.drive.Left.Channels.Forward),
		s.regs.Value(s.drive.Left.Channels.Backward),
		s.regs.Value(s.drive.Right.Channels.Forward),
		s.regs.Value(s.drive.Right.Channels.Backward),
	}
}

// Writes returns the register write log
func (s *Simulator) Writes() []core.RegisterWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RegisterWrite(nil), s.regs.Writes()...)
}

// Dictionary returns the simulated firmware's command dictionary
func (s *Simulator) Dictionary() string {
	return s.registry.Dictionary()
}
