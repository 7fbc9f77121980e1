package core

import "testing"

func TestDebugPrintlnRespectsEnable(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(s string) {})
	defer SetDebugEnabled(false)

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	SetDebugEnabled(true)
	DebugPrintln("shown")

	if len(lines) != 1 || lines[0] != "shown" {
		t.Errorf("Expected only the enabled message, got %v", lines)
	}
}

func TestEventRingWraps(t *testing.T) {
	ClearEventRing()

	for i := 0; i < EventRingSize+5; i++ {
		RecordEvent(EvtSetPower, 0, uint32(i), 0)
	}

	events := Events()
	if len(events) != EventRingSize {
		t.Fatalf("Expected %d events, got %d", EventRingSize, len(events))
	}
	if events[0].Clock != 5 {
		t.Errorf("Expected oldest event at clock 5, got %d", events[0].Clock)
	}
	if events[len(events)-1].Clock != EventRingSize+4 {
		t.Errorf("Expected newest event at clock %d, got %d", EventRingSize+4, events[len(events)-1].Clock)
	}
}

func TestDumpEventRing(t *testing.T) {
	ClearEventRing()
	RecordEvent(EvtTimeout, bothMotors, 1200, 0)

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(s string) {})

	DumpEventRing()

	if len(lines) != 3 {
		t.Fatalf("Expected header, one event and footer, got %v", lines)
	}
	if lines[1] != "[MOTOR] TIMEOUT! motor=255 clock=1200 value=0" {
		t.Errorf("Unexpected event line %q", lines[1])
	}
}

func TestPowerString(t *testing.T) {
	testCases := []struct {
		power    float32
		expected string
	}{
		{0, "0.000"},
		{0.5, "0.500"},
		{-0.3, "-0.300"},
		{0.05, "0.050"},
		{1, "1.000"},
	}

	for _, tc := range testCases {
		if got := powerString(tc.power); got != tc.expected {
			t.Errorf("powerString(%v): expected %q, got %q", tc.power, tc.expected, got)
		}
	}
}

func TestItoa(t *testing.T) {
	if s := itoa(-1234); s != "-1234" {
		t.Errorf("Expected -1234, got %s", s)
	}
	if s := utoa(4294967295); s != "4294967295" {
		t.Errorf("Expected 4294967295, got %s", s)
	}
}
