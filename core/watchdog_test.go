package core

import "testing"

func TestWatchdogDisabledByDefault(t *testing.T) {
	drive, regs := newTestDrive(t)

	drive.Touch(100)
	drive.SetLeftMotorPower(0.5)

	if drive.CheckTimeout(0xFFFFFFF0) {
		t.Error("Watchdog fired while disabled")
	}
	if regs.Value(CH3) != 500 {
		t.Errorf("Expected left forward to keep running, got %d", regs.Value(CH3))
	}
}

func TestWatchdogStopsAfterMaxDuration(t *testing.T) {
	drive, regs := newTestDrive(t)
	drive.SetMaxDuration(1000)

	drive.SetLeftMotorPower(0.5)
	drive.SetRightMotorPower(-0.5)
	drive.Touch(5000)

	if drive.CheckTimeout(5999) {
		t.Fatal("Watchdog fired before max duration elapsed")
	}
	if !drive.CheckTimeout(6000) {
		t.Fatal("Watchdog did not fire at max duration")
	}

	for _, ch := range []TimerChannel{CH1, CH2, CH3, CH4} {
		if v := regs.Value(ch); v != 0 {
			t.Errorf("Channel %d: expected 0 after timeout, got %d", ch, v)
		}
	}

	// Stopped motors do not trip it again
	if drive.CheckTimeout(9000) {
		t.Error("Watchdog fired with motors already stopped")
	}
}

func TestWatchdogTouchExtends(t *testing.T) {
	drive, _ := newTestDrive(t)
	drive.SetMaxDuration(1000)
	drive.SetLeftMotorPower(0.3)

	drive.Touch(0)
	drive.Touch(900)
	if drive.CheckTimeout(1500) {
		t.Error("Watchdog fired although a command arrived at 900")
	}
}

func TestWatchdogClockWrap(t *testing.T) {
	drive, _ := newTestDrive(t)
	drive.SetMaxDuration(100)
	drive.SetLeftMotorPower(0.3)

	drive.Touch(0xFFFFFFC0)
	if drive.CheckTimeout(0x10) {
		t.Error("Watchdog fired 0x50 ticks after the last command")
	}
	if !drive.CheckTimeout(0x30) {
		t.Error("Watchdog did not fire 0x70 ticks after the last command across wrap")
	}
}

func TestWatchdogRecordsEvent(t *testing.T) {
	ClearEventRing()
	drive, _ := newTestDrive(t)
	drive.SetMaxDuration(10)
	drive.SetRightMotorPower(0.2)
	drive.Touch(0)

	drive.CheckTimeout(50)

	events := Events()
	if len(events) != 1 || events[0].EventType != EvtTimeout || events[0].Clock != 50 {
		t.Errorf("Expected one timeout event at clock 50, got %+v", events)
	}
}
