package motorctl

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"hbridge/core"
	"hbridge/protocol"
)

// frameRecorder collects what the client writes, one entry per Write
type frameRecorder struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
}

func (r *frameRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.frames = append(r.frames, append([]byte(nil), p...))
	return len(p), nil
}

func (r *frameRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func decodeOne(frame []byte) protocol.Frame {
	frames := protocol.NewFrameDecoder().Feed(frame)
	So(frames, ShouldHaveLength, 1)
	return frames[0]
}

func TestClientFrames(t *testing.T) {
	Convey("given a client on a recorder", t, func() {
		rec := &frameRecorder{}
		client := NewClient(rec)

		Convey("set_motor_power is framed with the first sequence", func() {
			So(client.SetLeft(0.5), ShouldBeNil)
			So(rec.frames, ShouldHaveLength, 1)

			f := decodeOne(rec.frames[0])
			So(f.Sequence, ShouldEqual, uint8(protocol.MessageDest))
			So(f.Payload, ShouldResemble, protocol.AppendSetMotorPower(nil, MotorLeft, 0.5))
		})

		Convey("sequence numbers advance and wrap", func() {
			for i := 0; i < 17; i++ {
				So(client.Stop(), ShouldBeNil)
			}
			So(decodeOne(rec.frames[15]).Sequence, ShouldEqual, uint8(0x1F))
			So(decodeOne(rec.frames[16]).Sequence, ShouldEqual, uint8(0x10))
		})

		Convey("last power is remembered per motor", func() {
			So(client.SetRight(-0.3), ShouldBeNil)
			So(client.SetLeft(0.2), ShouldBeNil)
			left, right := client.Power()
			So(left, ShouldEqual, float32(0.2))
			So(right, ShouldEqual, float32(-0.3))

			Convey("and cleared by Stop", func() {
				So(client.Stop(), ShouldBeNil)
				left, right = client.Power()
				So(left, ShouldEqual, float32(0))
				So(right, ShouldEqual, float32(0))
			})
		})

		Convey("timeouts are sent in firmware ticks", func() {
			So(client.SetTimeout(500*time.Millisecond), ShouldBeNil)

			payload := decodeOne(rec.frames[0]).Payload
			id, _ := protocol.DecodeVLQUint(&payload)
			ticks, err := protocol.DecodeVLQUint(&payload)
			So(err, ShouldBeNil)
			So(uint16(id), ShouldEqual, protocol.CmdSetMotorTimeout)
			So(ticks, ShouldEqual, uint32(500000))
		})

		Convey("write errors are wrapped", func() {
			boom := errors.New("unplugged")
			rec.err = boom

			err := client.SetDrive(0.1, 0.1)
			So(errors.Is(err, boom), ShouldBeTrue)

			Convey("and the sequence is not consumed", func() {
				rec.err = nil
				So(client.Stop(), ShouldBeNil)
				So(decodeOne(rec.frames[0]).Sequence, ShouldEqual, uint8(protocol.MessageDest))
			})
		})
	})
}

func TestClientKeepalive(t *testing.T) {
	Convey("keepalive repeats the drive command while moving", t, func() {
		rec := &frameRecorder{}
		client := NewClient(rec)
		So(client.SetDrive(0.4, -0.4), ShouldBeNil)

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
		defer cancel()
		err := client.Keepalive(ctx, 10*time.Millisecond)

		So(err, ShouldEqual, context.DeadlineExceeded)
		So(rec.count(), ShouldBeGreaterThan, 2)
		last := decodeOne(rec.frames[rec.count()-1]).Payload
		So(last, ShouldResemble, protocol.AppendSetDrivePower(nil, 0.4, -0.4))
	})

	Convey("keepalive stays quiet while stopped", t, func() {
		rec := &frameRecorder{}
		client := NewClient(rec)

		ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
		defer cancel()
		client.Keepalive(ctx, 5*time.Millisecond)

		So(rec.count(), ShouldEqual, 0)
	})
}

func TestClientWithSimulator(t *testing.T) {
	Convey("given a client talking to a simulated firmware", t, func() {
		sim, err := NewSimulator(core.DefaultDriveConfig())
		So(err, ShouldBeNil)
		client := NewClient(sim)

		Convey("forward power lands on the forward channel", func() {
			So(client.SetLeft(0.5), ShouldBeNil)
			So(sim.Channels(), ShouldResemble, [4]uint32{500, 0, 0, 0})
		})

		Convey("backward power lands on the backward channel", func() {
			So(client.SetRight(-0.3), ShouldBeNil)
			So(sim.Channels(), ShouldResemble, [4]uint32{0, 0, 0, 300})
		})

		Convey("drive power is clamped to PWM_MAX", func() {
			So(client.SetDrive(1, -1), ShouldBeNil)
			So(sim.Channels(), ShouldResemble, [4]uint32{800, 0, 0, 800})
		})

		Convey("stop zeroes every channel", func() {
			So(client.SetDrive(0.6, 0.6), ShouldBeNil)
			So(client.Stop(), ShouldBeNil)
			So(sim.Channels(), ShouldResemble, [4]uint32{0, 0, 0, 0})
			So(sim.Errors, ShouldBeEmpty)
		})

		Convey("a reversal zeroes the old direction first", func() {
			So(client.SetLeft(0.5), ShouldBeNil)
			So(client.SetLeft(-0.5), ShouldBeNil)

			writes := sim.Writes()
			last := writes[len(writes)-2:]
			So(last[0], ShouldResemble, core.RegisterWrite{Channel: core.CH3, Value: 0})
			So(last[1], ShouldResemble, core.RegisterWrite{Channel: core.CH4, Value: 500})
		})

		Convey("the watchdog stops a silent host", func() {
			clock := uint32(0)
			sim.now = func() uint32 { return clock }

			So(client.SetTimeout(100*time.Millisecond), ShouldBeNil)
			So(client.SetDrive(0.5, 0.5), ShouldBeNil)

			clock = 99999
			So(sim.Tick(), ShouldBeFalse)
			clock = 100000
			So(sim.Tick(), ShouldBeTrue)
			So(sim.Channels(), ShouldResemble, [4]uint32{0, 0, 0, 0})
		})

		Convey("the dictionary lists the motor commands", func() {
			So(sim.Dictionary(), ShouldContainSubstring, "reset_motors")
		})
	})
}

func TestSimulatorPartialWrites(t *testing.T) {
	Convey("frames split across writes are reassembled", t, func() {
		sim, err := NewSimulator(core.DefaultDriveConfig())
		So(err, ShouldBeNil)

		var buf bytes.Buffer
		So(NewClient(&buf).SetLeft(0.25), ShouldBeNil)
		stream := buf.Bytes()

		sim.Write(stream[:4])
		So(sim.Channels(), ShouldResemble, [4]uint32{0, 0, 0, 0})
		sim.Write(stream[4:])
		So(sim.Channels(), ShouldResemble, [4]uint32{250, 0, 0, 0})
	})
}
