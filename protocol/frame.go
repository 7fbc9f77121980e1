package protocol

import "errors"

var (
	ErrPayloadTooLarge = errors.New("payload exceeds frame size")
)

// CommandHandler is called for each command found in a frame payload
type CommandHandler func(cmdID uint16, data *[]byte) error

// NextSequence returns the sequence byte that follows seq
func NextSequence(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}

// EncodeFrame wraps payload in a frame with the given sequence number
func EncodeFrame(seq uint8, payload []byte) ([]byte, error) {
	if len(payload) > MessagePayloadMax {
		return nil, ErrPayloadTooLarge
	}

	msgLen := len(payload) + MessageLengthMin
	frame := make([]byte, 0, msgLen)
	frame = append(frame, uint8(msgLen), (seq&MessageSeqMask)|MessageDest)
	frame = append(frame, payload...)

	crc := CRC16(frame)
	return append(frame, uint8(crc>>8), uint8(crc&0xFF), MessageValueSync), nil
}

// FrameDecoder splits a byte stream into frames.
// Corrupt data is skipped up to the next sync byte.
type FrameDecoder struct {
	buf          []byte
	synchronized bool

	// Dropped counts the frames rejected since creation
	Dropped uint32
}

// NewFrameDecoder creates a decoder that starts synchronized
func NewFrameDecoder() *FrameDecoder {
	return &FrameDecoder{
		buf:          make([]byte, 0, 2*MessageLengthMax),
		synchronized: true,
	}
}

// Feed adds received bytes and returns every complete frame found.
// Incomplete trailing data is kept for the next call.
func (d *FrameDecoder) Feed(input []byte) []Frame {
	d.buf = append(d.buf, input...)
	data := d.buf
	var frames []Frame

	for len(data) > 0 {
		if !d.synchronized {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				data = nil
				break
			}
			data = data[syncPos+1:]
			d.synchronized = true
			continue
		}

		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}

		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			d.desync()
			continue
		}

		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			d.desync()
			continue
		}

		if len(data) < msgLen {
			break
		}

		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.desync()
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.desync()
			continue
		}

		payload := make([]byte, msgLen-MessageLengthMin)
		copy(payload, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		frames = append(frames, Frame{Sequence: seq, Payload: payload})
		data = data[msgLen:]
	}

	d.buf = d.buf[:copy(d.buf, data)]
	return frames
}

// Reset drops buffered data and resynchronizes
func (d *FrameDecoder) Reset() {
	d.buf = d.buf[:0]
	d.synchronized = true
}

func (d *FrameDecoder) desync() {
	d.synchronized = false
	d.Dropped++
}

// DispatchFrame decodes each command ID in payload and hands the remaining
// bytes to handler, which must consume that command's arguments
func DispatchFrame(payload []byte, handler CommandHandler) error {
	for len(payload) > 0 {
		cmdID, err := DecodeVLQUint(&payload)
		if err != nil {
			return err
		}
		if err := handler(uint16(cmdID), &payload); err != nil {
			return err
		}
	}
	return nil
}
