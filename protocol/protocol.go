// Package protocol implements the serial link between the motor host tool
// and the firmware: VLQ integers inside CRC protected frames
package protocol

// Version represents the firmware protocol version
const Version = "0.1.0"

// Frame layout: [len][seq][payload...][crc_hi][crc_lo][sync]
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePayloadMax  = MessageLengthMax - MessageLengthMin
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10

	// Message sequence masks
	MessageSeqMask = 0x0F
)

// Frame is one decoded message block
type Frame struct {
	Sequence uint8
	Payload  []byte
}
