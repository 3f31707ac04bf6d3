package protocol

import "errors"

// Decoder errors covering the frame decoder's contract: short input, unknown
// opcode, length exceeds cap, body too short.
var (
	ErrShortFrame    = errors.New("protocol: short frame")
	ErrUnknownOpcode = errors.New("protocol: unknown opcode")
	ErrOversizeBody  = errors.New("protocol: body exceeds max request size")
	ErrBodyTooShort  = errors.New("protocol: body too short for opcode")
)
