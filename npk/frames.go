package npk

import (
	"errors"
	"fmt"
)

// Wire format constants for the soil NPK sensor. The sensor is a
// fixed-address device speaking read-holding-register queries only;
// this is not a general register-map client.
const (
	deviceAddr      = 0x01
	funcReadHolding = 0x03

	regNitrogen   = 0x001E
	regPhosphorus = 0x001F
	regPotassium  = 0x0020

	// RequestLen is the size of every request frame on this bus
	RequestLen = 8
	// ResponseLen is the size of every response frame on this bus
	ResponseLen = 7
)

// ErrBadResponse marks a response frame that failed validation
var ErrBadResponse = errors.New("malformed sensor response")

// buildRequest assembles the fixed 8-byte read-holding-register frame
// for a single register.
func buildRequest(register uint16) []byte {
	frame := []byte{
		deviceAddr,
		funcReadHolding,
		byte(register >> 8),
		byte(register & 0xFF),
		0x00, 0x01, // one register
	}
	return appendCRC(frame)
}

// The three request frames are fixed for the lifetime of the process;
// one immutable frame per nutrient.
var (
	frameNitrogen   = buildRequest(regNitrogen)
	framePhosphorus = buildRequest(regPhosphorus)
	framePotassium  = buildRequest(regPotassium)
)

// decodeReading validates a 7-byte response frame and extracts the
// nutrient reading in mg/kg.
//
// The register is declared 16 bits wide but the reading is taken from
// the low value byte only, matching the deployed sensor firmware whose
// readings never exceed one byte. See DESIGN.md before widening.
func decodeReading(resp []byte) (int, error) {
	if len(resp) != ResponseLen {
		return 0, fmt.Errorf("%w: got %d bytes, want %d", ErrBadResponse, len(resp), ResponseLen)
	}
	if resp[0] != deviceAddr {
		return 0, fmt.Errorf("%w: address 0x%02X", ErrBadResponse, resp[0])
	}
	if resp[1] != funcReadHolding {
		return 0, fmt.Errorf("%w: function code 0x%02X", ErrBadResponse, resp[1])
	}
	if resp[2] != 2 {
		return 0, fmt.Errorf("%w: byte count %d", ErrBadResponse, resp[2])
	}
	if !checkCRC(resp) {
		return 0, fmt.Errorf("%w: CRC mismatch", ErrBadResponse)
	}
	return int(resp[4]), nil
}
