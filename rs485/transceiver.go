package rs485

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DirectionLine controls the transmit-enable pin of a half-duplex
// transceiver. Implementations exist for RTS-wired adapters; boards
// with a dedicated DE/RE GPIO can provide their own.
type DirectionLine interface {
	SetTransmit(enabled bool) error
}

// RTSDirection returns a DirectionLine that drives the port's RTS pin
func RTSDirection(p Port) DirectionLine {
	return rtsDirection{p}
}

type rtsDirection struct {
	port Port
}

func (d rtsDirection) SetTransmit(enabled bool) error {
	return d.port.SetRTS(enabled)
}

// TransceiverConfig holds the timing parameters of a half-duplex bus
type TransceiverConfig struct {
	// SettleDelay is the wait after switching bus direction before the
	// line is considered valid. The MAX485-class driver datasheets
	// require at least 10ms at low baud rates.
	SettleDelay time.Duration

	// Sleep is the blocking wait used for settle delays. Tests inject
	// a recording implementation; nil means time.Sleep.
	Sleep func(time.Duration)
}

// TransceiverOption is a functional option for configuring a Transceiver
type TransceiverOption func(*TransceiverConfig) error

// DefaultTransceiverConfig returns the stock timing parameters
func DefaultTransceiverConfig() TransceiverConfig {
	return TransceiverConfig{
		SettleDelay: 10 * time.Millisecond,
	}
}

// WithSettleDelay sets the direction-switch settle delay (minimum 10ms)
func WithSettleDelay(d time.Duration) TransceiverOption {
	return func(c *TransceiverConfig) error {
		if d < 10*time.Millisecond {
			return ErrInvalidConfig
		}
		c.SettleDelay = d
		return nil
	}
}

// WithSleep replaces the blocking wait implementation
func WithSleep(sleep func(time.Duration)) TransceiverOption {
	return func(c *TransceiverConfig) error {
		if sleep == nil {
			return ErrInvalidConfig
		}
		c.Sleep = sleep
		return nil
	}
}

// Transceiver serializes request/response transactions over a shared
// half-duplex bus. The bus carries one frame in one direction at a
// time, so every transaction holds an exclusive lock from the moment
// the transmit line is raised until the full response is read.
type Transceiver struct {
	mu     sync.Mutex
	port   Port
	dir    DirectionLine
	config TransceiverConfig
}

// NewTransceiver wraps a port and a direction line into a half-duplex
// transceiver. Pass nil for dir to drive direction through the port's
// RTS pin.
func NewTransceiver(p Port, dir DirectionLine, opts ...TransceiverOption) (*Transceiver, error) {
	config := DefaultTransceiverConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}
	if config.Sleep == nil {
		config.Sleep = time.Sleep
	}
	if dir == nil {
		dir = RTSDirection(p)
	}
	return &Transceiver{
		port:   p,
		dir:    dir,
		config: config,
	}, nil
}

// Query transmits one request frame and reads exactly respLen response
// bytes. The sequence is strictly: raise transmit-enable, settle,
// write, drain, drop transmit-enable, settle, read. If the request is
// not fully accepted by the driver no read is attempted and
// ErrWriteIncomplete is returned; a response shorter than respLen
// after the port's read window yields ErrReadIncomplete.
func (t *Transceiver) Query(ctx context.Context, req []byte, respLen int) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.dir.SetTransmit(true); err != nil {
		return nil, fmt.Errorf("raising transmit enable: %w", err)
	}
	t.config.Sleep(t.config.SettleDelay)

	n, err := t.port.WriteContext(ctx, req)
	if err != nil {
		t.dir.SetTransmit(false)
		return nil, fmt.Errorf("%w: %v", ErrWriteIncomplete, err)
	}
	if n != len(req) {
		// Switching to receive now would truncate the frame on the
		// wire, but a partial frame is already unrecoverable.
		t.dir.SetTransmit(false)
		return nil, fmt.Errorf("%w: wrote %d of %d bytes", ErrWriteIncomplete, n, len(req))
	}

	// Hold transmit until the UART has clocked the last bit out
	if err := t.port.Drain(); err != nil {
		t.dir.SetTransmit(false)
		return nil, fmt.Errorf("draining request frame: %w", err)
	}

	if err := t.dir.SetTransmit(false); err != nil {
		return nil, fmt.Errorf("dropping transmit enable: %w", err)
	}
	t.config.Sleep(t.config.SettleDelay)

	resp := make([]byte, respLen)
	read := 0
	for read < respLen {
		n, err := t.port.ReadContext(ctx, resp[read:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadIncomplete, err)
		}
		if n == 0 {
			// VTIME window expired with the response still short
			return nil, fmt.Errorf("%w: got %d of %d bytes", ErrReadIncomplete, read, respLen)
		}
		read += n
	}
	return resp, nil
}
