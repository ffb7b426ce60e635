// Package npk implements the serial protocol of the three-register
// soil nutrient sensor. The sensor reports nitrogen, phosphorus and
// potassium in mg/kg, one fixed read-holding-register query per
// nutrient, over a shared half-duplex bus.
package npk

import (
	"context"
	"fmt"
)

// Querier is the half-duplex transaction contract the sensor needs
// from the bus layer. *rs485.Transceiver satisfies it.
type Querier interface {
	Query(ctx context.Context, req []byte, respLen int) ([]byte, error)
}

// Sensor issues nutrient queries over a half-duplex bus. Queries are
// strictly sequential: the underlying transceiver holds the bus for
// the full request/response exchange.
type Sensor struct {
	bus Querier
}

// NewSensor returns a Sensor speaking over the given bus
func NewSensor(bus Querier) *Sensor {
	return &Sensor{bus: bus}
}

// query runs one fixed request frame and decodes the reading
func (s *Sensor) query(ctx context.Context, frame []byte, nutrient string) (int, error) {
	resp, err := s.bus.Query(ctx, frame, ResponseLen)
	if err != nil {
		return 0, fmt.Errorf("%s query: %w", nutrient, err)
	}
	value, err := decodeReading(resp)
	if err != nil {
		return 0, fmt.Errorf("%s query: %w", nutrient, err)
	}
	return value, nil
}

// Nitrogen reads the nitrogen register (mg/kg)
func (s *Sensor) Nitrogen(ctx context.Context) (int, error) {
	return s.query(ctx, frameNitrogen, "nitrogen")
}

// Phosphorus reads the phosphorus register (mg/kg)
func (s *Sensor) Phosphorus(ctx context.Context) (int, error) {
	return s.query(ctx, framePhosphorus, "phosphorus")
}

// Potassium reads the potassium register (mg/kg)
func (s *Sensor) Potassium(ctx context.Context) (int, error) {
	return s.query(ctx, framePotassium, "potassium")
}
