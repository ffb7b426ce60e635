// Package poll runs the acquisition loop: one measurement cycle per
// interval, each producing an immutable Reading that is fanned out to
// the configured sinks. Cycles never share state; a consumer holding
// an old Reading sees exactly what was measured that cycle.
package poll

import (
	"context"
	"time"

	"soilsense/probe"
)

// Field names used as keys in a Reading's error map
const (
	FieldNitrogen   = "nitrogen"
	FieldPhosphorus = "phosphorus"
	FieldPotassium  = "potassium"
	FieldPH         = "ph"
	FieldMoisture   = "moisture"
)

// NutrientSensor is the slice of the npk sensor the poller needs
type NutrientSensor interface {
	Nitrogen(ctx context.Context) (int, error)
	Phosphorus(ctx context.Context) (int, error)
	Potassium(ctx context.Context) (int, error)
}

// Reading is one cycle's measurements. Fields whose acquisition
// failed carry their error in Errs and hold the zero value; a Reading
// is never mutated after the cycle that produced it.
type Reading struct {
	Time        time.Time
	Nitrogen    int
	Phosphorus  int
	Potassium   int
	PH          float64
	MoisturePct int
	Errs        map[string]error
}

// Complete reports whether every field of the cycle was acquired
func (r Reading) Complete() bool {
	return len(r.Errs) == 0
}

// Err returns the acquisition error for a field, nil if it succeeded
func (r Reading) Err(field string) error {
	return r.Errs[field]
}

// Sink consumes one finished cycle's reading
type Sink interface {
	Emit(ctx context.Context, r Reading) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ctx context.Context, r Reading) error

func (f SinkFunc) Emit(ctx context.Context, r Reading) error { return f(ctx, r) }

// Config holds the loop timing
type Config struct {
	// Interval is the cycle period
	Interval time.Duration
	// QueryPause separates consecutive nutrient queries so the sensor
	// firmware has time to recover between register reads
	QueryPause time.Duration
}

// DefaultConfig returns the timing used against the real sensor
func DefaultConfig() Config {
	return Config{
		Interval:   2 * time.Second,
		QueryPause: 250 * time.Millisecond,
	}
}

// Poller drives the acquisition loop
type Poller struct {
	cfg    Config
	sensor NutrientSensor
	adc    probe.ADC
	clock  Clock
	sinks  []Sink

	// OnSinkError, when set, receives sink failures. Sink errors never
	// stop the loop.
	OnSinkError func(err error)
}

// New returns a poller with the given acquisition sources and sinks
func New(cfg Config, sensor NutrientSensor, adc probe.ADC, clock Clock, sinks ...Sink) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.QueryPause <= 0 {
		cfg.QueryPause = DefaultConfig().QueryPause
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Poller{
		cfg:    cfg,
		sensor: sensor,
		adc:    adc,
		clock:  clock,
		sinks:  sinks,
	}
}

// Cycle performs one full measurement cycle: the three nutrient
// registers in sequence with a pause between queries, then the two
// analog channels. A failed field is recorded and the rest of the
// cycle continues.
func (p *Poller) Cycle(ctx context.Context) Reading {
	r := Reading{
		Time: p.clock.Now(),
		Errs: make(map[string]error),
	}

	nutrients := []struct {
		field string
		query func(context.Context) (int, error)
		dst   *int
	}{
		{FieldNitrogen, p.sensor.Nitrogen, &r.Nitrogen},
		{FieldPhosphorus, p.sensor.Phosphorus, &r.Phosphorus},
		{FieldPotassium, p.sensor.Potassium, &r.Potassium},
	}
	for i, n := range nutrients {
		if i > 0 {
			p.clock.Sleep(p.cfg.QueryPause, ctx.Done())
		}
		if ctx.Err() != nil {
			r.Errs[n.field] = ctx.Err()
			continue
		}
		v, err := n.query(ctx)
		if err != nil {
			r.Errs[n.field] = err
			continue
		}
		*n.dst = v
	}

	if raw, err := p.adc.Read(probe.ChannelPH); err != nil {
		r.Errs[FieldPH] = err
	} else {
		r.PH = probe.PH(raw)
	}
	if raw, err := p.adc.Read(probe.ChannelMoisture); err != nil {
		r.Errs[FieldMoisture] = err
	} else {
		r.MoisturePct = probe.MoisturePercent(raw)
	}

	if len(r.Errs) == 0 {
		r.Errs = nil
	}
	return r
}

// Run executes cycles until the context is canceled. Each finished
// cycle is handed to every sink; a sink error goes to OnSinkError and
// the loop keeps going.
func (p *Poller) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		r := p.Cycle(ctx)
		p.emit(ctx, r)

		p.clock.Sleep(p.cfg.Interval, ctx.Done())
	}
}

func (p *Poller) emit(ctx context.Context, r Reading) {
	for _, s := range p.sinks {
		if err := s.Emit(ctx, r); err != nil && p.OnSinkError != nil {
			p.OnSinkError(err)
		}
	}
}
