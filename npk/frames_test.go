package npk

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestRequestFrames(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		want  []byte
	}{
		{"nitrogen", frameNitrogen, []byte{0x01, 0x03, 0x00, 0x1E, 0x00, 0x01, 0xE4, 0x0C}},
		{"phosphorus", framePhosphorus, []byte{0x01, 0x03, 0x00, 0x1F, 0x00, 0x01, 0xB5, 0xCC}},
		{"potassium", framePotassium, []byte{0x01, 0x03, 0x00, 0x20, 0x00, 0x01, 0x85, 0xC0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.frame) != RequestLen {
				t.Fatalf("Frame length %d, want %d", len(tt.frame), RequestLen)
			}
			if !bytes.Equal(tt.frame, tt.want) {
				t.Errorf("Frame %X, want %X", tt.frame, tt.want)
			}
		})
	}
}

func TestCRC16(t *testing.T) {
	// Trailers cross-checked against a reference implementation
	tests := []struct {
		body []byte
		crc  uint16
	}{
		{[]byte{0x01, 0x03, 0x00, 0x1E, 0x00, 0x01}, 0x0CE4},
		{[]byte{0x01, 0x03, 0x00, 0x1F, 0x00, 0x01}, 0xCCB5},
		{[]byte{0x01, 0x03, 0x00, 0x20, 0x00, 0x01}, 0xC085},
		{[]byte{0x01, 0x03, 0x02, 0x00, 0x40}, 0xB4B9},
	}

	for _, tt := range tests {
		if got := crc16(tt.body); got != tt.crc {
			t.Errorf("crc16(%X) = 0x%04X, want 0x%04X", tt.body, got, tt.crc)
		}
	}
}

func TestDecodeReading(t *testing.T) {
	tests := []struct {
		name    string
		resp    []byte
		want    int
		wantErr bool
	}{
		{"valid 64 mg/kg", []byte{0x01, 0x03, 0x02, 0x00, 0x40, 0xB9, 0xB4}, 64, false},
		{"valid 100 mg/kg", []byte{0x01, 0x03, 0x02, 0x00, 0x64, 0xB9, 0xAF}, 100, false},
		{"short frame", []byte{0x01, 0x03, 0x02, 0x00}, 0, true},
		{"empty frame", nil, 0, true},
		{"wrong address", []byte{0x02, 0x03, 0x02, 0x00, 0x40, 0xB9, 0xB4}, 0, true},
		{"wrong function code", []byte{0x01, 0x06, 0x02, 0x00, 0x40, 0xB9, 0xB4}, 0, true},
		{"wrong byte count", []byte{0x01, 0x03, 0x04, 0x00, 0x40, 0xB9, 0xB4}, 0, true},
		{"corrupt CRC", []byte{0x01, 0x03, 0x02, 0x00, 0x40, 0xB9, 0xB5}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeReading(tt.resp)
			if tt.wantErr {
				if !errors.Is(err, ErrBadResponse) {
					t.Fatalf("Expected ErrBadResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeReading failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Reading = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecodeReadingLowByteOnly(t *testing.T) {
	// The deployed firmware truncates to the low value byte; a reading
	// of 0x0120 must decode as 0x20, not 288.
	resp := []byte{0x01, 0x03, 0x02, 0x01, 0x20, 0xB8, 0x0C}
	got, err := decodeReading(resp)
	if err != nil {
		t.Fatalf("decodeReading failed: %v", err)
	}
	if got != 0x20 {
		t.Errorf("Reading = %d, want %d (low value byte)", got, 0x20)
	}
}

// fakeBus replays canned responses per request frame
type fakeBus struct {
	responses map[byte][]byte // keyed by register low byte
	errs      map[byte]error
	queries   [][]byte
}

func (f *fakeBus) Query(ctx context.Context, req []byte, respLen int) ([]byte, error) {
	f.queries = append(f.queries, append([]byte(nil), req...))
	reg := req[3]
	if err, ok := f.errs[reg]; ok {
		return nil, err
	}
	return f.responses[reg], nil
}

func TestSensorReadsEachNutrient(t *testing.T) {
	bus := &fakeBus{
		responses: map[byte][]byte{
			0x1E: {0x01, 0x03, 0x02, 0x00, 0x64, 0xB9, 0xAF}, // N = 100
			0x1F: {0x01, 0x03, 0x02, 0x00, 0x30, 0xB8, 0x50}, // P = 48
			0x20: {0x01, 0x03, 0x02, 0x00, 0x50, 0xB8, 0x78}, // K = 80
		},
	}
	sensor := NewSensor(bus)
	ctx := context.Background()

	n, err := sensor.Nitrogen(ctx)
	if err != nil || n != 100 {
		t.Errorf("Nitrogen = %d, %v; want 100, nil", n, err)
	}
	p, err := sensor.Phosphorus(ctx)
	if err != nil || p != 48 {
		t.Errorf("Phosphorus = %d, %v; want 48, nil", p, err)
	}
	k, err := sensor.Potassium(ctx)
	if err != nil || k != 80 {
		t.Errorf("Potassium = %d, %v; want 80, nil", k, err)
	}

	if len(bus.queries) != 3 {
		t.Fatalf("Expected 3 bus transactions, got %d", len(bus.queries))
	}
}

func TestSensorPropagatesBusFailure(t *testing.T) {
	busErr := errors.New("bus offline")
	bus := &fakeBus{
		errs: map[byte]error{0x1E: busErr},
		responses: map[byte][]byte{
			0x1F: {0x01, 0x03, 0x02, 0x00, 0x30, 0xB8, 0x50},
		},
	}
	sensor := NewSensor(bus)
	ctx := context.Background()

	if _, err := sensor.Nitrogen(ctx); !errors.Is(err, busErr) {
		t.Errorf("Expected wrapped bus error, got %v", err)
	}

	// The failure is local to the nitrogen query
	if p, err := sensor.Phosphorus(ctx); err != nil || p != 48 {
		t.Errorf("Phosphorus = %d, %v; want 48, nil", p, err)
	}
}
