package rs485

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakePort records operations in order and plays back scripted
// write/read results, standing in for the physical bus in tests.
type fakePort struct {
	ops []string

	writeN   int
	writeErr error
	written  []byte

	// each Read call consumes one chunk
	readChunks [][]byte
	readErr    error

	rts bool
}

func (f *fakePort) Close() error       { f.ops = append(f.ops, "close"); return nil }
func (f *fakePort) Drain() error       { f.ops = append(f.ops, "drain"); return nil }
func (f *fakePort) FlushInput() error  { f.ops = append(f.ops, "flush-in"); return nil }
func (f *fakePort) FlushOutput() error { f.ops = append(f.ops, "flush-out"); return nil }

func (f *fakePort) SetRTS(state bool) error {
	if state {
		f.ops = append(f.ops, "rts-high")
	} else {
		f.ops = append(f.ops, "rts-low")
	}
	f.rts = state
	return nil
}

func (f *fakePort) GetRTS() (bool, error) { return f.rts, nil }

func (f *fakePort) Write(data []byte) (int, error) {
	f.ops = append(f.ops, "write")
	f.written = append(f.written, data...)
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	if f.writeN >= 0 && f.writeN < len(data) {
		return f.writeN, nil
	}
	return len(data), nil
}

func (f *fakePort) WriteContext(ctx context.Context, data []byte) (int, error) {
	return f.Write(data)
}

func (f *fakePort) Read(buf []byte) (int, error) {
	f.ops = append(f.ops, "read")
	if f.readErr != nil {
		return 0, f.readErr
	}
	if len(f.readChunks) == 0 {
		return 0, nil // VTIME expired, nothing arrived
	}
	chunk := f.readChunks[0]
	f.readChunks = f.readChunks[1:]
	n := copy(buf, chunk)
	return n, nil
}

func (f *fakePort) ReadContext(ctx context.Context, buf []byte) (int, error) {
	return f.Read(buf)
}

func newTestTransceiver(t *testing.T, p Port) *Transceiver {
	t.Helper()
	tr, err := NewTransceiver(p, nil, WithSleep(func(time.Duration) {}))
	if err != nil {
		t.Fatalf("NewTransceiver failed: %v", err)
	}
	return tr
}

func TestQueryOperationOrder(t *testing.T) {
	port := &fakePort{
		writeN:     -1,
		readChunks: [][]byte{{0x01, 0x03, 0x02}, {0x00, 0x40, 0xB9, 0xB4}},
	}
	tr := newTestTransceiver(t, port)

	req := []byte{0x01, 0x03, 0x00, 0x1E, 0x00, 0x01, 0xE4, 0x0C}
	resp, err := tr.Query(context.Background(), req, 7)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(resp) != 7 {
		t.Fatalf("Expected 7 response bytes, got %d", len(resp))
	}

	want := []string{"rts-high", "write", "drain", "rts-low", "read", "read"}
	if len(port.ops) != len(want) {
		t.Fatalf("Operation sequence %v, want %v", port.ops, want)
	}
	for i := range want {
		if port.ops[i] != want[i] {
			t.Fatalf("Operation %d = %s, want %s (full sequence %v)", i, port.ops[i], want[i], port.ops)
		}
	}

	if string(port.written) != string(req) {
		t.Errorf("Written bytes %X, want %X", port.written, req)
	}
}

func TestQueryShortWriteSkipsRead(t *testing.T) {
	port := &fakePort{writeN: 3}
	tr := newTestTransceiver(t, port)

	_, err := tr.Query(context.Background(), []byte{1, 2, 3, 4, 5, 6, 7, 8}, 7)
	if !errors.Is(err, ErrWriteIncomplete) {
		t.Fatalf("Expected ErrWriteIncomplete, got %v", err)
	}

	for _, op := range port.ops {
		if op == "read" {
			t.Fatalf("Read attempted after incomplete write (sequence %v)", port.ops)
		}
	}

	// Bus must be left in receive mode
	if port.rts {
		t.Error("Transmit enable left raised after failed write")
	}
}

func TestQueryWriteErrorSkipsRead(t *testing.T) {
	port := &fakePort{writeN: -1, writeErr: errors.New("io failure")}
	tr := newTestTransceiver(t, port)

	_, err := tr.Query(context.Background(), []byte{1, 2, 3}, 7)
	if !errors.Is(err, ErrWriteIncomplete) {
		t.Fatalf("Expected ErrWriteIncomplete, got %v", err)
	}
	for _, op := range port.ops {
		if op == "read" {
			t.Fatalf("Read attempted after write error (sequence %v)", port.ops)
		}
	}
}

func TestQueryShortResponse(t *testing.T) {
	port := &fakePort{
		writeN:     -1,
		readChunks: [][]byte{{0x01, 0x03, 0x02}}, // then silence
	}
	tr := newTestTransceiver(t, port)

	_, err := tr.Query(context.Background(), []byte{1, 2, 3, 4, 5, 6, 7, 8}, 7)
	if !errors.Is(err, ErrReadIncomplete) {
		t.Fatalf("Expected ErrReadIncomplete, got %v", err)
	}
}

func TestQuerySerializesTransactions(t *testing.T) {
	// A sleep hook that yields lets concurrent Query calls interleave
	// if the mutex were missing.
	port := &fakePort{writeN: -1}
	port.readChunks = make([][]byte, 0, 40)
	for i := 0; i < 40; i++ {
		port.readChunks = append(port.readChunks, []byte{0xAA})
	}

	tr, err := NewTransceiver(port, nil, WithSleep(func(time.Duration) {
		time.Sleep(time.Microsecond)
	}))
	if err != nil {
		t.Fatalf("NewTransceiver failed: %v", err)
	}

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			tr.Query(context.Background(), []byte{1, 2, 3}, 1)
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}

	// A serialized bus never raises transmit enable while another
	// transaction still holds it.
	depth := 0
	for _, op := range port.ops {
		switch op {
		case "rts-high":
			depth++
			if depth > 1 {
				t.Fatalf("Overlapping transactions detected: %v", port.ops)
			}
		case "rts-low":
			depth--
		}
	}
}

func TestWithSettleDelayValidation(t *testing.T) {
	config := DefaultTransceiverConfig()
	if err := WithSettleDelay(5 * time.Millisecond)(&config); err != ErrInvalidConfig {
		t.Errorf("Expected ErrInvalidConfig for sub-10ms settle delay, got %v", err)
	}
	if err := WithSettleDelay(20 * time.Millisecond)(&config); err != nil {
		t.Errorf("Unexpected error for valid settle delay: %v", err)
	}
	if config.SettleDelay != 20*time.Millisecond {
		t.Errorf("SettleDelay = %v, want 20ms", config.SettleDelay)
	}
}
