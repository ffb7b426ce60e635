// Package rs485 provides half-duplex serial communication for the
// soil sensor bus.
//
// The package has two layers. The lower layer is a termios serial
// port for Linux systems (x86_64 and ARM) with explicit RTS control,
// since most RS-485 adapters wire the transceiver's DE/RE pins to RTS.
// The upper layer is a Transceiver that serializes whole
// request/response transactions over the shared two-wire bus.
//
// # Basic Usage
//
// Open a port with the default sensor-link configuration (4800 8N1):
//
//	port, err := rs485.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
// # Configuration Options
//
// Use functional options for custom configuration:
//
//	port, err := rs485.Open("/dev/ttyUSB0",
//	    rs485.WithBaudRate(9600),
//	    rs485.WithReadTimeout(300*time.Millisecond),
//	    rs485.WithInitialRTS(false),
//	)
//
// # Half-Duplex Transactions
//
// A Transceiver owns the bus direction line and the settle delays the
// line driver needs around each direction switch. Only one transaction
// can be in flight at a time; Query blocks until the bus is free.
//
//	tr, err := rs485.NewTransceiver(port, nil) // nil: direction via RTS
//	resp, err := tr.Query(ctx, requestFrame, 7)
//
// A request that is not fully accepted by the driver never proceeds to
// a read: the caller gets ErrWriteIncomplete instead of a stale or
// truncated response. Short reads surface as ErrReadIncomplete once
// the port's read window has expired.
//
// # Port Discovery
//
// List candidate serial devices:
//
//	ports, err := rs485.ListPorts()
//	for _, p := range ports {
//	    info, _ := rs485.GetPortInfo(p)
//	    fmt.Printf("%s: %s\n", info.Path, info.Description)
//	}
//
// # Error Handling
//
// The package exposes sentinel errors for use with errors.Is:
//
//	if errors.Is(err, rs485.ErrWriteIncomplete) {
//	    // request frame never made it onto the wire
//	}
//
// # Default Configuration
//
//   - BaudRate: 4800
//   - DataBits: 8
//   - StopBits: 1
//   - Parity: None
//   - ReadTimeout: 500ms
//   - WriteMode: Buffered
//   - SettleDelay: 10ms (Transceiver)
package rs485
