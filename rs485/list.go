package rs485

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListPorts returns candidate serial devices for the sensor bus.
// USB RS-485 dongles and on-board UARTs are included; virtual
// terminals and pseudo-terminals are excluded.
func ListPorts() ([]string, error) {
	var ports []string

	entries, err := os.ReadDir("/dev")
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		name := entry.Name()
		if !matchesSerialDevice(name) {
			continue
		}

		fullPath := filepath.Join("/dev", name)
		if isCharacterDevice(fullPath) {
			ports = append(ports, fullPath)
		}
	}

	// Sort the ports for consistent ordering
	sort.Strings(ports)

	return ports, nil
}

// serialPrefixes lists device name prefixes for communication-capable
// UARTs across the boards this runs on (USB dongles, Pi, i.MX, ...)
var serialPrefixes = []string{
	"ttyUSB", // USB serial adapters
	"ttyACM", // USB CDC/ACM devices
	"ttyAMA", // ARM/Raspberry Pi serial
	"ttymxc", // i.MX serial ports
	"ttySAC", // Samsung serial ports
	"ttyTHS", // Tegra serial ports
	"ttyO",   // OMAP serial ports
	"ttyS",   // Standard serial ports
}

// matchesSerialDevice reports whether a /dev entry looks like a real
// UART: a known prefix followed by a numeric suffix. Names like tty1
// (virtual terminals) or ptmx never match.
func matchesSerialDevice(name string) bool {
	for _, prefix := range serialPrefixes {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		suffix := name[len(prefix):]
		if suffix == "" {
			continue
		}
		digits := true
		for _, r := range suffix {
			if r < '0' || r > '9' {
				digits = false
				break
			}
		}
		if digits {
			return true
		}
	}
	return false
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	mode := info.Mode()
	return mode&os.ModeCharDevice != 0
}

// PortInfo describes a discovered serial device
type PortInfo struct {
	Name        string
	Path        string
	Description string
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, ErrDeviceNotFound
	}

	name := filepath.Base(portPath)

	return &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: getPortDescription(name),
	}, nil
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}
