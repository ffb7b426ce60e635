// Package probe converts raw ADC samples from the analog soil probes
// into physical units.
package probe

// ADC sample geometry and the probe supply rail. The conversions only
// depend on the rail through the pH scale factor, which cancels; it is
// kept explicit so the formula matches the probe datasheet.
const (
	ADCMax     = 1023
	RefVoltage = 3.3

	ChannelPH       = 0
	ChannelMoisture = 1
)

// ADC samples one analog channel. Board bring-up (SPI wiring, chip
// select) lives outside this package; tests and ADC-less rigs use
// StaticADC.
type ADC interface {
	Read(channel int) (int, error)
}

// StaticADC returns fixed raw samples per channel
type StaticADC map[int]int

func (s StaticADC) Read(channel int) (int, error) {
	return s[channel], nil
}

// clampRaw bounds a sample to the converter's output range
func clampRaw(raw int) int {
	if raw < 0 {
		return 0
	}
	if raw > ADCMax {
		return ADCMax
	}
	return raw
}

// PH converts a raw pH probe sample to the 0-14 pH scale
func PH(raw int) float64 {
	sample := float64(clampRaw(raw))
	voltage := sample * (RefVoltage / ADCMax)
	return voltage * (14.0 / RefVoltage)
}

// MoisturePercent converts a raw moisture probe sample to a
// volumetric moisture percentage in [0, 100]
func MoisturePercent(raw int) int {
	return clampRaw(raw) * 100 / ADCMax
}
