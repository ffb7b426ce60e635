// Package features defines the measurement feature vector shared by
// training and inference. Field order is the contract: the corpus
// columns, the fitted standardizer statistics and the classifier's
// reference set all index features by position, so the order here is
// fixed and must never be rearranged.
package features

import (
	"errors"
	"fmt"
	"math"
)

// Field indices into a feature vector
const (
	AQI = iota
	CO2
	NO2
	PM25
	PM10
	SoilPH
	Nitrogen
	Phosphorus
	Potassium
	Moisture
	OrganicMatter
	PlotArea

	NumFeatures
)

// Field describes one feature: its corpus column name, the physical
// range readings are clamped to, and the decimal precision stored in
// the corpus.
type Field struct {
	Name     string
	Min, Max float64
	Decimals int
}

// Fields is the ordered feature table. Index positions match the
// constants above.
var Fields = [NumFeatures]Field{
	{Name: "aqi", Min: 0, Max: 500, Decimals: 0},
	{Name: "co2_ppm", Min: 350, Max: 2000, Decimals: 0},
	{Name: "no2_ppm", Min: 0, Max: 200, Decimals: 1},
	{Name: "pm25", Min: 0, Max: 500, Decimals: 1},
	{Name: "pm10", Min: 0, Max: 600, Decimals: 1},
	{Name: "soil_ph", Min: 4.0, Max: 9.0, Decimals: 1},
	{Name: "nitrogen_mgkg", Min: 0, Max: 200, Decimals: 0},
	{Name: "phosphorus_mgkg", Min: 0, Max: 150, Decimals: 0},
	{Name: "potassium_mgkg", Min: 0, Max: 250, Decimals: 0},
	{Name: "moisture_pct", Min: 0, Max: 100, Decimals: 0},
	{Name: "organic_matter_pct", Min: 0, Max: 10, Decimals: 1},
	{Name: "plot_area_m2", Min: 10, Max: 10000, Decimals: 0},
}

var ErrVectorLength = errors.New("feature vector has wrong length")

// Names returns the corpus column names in field order
func Names() []string {
	names := make([]string, NumFeatures)
	for i, f := range Fields {
		names[i] = f.Name
	}
	return names
}

// Clamp bounds a single feature value to its physical range
func (f Field) Clamp(v float64) float64 {
	if v < f.Min {
		return f.Min
	}
	if v > f.Max {
		return f.Max
	}
	return v
}

// Round quantizes a value to the field's corpus precision
func (f Field) Round(v float64) float64 {
	scale := math.Pow10(f.Decimals)
	return math.Round(v*scale) / scale
}

// Clamp bounds every feature of a vector to its physical range,
// returning a new vector.
func Clamp(vec []float64) ([]float64, error) {
	if len(vec) != NumFeatures {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrVectorLength, len(vec), NumFeatures)
	}
	out := make([]float64, NumFeatures)
	for i, v := range vec {
		out[i] = Fields[i].Clamp(v)
	}
	return out, nil
}

// Sample is one labeled feature vector of a training corpus
type Sample struct {
	Features []float64
	Species  string
}

// Measured holds the live soil readings of one acquisition cycle
type Measured struct {
	PH          float64
	Nitrogen    int
	Phosphorus  int
	Potassium   int
	MoisturePct int
}

// Ambient holds the slowly-varying plot features that are configured
// rather than measured each cycle: local air quality and plot
// metadata.
type Ambient struct {
	AQI           float64
	CO2           float64
	NO2           float64
	PM25          float64
	PM10          float64
	OrganicMatter float64
	PlotAreaM2    float64
}

// Assemble builds a clamped inference vector from live measurements
// and configured ambient values, in canonical field order.
func Assemble(m Measured, a Ambient) []float64 {
	vec := make([]float64, NumFeatures)
	vec[AQI] = a.AQI
	vec[CO2] = a.CO2
	vec[NO2] = a.NO2
	vec[PM25] = a.PM25
	vec[PM10] = a.PM10
	vec[SoilPH] = m.PH
	vec[Nitrogen] = float64(m.Nitrogen)
	vec[Phosphorus] = float64(m.Phosphorus)
	vec[Potassium] = float64(m.Potassium)
	vec[Moisture] = float64(m.MoisturePct)
	vec[OrganicMatter] = a.OrganicMatter
	vec[PlotArea] = a.PlotAreaM2
	for i := range vec {
		vec[i] = Fields[i].Clamp(vec[i])
	}
	return vec
}
