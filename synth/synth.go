// Package synth generates the labeled training corpus the recommender
// is fitted on. Each species has its own soil-feature distributions;
// air-quality features share one distribution across species since
// every plot candidate sits in the same airshed.
package synth

import (
	"errors"
	"fmt"
	"math/rand"

	"soilsense/features"
)

// Gaussian is one feature's class-conditional distribution
type Gaussian struct {
	Mean, Std float64
}

// Profile holds one species' soil-feature distributions, indexed by
// canonical feature position.
type Profile struct {
	Species string
	Soil    map[int]Gaussian
}

// airProfile is the shared air-quality distribution set
var airProfile = map[int]Gaussian{
	features.AQI:  {Mean: 90, Std: 25},
	features.CO2:  {Mean: 600, Std: 80},
	features.NO2:  {Mean: 30, Std: 10},
	features.PM25: {Mean: 35, Std: 12},
	features.PM10: {Mean: 70, Std: 20},
}

// DefaultProfiles are the five species the recommender selects
// between. Class centers are separated by at least ten standard
// deviations per soil feature, so a correctly fitted model is near
// perfectly separable; the standard deviations model probe noise and
// within-plot variation, not class overlap.
var DefaultProfiles = []Profile{
	{
		Species: "Mango",
		Soil: map[int]Gaussian{
			features.SoilPH:        {Mean: 6.8, Std: 0.06},
			features.Nitrogen:      {Mean: 100, Std: 2},
			features.Phosphorus:    {Mean: 50, Std: 1},
			features.Potassium:     {Mean: 80, Std: 3},
			features.Moisture:      {Mean: 55, Std: 1},
			features.OrganicMatter: {Mean: 3.5, Std: 0.07},
			features.PlotArea:      {Mean: 500, Std: 8},
		},
	},
	{
		Species: "Banana",
		Soil: map[int]Gaussian{
			features.SoilPH:        {Mean: 6.0, Std: 0.06},
			features.Nitrogen:      {Mean: 160, Std: 2},
			features.Phosphorus:    {Mean: 90, Std: 1},
			features.Potassium:     {Mean: 200, Std: 3},
			features.Moisture:      {Mean: 80, Std: 1},
			features.OrganicMatter: {Mean: 5.0, Std: 0.07},
			features.PlotArea:      {Mean: 200, Std: 8},
		},
	},
	{
		Species: "Guava",
		Soil: map[int]Gaussian{
			features.SoilPH:        {Mean: 7.4, Std: 0.06},
			features.Nitrogen:      {Mean: 60, Std: 2},
			features.Phosphorus:    {Mean: 30, Std: 1},
			features.Potassium:     {Mean: 50, Std: 3},
			features.Moisture:      {Mean: 40, Std: 1},
			features.OrganicMatter: {Mean: 2.0, Std: 0.07},
			features.PlotArea:      {Mean: 350, Std: 8},
		},
	},
	{
		Species: "Pomegranate",
		Soil: map[int]Gaussian{
			features.SoilPH:        {Mean: 8.0, Std: 0.06},
			features.Nitrogen:      {Mean: 40, Std: 2},
			features.Phosphorus:    {Mean: 20, Std: 1},
			features.Potassium:     {Mean: 120, Std: 3},
			features.Moisture:      {Mean: 25, Std: 1},
			features.OrganicMatter: {Mean: 1.2, Std: 0.07},
			features.PlotArea:      {Mean: 800, Std: 8},
		},
	},
	{
		Species: "Papaya",
		Soil: map[int]Gaussian{
			features.SoilPH:        {Mean: 5.2, Std: 0.06},
			features.Nitrogen:      {Mean: 130, Std: 2},
			features.Phosphorus:    {Mean: 70, Std: 1},
			features.Potassium:     {Mean: 160, Std: 3},
			features.Moisture:      {Mean: 65, Std: 1},
			features.OrganicMatter: {Mean: 4.2, Std: 0.07},
			features.PlotArea:      {Mean: 120, Std: 8},
		},
	},
}

var ErrIncompleteProfile = errors.New("species profile missing a soil feature")

// Center returns a species' soil-feature means as a Measured-style
// vector slot map; used by sanity checks and the predict command's
// examples.
func (p Profile) Center() map[int]float64 {
	center := make(map[int]float64, len(p.Soil))
	for idx, g := range p.Soil {
		center[idx] = g.Mean
	}
	return center
}

// Generate draws a balanced corpus of perClass samples per species
// from the given profiles, deterministic for a fixed seed. Every value
// is clamped to its field's physical range and rounded to the field's
// corpus precision. The corpus is globally shuffled before return so
// sample order carries no class signal.
func Generate(perClass int, seed int64, profiles []Profile) ([]features.Sample, error) {
	rng := rand.New(rand.NewSource(seed))

	samples := make([]features.Sample, 0, perClass*len(profiles))
	for _, p := range profiles {
		block, err := generateClass(rng, perClass, p)
		if err != nil {
			return nil, err
		}
		samples = append(samples, block...)
	}

	rng.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})
	return samples, nil
}

// generateClass draws one species' block, column by column in
// canonical feature order.
func generateClass(rng *rand.Rand, perClass int, p Profile) ([]features.Sample, error) {
	block := make([]features.Sample, perClass)
	for i := range block {
		block[i] = features.Sample{
			Features: make([]float64, features.NumFeatures),
			Species:  p.Species,
		}
	}

	for idx := 0; idx < features.NumFeatures; idx++ {
		g, ok := airProfile[idx]
		if !ok {
			if g, ok = p.Soil[idx]; !ok {
				return nil, fmt.Errorf("%w: %s lacks %s", ErrIncompleteProfile, p.Species, features.Fields[idx].Name)
			}
		}
		field := features.Fields[idx]
		for i := 0; i < perClass; i++ {
			v := rng.NormFloat64()*g.Std + g.Mean
			block[i].Features[idx] = field.Round(field.Clamp(v))
		}
	}
	return block, nil
}
