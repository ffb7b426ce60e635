package features

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestFieldTableShape(t *testing.T) {
	if NumFeatures != 12 {
		t.Fatalf("NumFeatures = %d, want 12", NumFeatures)
	}
	for i, f := range Fields {
		if f.Name == "" {
			t.Errorf("Field %d has no name", i)
		}
		if f.Min >= f.Max {
			t.Errorf("Field %s has degenerate range [%v, %v]", f.Name, f.Min, f.Max)
		}
	}
	if Fields[SoilPH].Min != 4.0 || Fields[SoilPH].Max != 9.0 {
		t.Errorf("soil_ph range [%v, %v], want [4, 9]", Fields[SoilPH].Min, Fields[SoilPH].Max)
	}
}

func TestClamp(t *testing.T) {
	vec := make([]float64, NumFeatures)
	for i := range vec {
		vec[i] = Fields[i].Max + 100
	}
	vec[SoilPH] = 2.0 // below range

	got, err := Clamp(vec)
	if err != nil {
		t.Fatalf("Clamp failed: %v", err)
	}
	for i, v := range got {
		if v < Fields[i].Min || v > Fields[i].Max {
			t.Errorf("Feature %s = %v outside [%v, %v]", Fields[i].Name, v, Fields[i].Min, Fields[i].Max)
		}
	}
	if got[SoilPH] != 4.0 {
		t.Errorf("soil_ph clamped to %v, want 4.0", got[SoilPH])
	}
}

func TestClampRejectsWrongLength(t *testing.T) {
	_, err := Clamp(make([]float64, NumFeatures-1))
	if !errors.Is(err, ErrVectorLength) {
		t.Errorf("Expected ErrVectorLength, got %v", err)
	}
}

func TestFieldRound(t *testing.T) {
	tests := []struct {
		field Field
		in    float64
		want  float64
	}{
		{Fields[SoilPH], 6.84, 6.8},
		{Fields[SoilPH], 6.87, 6.9},
		{Fields[Nitrogen], 99.6, 100},
		{Fields[PM25], 35.27, 35.3},
	}
	for _, tt := range tests {
		if got := tt.field.Round(tt.in); got != tt.want {
			t.Errorf("%s.Round(%v) = %v, want %v", tt.field.Name, tt.in, got, tt.want)
		}
	}
}

func TestAssembleOrderAndClamping(t *testing.T) {
	m := Measured{PH: 6.8, Nitrogen: 100, Phosphorus: 50, Potassium: 80, MoisturePct: 55}
	a := Ambient{AQI: 90, CO2: 600, NO2: 30, PM25: 35, PM10: 70, OrganicMatter: 3.5, PlotAreaM2: 500}

	vec := Assemble(m, a)
	if len(vec) != NumFeatures {
		t.Fatalf("Assembled vector length %d, want %d", len(vec), NumFeatures)
	}
	if vec[SoilPH] != 6.8 || vec[Nitrogen] != 100 || vec[PlotArea] != 500 {
		t.Errorf("Assembled vector misordered: %v", vec)
	}

	// Out-of-range measurements clamp to physical bounds
	hot := Assemble(Measured{PH: 13.9, Nitrogen: 9999}, a)
	if hot[SoilPH] != 9.0 {
		t.Errorf("soil_ph = %v, want clamped 9.0", hot[SoilPH])
	}
	if hot[Nitrogen] != 200 {
		t.Errorf("nitrogen = %v, want clamped 200", hot[Nitrogen])
	}
}

func TestCSVRoundTrip(t *testing.T) {
	samples := []Sample{
		{Features: []float64{90, 600, 30, 35, 70, 6.8, 100, 50, 80, 55, 3.5, 500}, Species: "Mango"},
		{Features: []float64{85, 580, 28.5, 33.1, 65, 6.0, 160, 90, 200, 80, 5.0, 200}, Species: "Banana"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, samples); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if !reflect.DeepEqual(samples, got) {
		t.Errorf("Round trip mismatch:\n got %v\nwant %v", got, samples)
	}
}

func TestReadCSVRejectsShuffledHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []Sample{{Features: make([]float64, NumFeatures), Species: "Mango"}}); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	// Swap the first two column names
	text := buf.String()
	shuffled := strings.Replace(text, "aqi,co2_ppm", "co2_ppm,aqi", 1)

	_, err := ReadCSV(strings.NewReader(shuffled))
	if !errors.Is(err, ErrHeaderMismatch) {
		t.Errorf("Expected ErrHeaderMismatch, got %v", err)
	}
}

func TestReadCSVRejectsMissingColumn(t *testing.T) {
	header := strings.Join(Names()[:NumFeatures-1], ",") + "," + "species"
	_, err := ReadCSV(strings.NewReader(header + "\n"))
	if !errors.Is(err, ErrHeaderMismatch) {
		t.Errorf("Expected ErrHeaderMismatch, got %v", err)
	}
}
