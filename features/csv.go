package features

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// labelColumn is the trailing corpus column holding the species label
const labelColumn = "species"

var ErrHeaderMismatch = errors.New("corpus header does not match feature fields")

// WriteCSV writes a corpus with one header row, one row per sample,
// one column per feature in canonical order plus the species column.
func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)

	header := append(Names(), labelColumn)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing corpus header: %w", err)
	}

	row := make([]string, NumFeatures+1)
	for _, s := range samples {
		if len(s.Features) != NumFeatures {
			return fmt.Errorf("%w: got %d, want %d", ErrVectorLength, len(s.Features), NumFeatures)
		}
		for i, v := range s.Features {
			row[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		row[NumFeatures] = s.Species
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing corpus row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a corpus written by WriteCSV. The header must match
// the canonical field order exactly; a column shuffle would silently
// corrupt every downstream prediction, so it is rejected here.
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading corpus header: %w", err)
	}
	want := append(Names(), labelColumn)
	if len(header) != len(want) {
		return nil, fmt.Errorf("%w: %d columns, want %d", ErrHeaderMismatch, len(header), len(want))
	}
	for i := range want {
		if header[i] != want[i] {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrHeaderMismatch, i, header[i], want[i])
		}
	}

	var samples []Sample
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading corpus row: %w", err)
		}
		vec := make([]float64, NumFeatures)
		for i := 0; i < NumFeatures; i++ {
			vec[i], err = strconv.ParseFloat(row[i], 64)
			if err != nil {
				return nil, fmt.Errorf("parsing %s: %w", Fields[i].Name, err)
			}
		}
		samples = append(samples, Sample{Features: vec, Species: row[NumFeatures]})
	}
	return samples, nil
}
