package report

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"soilsense/poll"
)

func completeReading() poll.Reading {
	return poll.Reading{
		Time:        time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC),
		Nitrogen:    100,
		Phosphorus:  50,
		Potassium:   80,
		PH:          6.8,
		MoisturePct: 55,
	}
}

func TestConsoleSinkCompleteReading(t *testing.T) {
	var buf strings.Builder
	sink := NewConsoleSink(&buf)

	if err := sink.Emit(context.Background(), completeReading()); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"09:30:00", "N=100", "P=50", "K=80", "pH=6.80", "moist=55%"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q: %s", want, out)
		}
	}
	if strings.Contains(out, "missing") {
		t.Errorf("Complete reading flagged as missing fields: %s", out)
	}
}

func TestConsoleSinkMarksFailedFields(t *testing.T) {
	r := completeReading()
	r.Errs = map[string]error{
		poll.FieldPotassium: errors.New("response shorter than expected"),
		poll.FieldPH:        errors.New("spi transfer failed"),
	}

	var buf strings.Builder
	if err := NewConsoleSink(&buf).Emit(context.Background(), r); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "missing: ph, potassium") {
		t.Errorf("Output does not list failed fields in order: %s", out)
	}
	if !strings.Contains(out, "N=100") {
		t.Errorf("Surviving fields dropped from output: %s", out)
	}
}

func TestNewRecordCompleteReading(t *testing.T) {
	rec := NewRecord(completeReading())

	if _, err := uuid.Parse(rec.ID); err != nil {
		t.Errorf("Record ID %q is not a UUID: %v", rec.ID, err)
	}
	if rec.Nitrogen == nil || *rec.Nitrogen != 100 {
		t.Errorf("Nitrogen = %v, want 100", rec.Nitrogen)
	}
	if rec.PH == nil || *rec.PH != 6.8 {
		t.Errorf("PH = %v, want 6.8", rec.PH)
	}
	if rec.Missing != nil {
		t.Errorf("Missing = %v, want nil", rec.Missing)
	}

	// Fresh ID per record
	if other := NewRecord(completeReading()); other.ID == rec.ID {
		t.Error("Two records share an ID")
	}
}

func TestNewRecordOmitsFailedFields(t *testing.T) {
	r := completeReading()
	r.Errs = map[string]error{
		poll.FieldNitrogen: errors.New("request frame not fully transmitted"),
		poll.FieldMoisture: errors.New("spi transfer failed"),
	}

	rec := NewRecord(r)
	if rec.Nitrogen != nil {
		t.Errorf("Failed nitrogen still present: %v", *rec.Nitrogen)
	}
	if rec.MoisturePct != nil {
		t.Errorf("Failed moisture still present: %v", *rec.MoisturePct)
	}
	if rec.Phosphorus == nil || *rec.Phosphorus != 50 {
		t.Errorf("Phosphorus = %v, want 50", rec.Phosphorus)
	}
	if want := []string{"moisture", "nitrogen"}; !reflect.DeepEqual(rec.Missing, want) {
		t.Errorf("Missing = %v, want %v", rec.Missing, want)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "nitrogen_mgkg") {
		t.Errorf("Failed field serialized: %s", data)
	}
	if !strings.Contains(string(data), `"missing":["moisture","nitrogen"]`) {
		t.Errorf("Missing list not serialized: %s", data)
	}
}
