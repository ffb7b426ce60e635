package classify

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestLabelCodecFirstSeenOrder(t *testing.T) {
	codec := FitLabels([]string{"Banana", "Mango", "Banana", "Guava", "Mango"})

	want := []string{"Banana", "Mango", "Guava"}
	if !reflect.DeepEqual(codec.Names(), want) {
		t.Errorf("Names = %v, want %v", codec.Names(), want)
	}
	if codec.Len() != 3 {
		t.Errorf("Len = %d, want 3", codec.Len())
	}
}

func TestLabelCodecRoundTrip(t *testing.T) {
	labels := []string{"Mango", "Guava", "Papaya", "Guava"}
	codec := FitLabels(labels)

	encoded, err := codec.EncodeAll(labels)
	if err != nil {
		t.Fatalf("EncodeAll failed: %v", err)
	}
	for i, idx := range encoded {
		name, err := codec.Decode(idx)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if name != labels[i] {
			t.Errorf("Round trip %q -> %d -> %q", labels[i], idx, name)
		}
	}
}

func TestLabelCodecUnknownLabel(t *testing.T) {
	codec := FitLabels([]string{"Mango"})

	if _, err := codec.Encode("Durian"); !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("Encode unknown: expected ErrUnknownLabel, got %v", err)
	}
	if _, err := codec.Decode(5); !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("Decode out of range: expected ErrUnknownLabel, got %v", err)
	}
	if _, err := codec.Decode(-1); !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("Decode negative: expected ErrUnknownLabel, got %v", err)
	}
}

func TestLabelCodecJSON(t *testing.T) {
	codec := FitLabels([]string{"Mango", "Banana", "Guava"})

	data, err := json.Marshal(codec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var restored LabelCodec
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(restored.Names(), codec.Names()) {
		t.Errorf("Restored names %v, want %v", restored.Names(), codec.Names())
	}

	idx, err := restored.Encode("Guava")
	if err != nil || idx != 2 {
		t.Errorf("Restored Encode(Guava) = %d, %v, want 2, nil", idx, err)
	}
}
