package classify

import (
	"encoding/json"
	"fmt"
)

// LabelCodec maps species names to ordinal class indices and back.
// The mapping is fixed by first-occurrence order over the corpus it
// was fitted on, so a codec is only meaningful alongside the model
// fitted with it.
type LabelCodec struct {
	names []string
	index map[string]int
}

// FitLabels builds a codec from corpus labels in first-seen order
func FitLabels(labels []string) *LabelCodec {
	c := &LabelCodec{index: make(map[string]int)}
	for _, name := range labels {
		if _, ok := c.index[name]; !ok {
			c.index[name] = len(c.names)
			c.names = append(c.names, name)
		}
	}
	return c
}

// Encode returns the class index for a species name
func (c *LabelCodec) Encode(name string) (int, error) {
	idx, ok := c.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, name)
	}
	return idx, nil
}

// EncodeAll encodes a label column
func (c *LabelCodec) EncodeAll(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, name := range labels {
		idx, err := c.Encode(name)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// Decode returns the species name for a class index
func (c *LabelCodec) Decode(idx int) (string, error) {
	if idx < 0 || idx >= len(c.names) {
		return "", fmt.Errorf("%w: index %d", ErrUnknownLabel, idx)
	}
	return c.names[idx], nil
}

// Len returns the number of fitted classes
func (c *LabelCodec) Len() int {
	return len(c.names)
}

// Names returns the fitted species names in class-index order
func (c *LabelCodec) Names() []string {
	return append([]string(nil), c.names...)
}

// MarshalJSON serializes the codec as its ordered name list
func (c *LabelCodec) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.names)
}

// UnmarshalJSON rebuilds the codec from its ordered name list
func (c *LabelCodec) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*c = *FitLabels(names)
	return nil
}
