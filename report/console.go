// Package report delivers finished measurement cycles to their
// consumers: a styled console line for operators and an MQTT record
// stream for downstream systems.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"soilsense/poll"
)

// ConsoleSink renders one styled line per cycle
type ConsoleSink struct {
	w io.Writer

	timeStyle    lipgloss.Style
	valueStyle   lipgloss.Style
	errorStyle   lipgloss.Style
	speciesStyle lipgloss.Style
}

// NewConsoleSink returns a sink writing styled records to w
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{
		w: w,
		timeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		speciesStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")).
			Bold(true),
	}
}

// Emit writes the reading as a single line
func (s *ConsoleSink) Emit(ctx context.Context, r poll.Reading) error {
	var b strings.Builder

	b.WriteString(s.timeStyle.Render(r.Time.Format("15:04:05")))
	b.WriteString("  ")
	b.WriteString(s.field(r, poll.FieldNitrogen, fmt.Sprintf("N=%d", r.Nitrogen)))
	b.WriteString("  ")
	b.WriteString(s.field(r, poll.FieldPhosphorus, fmt.Sprintf("P=%d", r.Phosphorus)))
	b.WriteString("  ")
	b.WriteString(s.field(r, poll.FieldPotassium, fmt.Sprintf("K=%d", r.Potassium)))
	b.WriteString("  ")
	b.WriteString(s.field(r, poll.FieldPH, fmt.Sprintf("pH=%.2f", r.PH)))
	b.WriteString("  ")
	b.WriteString(s.field(r, poll.FieldMoisture, fmt.Sprintf("moist=%d%%", r.MoisturePct)))

	if !r.Complete() {
		b.WriteString("  ")
		b.WriteString(s.errorStyle.Render("missing: " + strings.Join(missingFields(r), ", ")))
	}

	_, err := fmt.Fprintln(s.w, b.String())
	return err
}

// EmitRecommendation appends a species line after a classified cycle
func (s *ConsoleSink) EmitRecommendation(species string) error {
	_, err := fmt.Fprintf(s.w, "%s %s\n",
		s.timeStyle.Render("recommend:"),
		s.speciesStyle.Render(species))
	return err
}

func (s *ConsoleSink) field(r poll.Reading, name, formatted string) string {
	if r.Err(name) != nil {
		return s.errorStyle.Render(name + "=!")
	}
	return s.valueStyle.Render(formatted)
}

// missingFields lists the failed fields of a reading in stable order
func missingFields(r poll.Reading) []string {
	fields := make([]string, 0, len(r.Errs))
	for name := range r.Errs {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}
