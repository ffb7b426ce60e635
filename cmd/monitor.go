/*
Copyright © 2026 Soilsense Authors
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"

	"soilsense/bundle"
	"soilsense/features"
	"soilsense/npk"
	"soilsense/poll"
	"soilsense/probe"
	"soilsense/rs485"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor <port>",
	Short: "Live dashboard of soil readings",
	Long: `Run the acquisition loop with a real-time terminal dashboard showing
the most recent measurement cycles, per-field failures and, with a
model bundle, the current species recommendation.

Example usage:
  soilsense monitor /dev/ttyUSB0
  soilsense monitor /dev/ttyUSB0 --interval 5s --bundle model.json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMonitor(cmd, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().IntP("baud", "b", 4800, "Baud rate")
	monitorCmd.Flags().Duration("interval", 2*time.Second, "Cycle period")
	monitorCmd.Flags().Int("raw-ph", 512, "Raw ADC sample for the pH channel (fixed-sample rigs)")
	monitorCmd.Flags().Int("raw-moisture", 563, "Raw ADC sample for the moisture channel (fixed-sample rigs)")
	monitorCmd.Flags().String("bundle", "", "Model bundle for live species recommendations")
}

// monitorKeys defines the dashboard key bindings
type monitorKeys struct {
	Quit  key.Binding
	Clear key.Binding
	Help  key.Binding
}

func (k monitorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

func (k monitorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Clear}, {k.Help, k.Quit}}
}

func newMonitorKeys() monitorKeys {
	return monitorKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear history"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// readingMsg carries one finished cycle into the TUI
type readingMsg struct {
	reading poll.Reading
	species string
}

const monitorHistory = 12

// monitorModel represents the Bubble Tea model for the monitor command
type monitorModel struct {
	portPath string
	spinner  spinner.Model
	help     help.Model
	keys     monitorKeys

	readings []poll.Reading
	species  string
	cycles   int
	width    int

	cancel context.CancelFunc
}

func runMonitor(cmd *cobra.Command, portPath string) error {
	baud, _ := cmd.Flags().GetInt("baud")
	interval, _ := cmd.Flags().GetDuration("interval")
	rawPH, _ := cmd.Flags().GetInt("raw-ph")
	rawMoisture, _ := cmd.Flags().GetInt("raw-moisture")
	bundlePath, _ := cmd.Flags().GetString("bundle")

	port, err := rs485.Open(portPath, rs485.WithBaudRate(baud))
	if err != nil {
		return fmt.Errorf("opening %s: %w", portPath, err)
	}
	defer port.Close()

	bus, err := rs485.NewTransceiver(port, nil)
	if err != nil {
		return err
	}
	sensor := npk.NewSensor(bus)
	adc := probe.StaticADC{
		probe.ChannelPH:       rawPH,
		probe.ChannelMoisture: rawMoisture,
	}

	var b *bundle.Bundle
	if bundlePath != "" {
		if b, err = bundle.Load(bundlePath); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))

	m := &monitorModel{
		portPath: portPath,
		spinner:  s,
		help:     help.New(),
		keys:     newMonitorKeys(),
		cancel:   cancel,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	// The poller runs beside the TUI and feeds it one message per cycle
	ambient := ambientFromConfig()
	sink := poll.SinkFunc(func(ctx context.Context, r poll.Reading) error {
		msg := readingMsg{reading: r}
		if b != nil && r.Complete() {
			species, err := b.Recommend(features.Assemble(readingMeasured(r), ambient))
			if err == nil {
				msg.species = species
			}
		}
		p.Send(msg)
		return nil
	})

	cfg := poll.Config{Interval: interval}
	poller := poll.New(cfg, sensor, adc, poll.SystemClock{}, sink)
	go poller.Run(ctx)

	_, err = p.Run()
	return err
}

func (m *monitorModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case readingMsg:
		m.cycles++
		m.readings = append(m.readings, msg.reading)
		if len(m.readings) > monitorHistory {
			m.readings = m.readings[len(m.readings)-monitorHistory:]
		}
		if msg.species != "" {
			m.species = msg.species
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancel()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Clear):
			m.readings = nil
			m.species = ""

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *monitorModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))
	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))
	speciesStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("40")).
		Bold(true)

	header := fmt.Sprintf("%s %s  %s",
		m.spinner.View(),
		titleStyle.Render("Soilsense Monitor"),
		statusStyle.Render(fmt.Sprintf("%s  cycles: %d", m.portPath, m.cycles)))

	body := m.readingTable()

	var recommendation string
	if m.species != "" {
		recommendation = fmt.Sprintf("%s %s",
			statusStyle.Render("recommend:"),
			speciesStyle.Render(m.species))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		body,
		recommendation,
		m.help.View(m.keys),
	)
}

// readingTable renders the recent cycles newest first
func (m *monitorModel) readingTable() string {
	columns := []table.Column{
		table.NewColumn("time", "Time", 10),
		table.NewColumn("n", "N", 6),
		table.NewColumn("p", "P", 6),
		table.NewColumn("k", "K", 6),
		table.NewColumn("ph", "pH", 7),
		table.NewColumn("moist", "Moist%", 8),
		table.NewColumn("errs", "Failed", 22),
	}

	rows := make([]table.Row, 0, len(m.readings))
	for i := len(m.readings) - 1; i >= 0; i-- {
		r := m.readings[i]
		rows = append(rows, table.NewRow(table.RowData{
			"time":  r.Time.Format("15:04:05"),
			"n":     cell(r, poll.FieldNitrogen, fmt.Sprintf("%d", r.Nitrogen)),
			"p":     cell(r, poll.FieldPhosphorus, fmt.Sprintf("%d", r.Phosphorus)),
			"k":     cell(r, poll.FieldPotassium, fmt.Sprintf("%d", r.Potassium)),
			"ph":    cell(r, poll.FieldPH, fmt.Sprintf("%.2f", r.PH)),
			"moist": cell(r, poll.FieldMoisture, fmt.Sprintf("%d", r.MoisturePct)),
			"errs":  failedList(r),
		}))
	}

	return table.New(columns).WithRows(rows).View()
}

func cell(r poll.Reading, field, formatted string) string {
	if r.Err(field) != nil {
		return "!"
	}
	return formatted
}

func failedList(r poll.Reading) string {
	if r.Complete() {
		return ""
	}
	out := ""
	for _, f := range []string{poll.FieldNitrogen, poll.FieldPhosphorus, poll.FieldPotassium, poll.FieldPH, poll.FieldMoisture} {
		if r.Err(f) != nil {
			if out != "" {
				out += ","
			}
			out += f
		}
	}
	return out
}
