/*
Copyright © 2026 Soilsense Authors
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"soilsense/rs485"
)

// portsCmd represents the ports command
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial devices the sensor bus could be on",
	Long: `List communication-capable serial devices on the system.

USB RS-485 adapters (ttyUSB*), USB CDC/ACM devices (ttyACM*) and
on-board UARTs are included; virtual terminals and pseudo-terminals
are excluded.`,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := rs485.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		if len(ports) == 0 {
			fmt.Println("No serial ports found")
			return
		}

		pathStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

		for _, path := range ports {
			info, err := rs485.GetPortInfo(path)
			if err != nil {
				continue
			}
			fmt.Printf("%s  %s\n", pathStyle.Render(info.Path), info.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
