/*
Copyright © 2026 Soilsense Authors
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"soilsense/bundle"
	"soilsense/features"
)

// predictCmd represents the predict command
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Recommend a species for one set of measurements",
	Long: `Classify a single manually supplied measurement against a saved
model bundle. Air quality and plot metadata come from the config file
or environment; soil values are given as flags.

Example usage:
  soilsense predict --ph 6.8 --nitrogen 100 --phosphorus 50 --potassium 80 --moisture 55`,
	Run: func(cmd *cobra.Command, args []string) {
		bundlePath, _ := cmd.Flags().GetString("bundle")
		ph, _ := cmd.Flags().GetFloat64("ph")
		nitrogen, _ := cmd.Flags().GetInt("nitrogen")
		phosphorus, _ := cmd.Flags().GetInt("phosphorus")
		potassium, _ := cmd.Flags().GetInt("potassium")
		moisture, _ := cmd.Flags().GetInt("moisture")

		m := features.Measured{
			PH:          ph,
			Nitrogen:    nitrogen,
			Phosphorus:  phosphorus,
			Potassium:   potassium,
			MoisturePct: moisture,
		}
		if err := runPredict(bundlePath, m); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringP("bundle", "b", "model.json", "Model bundle path")
	predictCmd.Flags().Float64("ph", 7.0, "Soil pH")
	predictCmd.Flags().Int("nitrogen", 0, "Nitrogen (mg/kg)")
	predictCmd.Flags().Int("phosphorus", 0, "Phosphorus (mg/kg)")
	predictCmd.Flags().Int("potassium", 0, "Potassium (mg/kg)")
	predictCmd.Flags().Int("moisture", 0, "Soil moisture (percent)")
}

func runPredict(bundlePath string, m features.Measured) error {
	b, err := bundle.Load(bundlePath)
	if err != nil {
		return err
	}

	vec := features.Assemble(m, ambientFromConfig())
	species, err := b.Recommend(vec)
	if err != nil {
		return err
	}

	speciesStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("40")).
		Bold(true)
	fmt.Printf("Recommended species: %s\n", speciesStyle.Render(species))
	return nil
}
