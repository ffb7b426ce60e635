/*
Copyright © 2026 Soilsense Authors
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"soilsense/features"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "soilsense",
	Short: "Soil measurement and plant species recommendation",
	Long: `Soilsense reads NPK, pH and moisture values from field probes over
an RS-485 half-duplex bus and recommends which plant species to grow
on the measured plot.

The recommender is a k-nearest-neighbor model fitted on a synthetic
corpus; train it once with "soilsense train", then use "poll" or
"predict" against the saved model bundle.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.soilsense.yaml)")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	// Local .env files override nothing that is already exported
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".soilsense")
	}

	viper.SetEnvPrefix("soilsense")
	viper.AutomaticEnv()

	// Plot features that are configured rather than measured each
	// cycle. Defaults describe a typical plot in the deployment region.
	viper.SetDefault("ambient.aqi", 90.0)
	viper.SetDefault("ambient.co2_ppm", 600.0)
	viper.SetDefault("ambient.no2_ppm", 30.0)
	viper.SetDefault("ambient.pm25", 35.0)
	viper.SetDefault("ambient.pm10", 70.0)
	viper.SetDefault("plot.organic_matter_pct", 3.0)
	viper.SetDefault("plot.area_m2", 400.0)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ambientFromConfig assembles the configured plot features
func ambientFromConfig() features.Ambient {
	return features.Ambient{
		AQI:           viper.GetFloat64("ambient.aqi"),
		CO2:           viper.GetFloat64("ambient.co2_ppm"),
		NO2:           viper.GetFloat64("ambient.no2_ppm"),
		PM25:          viper.GetFloat64("ambient.pm25"),
		PM10:          viper.GetFloat64("ambient.pm10"),
		OrganicMatter: viper.GetFloat64("plot.organic_matter_pct"),
		PlotAreaM2:    viper.GetFloat64("plot.area_m2"),
	}
}
