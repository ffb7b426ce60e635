/*
Copyright © 2026 Soilsense Authors
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"soilsense/bundle"
	"soilsense/features"
	"soilsense/npk"
	"soilsense/poll"
	"soilsense/probe"
	"soilsense/report"
	"soilsense/rs485"
)

// pollCmd represents the poll command
var pollCmd = &cobra.Command{
	Use:   "poll <port>",
	Short: "Continuously read the soil sensors",
	Long: `Run the acquisition loop against a live NPK sensor on an RS-485
half-duplex bus, printing one record per cycle. With a model bundle
each complete cycle also gets a species recommendation; with a broker
configured each record is published over MQTT.

Example usage:
  soilsense poll /dev/ttyUSB0
  soilsense poll /dev/ttyUSB0 --interval 5s --bundle model.json
  soilsense poll /dev/ttyUSB0 --mqtt-broker tcp://broker:1883 --mqtt-topic soil/plot1`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runPoll(cmd, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(pollCmd)

	pollCmd.Flags().IntP("baud", "b", 4800, "Baud rate")
	pollCmd.Flags().Duration("interval", 2*time.Second, "Cycle period")
	pollCmd.Flags().Duration("query-pause", 250*time.Millisecond, "Pause between nutrient register reads")
	pollCmd.Flags().Duration("settle-delay", 10*time.Millisecond, "Bus direction settle delay")
	pollCmd.Flags().Int("raw-ph", 512, "Raw ADC sample for the pH channel (fixed-sample rigs)")
	pollCmd.Flags().Int("raw-moisture", 563, "Raw ADC sample for the moisture channel (fixed-sample rigs)")
	pollCmd.Flags().String("bundle", "", "Model bundle for per-cycle species recommendations")
	pollCmd.Flags().String("mqtt-broker", "", "MQTT broker URL, e.g. tcp://localhost:1883")
	pollCmd.Flags().String("mqtt-topic", "soilsense/readings", "MQTT topic for cycle records")
	pollCmd.Flags().String("mqtt-client-id", "soilsense", "MQTT client ID")
}

func runPoll(cmd *cobra.Command, portPath string) error {
	baud, _ := cmd.Flags().GetInt("baud")
	interval, _ := cmd.Flags().GetDuration("interval")
	queryPause, _ := cmd.Flags().GetDuration("query-pause")
	settleDelay, _ := cmd.Flags().GetDuration("settle-delay")
	rawPH, _ := cmd.Flags().GetInt("raw-ph")
	rawMoisture, _ := cmd.Flags().GetInt("raw-moisture")
	bundlePath, _ := cmd.Flags().GetString("bundle")
	broker, _ := cmd.Flags().GetString("mqtt-broker")
	topic, _ := cmd.Flags().GetString("mqtt-topic")
	clientID, _ := cmd.Flags().GetString("mqtt-client-id")

	port, err := rs485.Open(portPath, rs485.WithBaudRate(baud))
	if err != nil {
		return fmt.Errorf("opening %s: %w", portPath, err)
	}
	defer port.Close()

	bus, err := rs485.NewTransceiver(port, nil, rs485.WithSettleDelay(settleDelay))
	if err != nil {
		return err
	}
	sensor := npk.NewSensor(bus)
	adc := probe.StaticADC{
		probe.ChannelPH:       rawPH,
		probe.ChannelMoisture: rawMoisture,
	}

	var recommend func(r poll.Reading) (string, error)
	if bundlePath != "" {
		b, err := bundle.Load(bundlePath)
		if err != nil {
			return err
		}
		ambient := ambientFromConfig()
		recommend = func(r poll.Reading) (string, error) {
			return b.Recommend(features.Assemble(readingMeasured(r), ambient))
		}
	}

	console := report.NewConsoleSink(os.Stdout)
	sinks := []poll.Sink{console}
	if recommend != nil {
		sinks = append(sinks, poll.SinkFunc(func(ctx context.Context, r poll.Reading) error {
			// Incomplete cycles are reported but never classified
			if !r.Complete() {
				return nil
			}
			species, err := recommend(r)
			if err != nil {
				return err
			}
			return console.EmitRecommendation(species)
		}))
	}

	if broker != "" {
		mqttSink, err := report.NewMQTTSink(report.MQTTConfig{
			Broker:   broker,
			ClientID: clientID,
			Username: viper.GetString("mqtt.username"),
			Password: viper.GetString("mqtt.password"),
			Topic:    topic,
		})
		if err != nil {
			return err
		}
		defer mqttSink.Close()
		mqttSink.Recommend = recommend
		sinks = append(sinks, mqttSink)
	}

	cfg := poll.Config{Interval: interval, QueryPause: queryPause}
	poller := poll.New(cfg, sensor, adc, poll.SystemClock{}, sinks...)
	poller.OnSinkError = func(err error) {
		fmt.Fprintf(os.Stderr, "sink error: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := poller.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// readingMeasured converts a complete cycle into the inference input
func readingMeasured(r poll.Reading) features.Measured {
	return features.Measured{
		PH:          r.PH,
		Nitrogen:    r.Nitrogen,
		Phosphorus:  r.Phosphorus,
		Potassium:   r.Potassium,
		MoisturePct: r.MoisturePct,
	}
}
