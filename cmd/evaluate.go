/*
Copyright © 2026 Soilsense Authors
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"soilsense/bundle"
	"soilsense/classify"
	"soilsense/features"
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <corpus.csv>",
	Short: "Score a saved model bundle against a labeled corpus",
	Long: `Load a model bundle and a labeled corpus CSV, classify every sample
and print accuracy, per-class metrics and the confusion matrix.

Example usage:
  soilsense evaluate corpus.csv --bundle model.json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bundlePath, _ := cmd.Flags().GetString("bundle")

		if err := runEvaluate(bundlePath, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringP("bundle", "b", "model.json", "Model bundle path")
}

func runEvaluate(bundlePath, csvPath string) error {
	b, err := bundle.Load(bundlePath)
	if err != nil {
		return err
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return err
	}
	defer f.Close()

	samples, err := features.ReadCSV(f)
	if err != nil {
		return err
	}

	x, labels := unzip(samples)
	scaled, err := b.Scaler.TransformAll(x)
	if err != nil {
		return err
	}
	truth, err := b.Labels.EncodeAll(labels)
	if err != nil {
		return err
	}
	pred, err := b.Model.PredictAll(scaled)
	if err != nil {
		return err
	}

	ev, err := classify.Evaluate(truth, pred, b.Labels)
	if err != nil {
		return err
	}

	fmt.Println(renderEvaluation(ev))
	fmt.Println(renderConfusion(ev, b.Labels))
	return nil
}

// renderConfusion prints the confusion matrix with species names
func renderConfusion(ev *classify.Evaluation, codec *classify.LabelCodec) string {
	names := codec.Names()

	out := "Confusion matrix (rows: actual, columns: predicted)\n"
	out += fmt.Sprintf("%-14s", "")
	for _, name := range names {
		out += fmt.Sprintf("%12s", name)
	}
	out += "\n"
	for i, row := range ev.Confusion {
		out += fmt.Sprintf("%-14s", names[i])
		for _, n := range row {
			out += fmt.Sprintf("%12d", n)
		}
		out += "\n"
	}
	return out
}
