/*
Copyright © 2026 Soilsense Authors
*/
package cmd

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"

	"soilsense/bundle"
	"soilsense/classify"
	"soilsense/features"
	"soilsense/synth"
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit a species recommender on a synthetic corpus",
	Long: `Generate a labeled training corpus, search the classifier's
hyperparameter grid with cross-validation, evaluate the winner on a
held-out split and save the fitted model bundle.

Example usage:
  soilsense train --out model.json
  soilsense train --samples 500 --seed 7 --folds 10 --csv corpus.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		samples, _ := cmd.Flags().GetInt("samples")
		seed, _ := cmd.Flags().GetInt64("seed")
		folds, _ := cmd.Flags().GetInt("folds")
		testFraction, _ := cmd.Flags().GetFloat64("test-fraction")
		outPath, _ := cmd.Flags().GetString("out")
		csvPath, _ := cmd.Flags().GetString("csv")

		if err := runTrain(samples, seed, folds, testFraction, outPath, csvPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().IntP("samples", "n", 300, "Samples to generate per species")
	trainCmd.Flags().Int64P("seed", "s", 42, "Corpus and fold shuffle seed")
	trainCmd.Flags().IntP("folds", "f", 5, "Cross-validation folds")
	trainCmd.Flags().Float64("test-fraction", 0.2, "Fraction of the corpus held out for evaluation")
	trainCmd.Flags().StringP("out", "o", "model.json", "Model bundle output path")
	trainCmd.Flags().String("csv", "", "Also write the generated corpus to this CSV file")
}

func runTrain(samples int, seed int64, folds int, testFraction float64, outPath, csvPath string) error {
	corpus, err := synth.Generate(samples, seed, synth.DefaultProfiles)
	if err != nil {
		return err
	}

	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return err
		}
		if err := features.WriteCSV(f, corpus); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("Corpus written to %s (%d samples)\n", csvPath, len(corpus))
	}

	train, test := splitCorpus(corpus, testFraction, seed)

	trainX, trainLabels := unzip(train)
	testX, testLabels := unzip(test)

	scaler, err := classify.FitStandardizer(trainX)
	if err != nil {
		return err
	}
	scaledTrain, err := scaler.TransformAll(trainX)
	if err != nil {
		return err
	}
	scaledTest, err := scaler.TransformAll(testX)
	if err != nil {
		return err
	}

	codec := classify.FitLabels(trainLabels)
	trainY, err := codec.EncodeAll(trainLabels)
	if err != nil {
		return err
	}
	testY, err := codec.EncodeAll(testLabels)
	if err != nil {
		return err
	}

	results, err := classify.GridSearch(scaledTrain, trainY, classify.DefaultKGrid, folds, seed)
	if err != nil {
		return err
	}
	fmt.Println(renderSearchTable(results))

	best := results[0]
	model := classify.NewClassifier(best.K, best.Weighting)
	if err := model.Fit(scaledTrain, trainY); err != nil {
		return err
	}

	pred, err := model.PredictAll(scaledTest)
	if err != nil {
		return err
	}
	ev, err := classify.Evaluate(testY, pred, codec)
	if err != nil {
		return err
	}
	fmt.Println(renderEvaluation(ev))

	b, err := bundle.New(scaler, model, codec)
	if err != nil {
		return err
	}
	if err := b.Save(outPath); err != nil {
		return err
	}

	doneStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("40")).
		Bold(true)
	fmt.Println(doneStyle.Render(fmt.Sprintf(
		"Saved bundle to %s (k=%d, %s weighting, held-out accuracy %.3f)",
		outPath, best.K, best.Weighting, ev.Accuracy)))
	return nil
}

// splitCorpus holds out a seeded random fraction for evaluation
func splitCorpus(corpus []features.Sample, testFraction float64, seed int64) (train, test []features.Sample) {
	perm := rand.New(rand.NewSource(seed)).Perm(len(corpus))
	cut := int(float64(len(corpus)) * testFraction)
	for i, idx := range perm {
		if i < cut {
			test = append(test, corpus[idx])
		} else {
			train = append(train, corpus[idx])
		}
	}
	return train, test
}

func unzip(samples []features.Sample) ([][]float64, []string) {
	x := make([][]float64, len(samples))
	labels := make([]string, len(samples))
	for i, s := range samples {
		x[i] = s.Features
		labels[i] = s.Species
	}
	return x, labels
}

// renderSearchTable shows every grid combination's CV score, best first
func renderSearchTable(results []classify.SearchResult) string {
	columns := []table.Column{
		table.NewColumn("k", "k", 5),
		table.NewColumn("weighting", "Weighting", 12),
		table.NewColumn("accuracy", "CV accuracy", 14),
	}

	rows := make([]table.Row, len(results))
	for i, r := range results {
		rows[i] = table.NewRow(table.RowData{
			"k":         r.K,
			"weighting": r.Weighting.String(),
			"accuracy":  fmt.Sprintf("%.4f", r.MeanAccuracy),
		})
	}

	return table.New(columns).WithRows(rows).View()
}

// renderEvaluation shows held-out per-class metrics
func renderEvaluation(ev *classify.Evaluation) string {
	columns := []table.Column{
		table.NewColumn("species", "Species", 14),
		table.NewColumn("precision", "Precision", 11),
		table.NewColumn("recall", "Recall", 11),
		table.NewColumn("f1", "F1", 11),
		table.NewColumn("support", "Support", 9),
	}

	rows := make([]table.Row, len(ev.Classes))
	for i, c := range ev.Classes {
		rows[i] = table.NewRow(table.RowData{
			"species":   c.Label,
			"precision": fmt.Sprintf("%.3f", c.Precision),
			"recall":    fmt.Sprintf("%.3f", c.Recall),
			"f1":        fmt.Sprintf("%.3f", c.F1),
			"support":   c.Support,
		})
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		Render(fmt.Sprintf("Held-out accuracy: %.4f", ev.Accuracy))

	return header + "\n" + table.New(columns).WithRows(rows).View()
}
