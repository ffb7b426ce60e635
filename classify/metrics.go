package classify

// ClassReport holds one class's held-out metrics
type ClassReport struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Evaluation is a full held-out scoring of a fitted model
type Evaluation struct {
	Accuracy float64
	Classes  []ClassReport
	// Confusion[i][j] counts samples of true class i predicted as j
	Confusion [][]int
}

// Evaluate scores predictions against true labels. Labels are class
// indices; the codec supplies the human-readable names.
func Evaluate(truth, pred []int, codec *LabelCodec) (*Evaluation, error) {
	if len(truth) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	if len(truth) != len(pred) {
		return nil, ErrDimensionMismatch
	}

	n := codec.Len()
	ev := &Evaluation{
		Classes:   make([]ClassReport, n),
		Confusion: make([][]int, n),
	}
	for i := range ev.Confusion {
		ev.Confusion[i] = make([]int, n)
	}

	correct := 0
	for i, t := range truth {
		p := pred[i]
		if t < 0 || t >= n || p < 0 || p >= n {
			return nil, ErrUnknownLabel
		}
		ev.Confusion[t][p]++
		if t == p {
			correct++
		}
	}
	ev.Accuracy = float64(correct) / float64(len(truth))

	for c := 0; c < n; c++ {
		name, err := codec.Decode(c)
		if err != nil {
			return nil, err
		}

		tp := ev.Confusion[c][c]
		predicted, actual := 0, 0
		for other := 0; other < n; other++ {
			predicted += ev.Confusion[other][c]
			actual += ev.Confusion[c][other]
		}

		report := ClassReport{Label: name, Support: actual}
		if predicted > 0 {
			report.Precision = float64(tp) / float64(predicted)
		}
		if actual > 0 {
			report.Recall = float64(tp) / float64(actual)
		}
		if report.Precision+report.Recall > 0 {
			report.F1 = 2 * report.Precision * report.Recall / (report.Precision + report.Recall)
		}
		ev.Classes[c] = report
	}
	return ev, nil
}
