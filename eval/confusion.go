package eval

// ConfusionMatrix counts binary predictions against true labels. A label is
// positive when it is greater than zero.
type ConfusionMatrix struct {
	TP, FP, TN, FN float64
}

// NewConfusionMatrix counts the predictions of one fold.
func NewConfusionMatrix(predicted, actual []float64) ConfusionMatrix {
	var m ConfusionMatrix
	for i := range actual {
		switch p, a := positive(predicted[i]), positive(actual[i]); {
		case p && a:
			m.TP++
		case p && !a:
			m.FP++
		case !p && a:
			m.FN++
		default:
			m.TN++
		}
	}
	return m
}

// Add pools the counts of another matrix into this one.
func (m ConfusionMatrix) Add(o ConfusionMatrix) ConfusionMatrix {
	return ConfusionMatrix{
		TP: m.TP + o.TP,
		FP: m.FP + o.FP,
		TN: m.TN + o.TN,
		FN: m.FN + o.FN,
	}
}

// Total is the number of predictions counted.
func (m ConfusionMatrix) Total() float64 {
	return m.TP + m.FP + m.TN + m.FN
}

// Accuracy is the fraction of correct predictions.
func (m ConfusionMatrix) Accuracy() float64 {
	if m.Total() == 0 {
		return 0
	}
	return (m.TP + m.TN) / m.Total()
}

// Precision is the fraction of positive predictions that are correct.
func (m ConfusionMatrix) Precision() float64 {
	if m.TP+m.FP == 0 {
		return 0
	}
	return m.TP / (m.TP + m.FP)
}

// Recall is the fraction of positive examples predicted positive.
func (m ConfusionMatrix) Recall() float64 {
	if m.TP+m.FN == 0 {
		return 0
	}
	return m.TP / (m.TP + m.FN)
}

// pooled accumulates a confusion matrix over every outcome.
func pooled(outcomes []Outcome) ConfusionMatrix {
	var m ConfusionMatrix
	for _, o := range outcomes {
		m = m.Add(NewConfusionMatrix(o.Predicted, o.Actual))
	}
	return m
}
