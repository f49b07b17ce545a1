package analytics

import (
	"math"

	"hermes/pkg/errors"
)

// LogisticModel is a single-feature logistic classifier predicting whether
// the next-day return is positive.
type LogisticModel struct {
	Weight float64 `json:"weight"`
	Bias   float64 `json:"bias"`
	N      int     `json:"n"`
}

// Fixed training schedule keeps the fit deterministic across runs
const (
	logisticIterations   = 500
	logisticLearningRate = 0.1
)

// FitLogistic trains by batch gradient descent with a fixed iteration count.
// Inputs with a non-finite feature are skipped. Fewer than 2 usable
// observations is ErrInsufficientData.
func FitLogistic(xs []float64, ys []bool) (*LogisticModel, error) {
	if len(xs) != len(ys) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "feature/target length mismatch: %d vs %d", len(xs), len(ys))
	}

	fx := make([]float64, 0, len(xs))
	fy := make([]float64, 0, len(xs))
	for i, x := range xs {
		if !finite(x) {
			continue
		}
		fx = append(fx, x)
		target := 0.0
		if ys[i] {
			target = 1.0
		}
		fy = append(fy, target)
	}
	if len(fx) < 2 {
		return nil, errors.Wrapf(errors.ErrInsufficientData, "need at least 2 finite observations, have %d", len(fx))
	}

	m := &LogisticModel{N: len(fx)}
	inv := 1.0 / float64(len(fx))
	for iter := 0; iter < logisticIterations; iter++ {
		var gradW, gradB float64
		for i, x := range fx {
			p := sigmoid(m.Weight*x + m.Bias)
			diff := p - fy[i]
			gradW += diff * x
			gradB += diff
		}
		m.Weight -= logisticLearningRate * gradW * inv
		m.Bias -= logisticLearningRate * gradB * inv
	}
	return m, nil
}

// PredictProb returns P(up) for the feature value
func (m *LogisticModel) PredictProb(x float64) float64 {
	return sigmoid(m.Weight*x + m.Bias)
}

// Predict classifies at the 0.5 boundary
func (m *LogisticModel) Predict(x float64) bool {
	return m.PredictProb(x) >= 0.5
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// DecisionTree is a depth-bounded binary classification tree over a small
// feature vector. The bounded depth is the point: with two features and
// maxDepth 2 the model stays a shallow, inspectable decision boundary
// rather than a memorized table.
type DecisionTree struct {
	MaxDepth int       `json:"max_depth"`
	Root     *treeNode `json:"root"`
}

type treeNode struct {
	// Leaf fields
	Leaf       bool `json:"leaf"`
	Prediction bool `json:"prediction"`

	// Split fields
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      *treeNode `json:"left,omitempty"`  // feature <= threshold
	Right     *treeNode `json:"right,omitempty"` // feature > threshold
}

// FitTree grows a gini-impurity decision tree of at most maxDepth levels.
// Rows with any non-finite feature are skipped.
func FitTree(features [][]float64, ys []bool, maxDepth int) (*DecisionTree, error) {
	if len(features) != len(ys) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "feature/target length mismatch: %d vs %d", len(features), len(ys))
	}
	if maxDepth < 1 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "maxDepth must be positive, got %d", maxDepth)
	}

	rows := make([][]float64, 0, len(features))
	labels := make([]bool, 0, len(ys))
	for i, row := range features {
		if !finiteRow(row) {
			continue
		}
		rows = append(rows, row)
		labels = append(labels, ys[i])
	}
	if len(rows) < 2 {
		return nil, errors.Wrapf(errors.ErrInsufficientData, "need at least 2 finite observations, have %d", len(rows))
	}

	return &DecisionTree{
		MaxDepth: maxDepth,
		Root:     growNode(rows, labels, maxDepth),
	}, nil
}

// Predict walks the tree for one feature vector
func (t *DecisionTree) Predict(row []float64) bool {
	node := t.Root
	for !node.Leaf {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Prediction
}

func growNode(rows [][]float64, labels []bool, depth int) *treeNode {
	ups := countTrue(labels)
	if depth == 0 || ups == 0 || ups == len(labels) {
		return &treeNode{Leaf: true, Prediction: ups*2 >= len(labels)}
	}

	feature, threshold, ok := bestSplit(rows, labels)
	if !ok {
		return &treeNode{Leaf: true, Prediction: ups*2 >= len(labels)}
	}

	var leftRows, rightRows [][]float64
	var leftLabels, rightLabels []bool
	for i, row := range rows {
		if row[feature] <= threshold {
			leftRows = append(leftRows, row)
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightRows = append(rightRows, row)
			rightLabels = append(rightLabels, labels[i])
		}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growNode(leftRows, leftLabels, depth-1),
		Right:     growNode(rightRows, rightLabels, depth-1),
	}
}

// bestSplit scans midpoints between adjacent distinct feature values and
// returns the split with the lowest weighted gini impurity.
func bestSplit(rows [][]float64, labels []bool) (feature int, threshold float64, ok bool) {
	bestGini := math.Inf(1)
	nFeatures := len(rows[0])

	for f := 0; f < nFeatures; f++ {
		values := distinctSorted(rows, f)
		for i := 1; i < len(values); i++ {
			mid := (values[i-1] + values[i]) / 2

			var leftUp, leftN, rightUp, rightN int
			for j, row := range rows {
				if row[f] <= mid {
					leftN++
					if labels[j] {
						leftUp++
					}
				} else {
					rightN++
					if labels[j] {
						rightUp++
					}
				}
			}
			if leftN == 0 || rightN == 0 {
				continue
			}

			total := float64(leftN + rightN)
			g := float64(leftN)/total*gini(leftUp, leftN) + float64(rightN)/total*gini(rightUp, rightN)
			if g < bestGini {
				bestGini = g
				feature = f
				threshold = mid
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func gini(ups, n int) float64 {
	p := float64(ups) / float64(n)
	return 2 * p * (1 - p)
}

func distinctSorted(rows [][]float64, feature int) []float64 {
	seen := make(map[float64]struct{}, len(rows))
	out := make([]float64, 0, len(rows))
	for _, row := range rows {
		if _, dup := seen[row[feature]]; dup {
			continue
		}
		seen[row[feature]] = struct{}{}
		out = append(out, row[feature])
	}
	// insertion sort, feature cardinality is tiny
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func countTrue(labels []bool) int {
	n := 0
	for _, l := range labels {
		if l {
			n++
		}
	}
	return n
}

func finiteRow(row []float64) bool {
	for _, v := range row {
		if !finite(v) {
			return false
		}
	}
	return true
}
