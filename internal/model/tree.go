package model

import (
	"math"
	"sort"
)

// treeNode is one node of a fitted CART tree. Leaves carry the prediction:
// a class code for classifiers, a mean target for regressors.
type treeNode struct {
	Leaf      bool      `json:"leaf"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Value     float64   `json:"value"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

func (n *treeNode) predict(x []float64) float64 {
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// split describes the best binary split found for a node.
type split struct {
	feature   int
	threshold float64
	score     float64
	left      []int
	right     []int
}

// growTree recursively partitions the row indices. impurity scores a subset
// of targets (lower is better); leafValue collapses a subset into the leaf
// prediction. Nodes grow until the subset is pure or no split improves it,
// so a tree trained on consistent labels reproduces them exactly.
func growTree(X [][]float64, y []float64, idx []int, impurity func([]float64, []int) float64, leafValue func([]float64, []int) float64) *treeNode {
	nodeImpurity := impurity(y, idx)
	if len(idx) <= 1 || nodeImpurity == 0 {
		return &treeNode{Leaf: true, Value: leafValue(y, idx)}
	}

	best := findBestSplit(X, y, idx, impurity)
	if best == nil || best.score >= nodeImpurity {
		return &treeNode{Leaf: true, Value: leafValue(y, idx)}
	}

	return &treeNode{
		Feature:   best.feature,
		Threshold: best.threshold,
		Left:      growTree(X, y, best.left, impurity, leafValue),
		Right:     growTree(X, y, best.right, impurity, leafValue),
	}
}

func findBestSplit(X [][]float64, y []float64, idx []int, impurity func([]float64, []int) float64) *split {
	if len(idx) == 0 {
		return nil
	}
	nFeatures := len(X[idx[0]])
	var best *split

	for f := 0; f < nFeatures; f++ {
		values := make([]float64, 0, len(idx))
		for _, i := range idx {
			values = append(values, X[i][f])
		}
		sort.Float64s(values)

		for v := 1; v < len(values); v++ {
			if values[v] == values[v-1] {
				continue
			}
			threshold := (values[v] + values[v-1]) / 2

			var left, right []int
			for _, i := range idx {
				if X[i][f] <= threshold {
					left = append(left, i)
				} else {
					right = append(right, i)
				}
			}
			if len(left) == 0 || len(right) == 0 {
				continue
			}

			n := float64(len(idx))
			score := float64(len(left))/n*impurity(y, left) + float64(len(right))/n*impurity(y, right)
			if best == nil || score < best.score {
				best = &split{feature: f, threshold: threshold, score: score, left: left, right: right}
			}
		}
	}
	return best
}

func giniImpurity(y []float64, idx []int) float64 {
	counts := make(map[float64]int)
	for _, i := range idx {
		counts[y[i]]++
	}
	n := float64(len(idx))
	gini := 1.0
	for _, c := range counts {
		p := float64(c) / n
		gini -= p * p
	}
	return gini
}

func majorityClass(y []float64, idx []int) float64 {
	counts := make(map[float64]int)
	for _, i := range idx {
		counts[y[i]]++
	}
	bestClass, bestCount := 0.0, -1
	for class, count := range counts {
		if count > bestCount || (count == bestCount && class < bestClass) {
			bestClass, bestCount = class, count
		}
	}
	return bestClass
}

func variance(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	mean := meanTarget(y, idx)
	var ss float64
	for _, i := range idx {
		d := y[i] - mean
		ss += d * d
	}
	return ss / float64(len(idx))
}

func meanTarget(y []float64, idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

// TreeClassifier is a fully grown CART classification tree.
type TreeClassifier struct {
	Root       *treeNode `json:"root"`
	NumClasses int       `json:"num_classes"`
}

// FitClassifier trains a classification tree on encoded class codes.
func FitClassifier(X [][]float64, y []int, numClasses int) *TreeClassifier {
	targets := make([]float64, len(y))
	idx := make([]int, len(y))
	for i, c := range y {
		targets[i] = float64(c)
		idx[i] = i
	}
	return &TreeClassifier{
		Root:       growTree(X, targets, idx, giniImpurity, majorityClass),
		NumClasses: numClasses,
	}
}

// Predict returns the class code for one feature vector.
func (t *TreeClassifier) Predict(x []float64) int {
	return int(math.Round(t.Root.predict(x)))
}

// TreeRegressor is a fully grown CART regression tree.
type TreeRegressor struct {
	Root *treeNode `json:"root"`
}

// FitRegressor trains a regression tree by variance reduction.
func FitRegressor(X [][]float64, y []float64) *TreeRegressor {
	idx := make([]int, len(y))
	for i := range y {
		idx[i] = i
	}
	return &TreeRegressor{Root: growTree(X, y, idx, variance, meanTarget)}
}

// Predict returns the point estimate for one feature vector. Leaf values
// are means of training targets, so predictions stay within the training
// target range.
func (t *TreeRegressor) Predict(x []float64) float64 {
	return t.Root.predict(x)
}
