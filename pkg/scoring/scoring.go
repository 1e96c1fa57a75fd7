// Package scoring turns raw model outputs into ranked categories.
package scoring

import (
	"math"
	"sort"

	"github.com/user/vidaction/pkg/ports"
)

// Softmax converts logits into probabilities that sum to 1.
// The maximum logit is subtracted first so large inputs do not overflow.
func Softmax(logits []float32) []float32 {
	out := make([]float32, len(logits))
	if len(logits) == 0 {
		return out
	}

	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}

	var total float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxLogit))
		out[i] = float32(e)
		total += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / total)
	}
	return out
}

// TopK pairs scores with labels and returns at most k categories ordered by
// descending score. Ties keep label order. A k of zero or less returns all.
// Scores beyond len(labels) are ignored.
func TopK(labels []string, scores []float32, k int) []ports.Category {
	n := len(scores)
	if len(labels) < n {
		n = len(labels)
	}

	categories := make([]ports.Category, n)
	for i := 0; i < n; i++ {
		categories[i] = ports.Category{Label: labels[i], Score: scores[i]}
	}
	return Cap(categories, k)
}

// Cap sorts categories by descending score (stable) and truncates to k.
// It never pads, and k <= 0 means no cap. The input slice is not modified.
func Cap(categories []ports.Category, k int) []ports.Category {
	if categories == nil {
		return nil
	}
	out := ports.CloneCategories(categories)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}
