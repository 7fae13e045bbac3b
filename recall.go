package sigann

import "github.com/hupe1980/sigann/model"

// Recall returns the number of obtained ids that appear in expected,
// divided by k. Dividing by k rather than len(expected) keeps a short
// baseline from inflating the score. Recall is 0 when k <= 0.
func Recall(expected, obtained []model.Candidate, k int) float64 {
	if k <= 0 {
		return 0
	}

	hits := 0
	for _, o := range obtained {
		for _, x := range expected {
			if x.ID == o.ID {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(k)
}
