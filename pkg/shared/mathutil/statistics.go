// Package mathutil provides the numeric primitive the performance
// tracker builds on: an O(1) running mean update.
package mathutil

// RunningMean folds a new sample into a count/mean pair in O(1), the
// Welford update used by the performance tracker to avoid rescanning
// full call histories on every recorded outcome.
func RunningMean(count int64, mean, sample float64) (int64, float64) {
	count++
	mean += (sample - mean) / float64(count)
	return count, mean
}
