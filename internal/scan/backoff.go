package scan

import "time"

// Backoff returns the retry delay after the given number of consecutive
// failures: min(base * 2^failures, cap). Zero or negative failure counts
// return base. The sequence is non-decreasing and bounded by cap.
func Backoff(base, cap time.Duration, failures int) time.Duration {
	if failures <= 0 {
		return base
	}
	// 2^failures overflows quickly; anything past 30 doublings is over cap.
	if failures > 30 {
		return cap
	}
	d := base << uint(failures)
	if d > cap || d <= 0 {
		return cap
	}
	return d
}
