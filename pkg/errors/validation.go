package errors

import "github.com/chewxy/math32"

// ValidateRange checks a [lo, hi] float range for a named field: both ends
// finite and non-negative, lo <= hi.
func ValidateRange(field string, lo, hi float32) error {
	if math32.IsNaN(lo) || math32.IsNaN(hi) || math32.IsInf(lo, 0) || math32.IsInf(hi, 0) {
		return New(ErrCodeInvalidConfig, "%s: range must be finite", field)
	}
	if lo < 0 || hi < 0 {
		return New(ErrCodeInvalidConfig, "%s: range must be non-negative (got %g..%g)", field, lo, hi)
	}
	if lo > hi {
		return New(ErrCodeInvalidConfig, "%s: min %g exceeds max %g", field, lo, hi)
	}
	return nil
}

// ValidateIntRange checks an integer [lo, hi] range: non-negative, lo <= hi.
func ValidateIntRange(field string, lo, hi int) error {
	if lo < 0 || hi < 0 {
		return New(ErrCodeInvalidConfig, "%s: range must be non-negative (got %d..%d)", field, lo, hi)
	}
	if lo > hi {
		return New(ErrCodeInvalidConfig, "%s: min %d exceeds max %d", field, lo, hi)
	}
	return nil
}

// ValidateProbability checks that p is in [0, 1].
func ValidateProbability(field string, p float32) error {
	if !(p >= 0 && p <= 1) {
		return New(ErrCodeInvalidConfig, "%s: probability must be in [0, 1] (got %g)", field, p)
	}
	return nil
}

// ValidateNonNegative checks that v is a non-negative number. Positive
// infinity is allowed; it is meaningful for cutoff-style thresholds.
func ValidateNonNegative(field string, v float32) error {
	if !(v >= 0) {
		return New(ErrCodeInvalidConfig, "%s: must be non-negative (got %g)", field, v)
	}
	return nil
}

// ValidatePositive checks that v is a finite number greater than zero.
func ValidatePositive(field string, v float32) error {
	if !(v > 0) || math32.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s: must be positive and finite (got %g)", field, v)
	}
	return nil
}
