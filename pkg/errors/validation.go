package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateKey validates a graph store key for safety and correctness.
// Keys end up in file names and database documents, so the rules are
// conservative:
//   - No empty keys
//   - No control characters
//   - No path traversal sequences (.., /, \)
//   - Maximum length of 128 characters
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "key cannot be empty")
	}

	if len(key) > 128 {
		return New(ErrCodeInvalidKey, "key too long (max 128 characters)")
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "key contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidKey, "key contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateTolerance checks a match tolerance.
func ValidateTolerance(tol float64) error {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol <= 0 {
		return New(ErrCodeInvalidInput, "tolerance must be a positive number, got %g", tol)
	}
	if tol >= 1 {
		return New(ErrCodeInvalidInput, "tolerance %g is larger than a limb; want < 1", tol)
	}
	return nil
}

// ValidateGrid checks a canonical key grid size.
func ValidateGrid(grid float64) error {
	if math.IsNaN(grid) || math.IsInf(grid, 0) || grid <= 0 {
		return New(ErrCodeInvalidInput, "grid must be a positive number, got %g", grid)
	}
	return nil
}

// ValidateCount checks a positive integer option such as workers or
// iterations, bounded by limit.
func ValidateCount(name string, n, limit int) error {
	if n < 1 {
		return New(ErrCodeInvalidInput, "%s must be at least 1, got %d", name, n)
	}
	if n > limit {
		return New(ErrCodeInvalidInput, "%s must be at most %d, got %d", name, limit, n)
	}
	return nil
}
