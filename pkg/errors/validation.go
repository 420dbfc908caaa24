package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxNameLength bounds saved calculation names.
const maxNameLength = 128

// ValidateName validates a saved calculation name.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only names
//   - No control characters
//   - Maximum length of 128 characters
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeMissingInput, "calculation name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "calculation name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "calculation name contains invalid control characters")
		}
	}

	return nil
}

// ValidateParameter checks a driver parameter supplied by a user.
//
// Zero and NaN are how hosts represent a blank or non-numeric field, so they
// are reported as MISSING_INPUT. Negative or infinite values describe a
// driver that cannot exist and are reported as INFEASIBLE_DESIGN.
func ValidateParameter(name string, v float64) error {
	switch {
	case v == 0 || math.IsNaN(v):
		return New(ErrCodeMissingInput, "%s is required", name)
	case v < 0 || math.IsInf(v, 0):
		return New(ErrCodeInfeasibleDesign, "%s must be a positive finite number, got %v", name, v)
	}
	return nil
}

// ValidateDimension checks a length or volume that feeds geometry.
// Any value that is not strictly positive and finite is NON_POSITIVE_GEOMETRY.
func ValidateDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeNonPositiveGeometry, "%s must be a positive finite number, got %v", name, v)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
