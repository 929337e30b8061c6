package errors

import (
	"regexp"
	"unicode"
)

// MaxJobNameLength bounds job names accepted from untrusted input.
const MaxJobNameLength = 256

// ValidateJobName checks a job name from untrusted input. Names end up as
// SVG ids and labels, so control characters are rejected.
//
// The validation rules:
//   - No empty names
//   - No control characters or null bytes
//   - Maximum length of MaxJobNameLength bytes
func ValidateJobName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidWorkflow, "job name cannot be empty")
	}

	if len(name) > MaxJobNameLength {
		return New(ErrCodeInvalidWorkflow, "job name too long (max %d characters)", MaxJobNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidWorkflow, "job name %q contains invalid control characters", name)
		}
	}

	return nil
}

// HashLength is the length of a hex SHA-256 digest.
const HashLength = 64

// hashRegex matches a lowercase hex SHA-256 digest.
var hashRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ValidateHash checks that s is a workflow or layout content hash.
func ValidateHash(s string) error {
	if !hashRegex.MatchString(s) {
		return New(ErrCodeInvalidHash, "invalid hash %q: want 64 lowercase hex characters", s)
	}
	return nil
}
