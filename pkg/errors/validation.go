package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety and correctness.
// It rejects names that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidCharm, "charm name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidCharm, "charm name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidCharm, "charm name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidCharm, "charm name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// charmNameRegex matches names accepted by Charmhub: lowercase letters,
// digits and hyphens, starting with a letter.
var charmNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidateCharmName validates a Charmhub charm name.
func ValidateCharmName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}
	if !charmNameRegex.MatchString(name) {
		return New(ErrCodeInvalidCharm, "invalid charm name: %q", name)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
