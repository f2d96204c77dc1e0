package errors

import (
	"strings"
	"unicode"
)

// ValidateColumnIndex validates a 0-based column index from user input.
func ValidateColumnIndex(name string, idx int) error {
	if idx < 0 {
		return New(ErrCodeInvalidColumn, "%s column must be non-negative, got %d", name, idx)
	}
	return nil
}

// validFormats are the export formats the pipeline can produce.
var validFormats = map[string]bool{
	"json": true,
	"dot":  true,
	"svg":  true,
	"png":  true,
}

// ValidateFormat validates an export format name.
func ValidateFormat(format string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !validFormats[format] {
		return New(ErrCodeInvalidFormat, "unsupported format %q (json, dot, svg, png)", format)
	}
	return nil
}

// ValidateSource validates a dataset source: a local path or an http(s) URL.
// Rejects empty strings, control characters, and path traversal outside the
// working tree for relative paths.
func ValidateSource(source string) error {
	if source == "" {
		return New(ErrCodeInvalidSource, "source cannot be empty")
	}
	for _, r := range source {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidSource, "source contains invalid characters")
		}
	}
	if IsURL(source) {
		return nil
	}
	if strings.Contains(source, "\\") {
		return New(ErrCodeInvalidSource, "source path cannot contain backslashes")
	}
	return nil
}

// IsURL reports whether source is an http(s) URL rather than a local path.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
