package errors

import (
	"strings"
	"unicode"
)

// maxStemLength bounds output file stems.
const maxStemLength = 200

// ValidateStem validates a program filename stem.
//
// The stem becomes the prefix of every output file (<stem>_WG.pgm, ...), so it
// must be a plain basename:
//   - not empty, at most 200 characters
//   - no control characters or null bytes
//   - no path separators or traversal sequences
//   - no extension-only or hidden names
func ValidateStem(stem string) error {
	if stem == "" {
		return New(ErrCodeConfiguration, "filename stem cannot be empty")
	}

	if len(stem) > maxStemLength {
		return New(ErrCodeConfiguration, "filename stem too long (max %d characters)", maxStemLength)
	}

	for _, r := range stem {
		if unicode.IsControl(r) {
			return New(ErrCodeConfiguration, "filename stem %q contains control characters", stem)
		}
	}

	if strings.ContainsAny(stem, "/\\") {
		return New(ErrCodeConfiguration, "filename stem %q cannot contain path separators", stem)
	}

	if strings.Contains(stem, "..") {
		return New(ErrCodeConfiguration, "filename stem %q cannot contain path traversal sequences (..)", stem)
	}

	if strings.HasPrefix(stem, ".") {
		return New(ErrCodeConfiguration, "filename stem %q cannot be a hidden file", stem)
	}

	return nil
}

// ValidateDir validates an output directory argument.
// Empty means the current directory and is accepted.
func ValidateDir(dir string) error {
	for _, r := range dir {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeConfiguration, "output directory %q contains invalid characters", dir)
		}
	}
	return nil
}
