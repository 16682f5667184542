package middleware

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Input validation and sanitization utilities

// ValidateFilename accepts a bare file name (no directories) used for language
// detection and report naming.
func ValidateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("filename too long (max 255 chars)")
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("filename must not contain a path")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid filename")
	}

	dangerous := []string{"\x00", "$(", "`", "|", ";", "\n", "\r"}
	for _, d := range dangerous {
		if strings.Contains(name, d) {
			return fmt.Errorf("invalid characters in filename")
		}
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
