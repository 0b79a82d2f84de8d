package validation

import (
	"regexp"
)

// Account rule patterns
var (
	// Email addresses are matched after lower-casing
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Phone numbers: digits with optional leading + and separators
	PhonePattern = `^\+?[0-9][0-9 \-]{6,18}[0-9]$`

	// Password length bounds; bcrypt ignores input past 72 bytes
	PasswordMinLength = 8
	PasswordMaxLength = 72
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
	Phone *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
	Phone: regexp.MustCompile(PhonePattern),
}
