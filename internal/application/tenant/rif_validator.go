package tenant

import (
	"regexp"
	"strings"
)

// rifPattern matches the Venezuelan RIF shape: kind letter, eight digits and
// a final check digit, with optional dashes (J-12345678-9 or J123456789).
var rifPattern = regexp.MustCompile(`^[VEJPGC]-?\d{8}-?\d$`)

// FormatRIFValidator checks RIF shape only. Registry lookups against the
// tax authority are out of scope; callers needing them supply their own
// tenant.RIFValidator.
type FormatRIFValidator struct{}

// IsValid reports whether rif has a well-formed RIF shape
func (FormatRIFValidator) IsValid(rif string) bool {
	return rifPattern.MatchString(strings.ToUpper(strings.TrimSpace(rif)))
}
