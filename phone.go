package identity

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is the region hint used to parse numbers submitted
// without a country prefix
var DefaultPhoneRegion = "US"

// NormalizePhone canonicalizes a phone number to E.164 so the directory's
// unique index compares like with like. Numbers that cannot be parsed are
// kept verbatim; the uniqueness check still applies to the raw value.
func NormalizePhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}

	num, err := phonenumbers.Parse(trimmed, DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return trimmed
	}

	return phonenumbers.Format(num, phonenumbers.E164)
}
