package phone

import "strings"

// CountryPrefix is the Sri Lankan dialing prefix used as the canonical form.
const CountryPrefix = "94"

// Normalize converts an arbitrary user-entered phone string into the
// canonical digits-only, country-prefixed form used as the storage key.
// "0771234567", "+94 77 123 4567" and "94771234567" all normalize to
// "94771234567". The function is idempotent. No length or numbering-plan
// validation is performed; garbage in yields a plausible-looking string out.
func Normalize(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	s := digits.String()
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "0") {
		return CountryPrefix + s[1:]
	}
	if !strings.HasPrefix(s, CountryPrefix) {
		return CountryPrefix + s
	}
	return s
}

// LocalForm returns the zero-prefixed local rendering of a canonical number
// ("94771234567" -> "0771234567"). Used by the tolerant account lookup for
// legacy records stored in local format.
func LocalForm(canonical string) string {
	if strings.HasPrefix(canonical, CountryPrefix) {
		return "0" + canonical[len(CountryPrefix):]
	}
	return canonical
}

// SignificantDigits strips the country prefix from a canonical number,
// leaving the subscriber part used for suffix matching.
func SignificantDigits(canonical string) string {
	return strings.TrimPrefix(canonical, CountryPrefix)
}
