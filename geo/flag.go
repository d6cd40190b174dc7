// Package geo holds small helpers for presenting geolocation data.
package geo

// GlobePlaceholder is shown when no usable country code is available.
const GlobePlaceholder = "\U0001F310"

const regionalIndicatorBase = 0x1F1E6

// CountryFlag maps a two-letter ISO country code to its emoji flag by
// shifting each letter into the Unicode regional-indicator block. Anything
// that is not exactly two ASCII letters yields the globe placeholder.
func CountryFlag(code string) string {
	if len(code) != 2 {
		return GlobePlaceholder
	}

	runes := make([]rune, 0, 2)
	for _, c := range []byte(code) {
		switch {
		case c >= 'A' && c <= 'Z':
			runes = append(runes, regionalIndicatorBase+rune(c-'A'))
		case c >= 'a' && c <= 'z':
			runes = append(runes, regionalIndicatorBase+rune(c-'a'))
		default:
			return GlobePlaceholder
		}
	}
	return string(runes)
}
