// Package countries resolves ISO 3166-1 alpha-3 codes to English country
// names.
package countries

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/text/unicode/norm"
)

var ErrUnknownCountry = errors.New("unknown country")

// Normalize upper-cases and trims an ISO3 code.
func Normalize(iso3 string) string {
	return strings.ToUpper(strings.TrimSpace(iso3))
}

// Name returns the English name for an ISO 3166-1 alpha-3 code, e.g.
// "BGD" -> "Bangladesh".
func Name(iso3 string) (string, error) {
	code := Normalize(iso3)
	if len(code) != 3 || !isAlpha(code) {
		return "", fmt.Errorf("%w: %q is not an alpha-3 code", ErrUnknownCountry, iso3)
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnknownCountry, iso3, err)
	}
	if !region.IsCountry() || region.ISO3() != code {
		return "", fmt.Errorf("%w: %q", ErrUnknownCountry, iso3)
	}
	name := display.English.Regions().Name(region)
	if name == "" {
		return "", fmt.Errorf("%w: no English name for %q", ErrUnknownCountry, iso3)
	}
	return norm.NFC.String(name), nil
}

func isAlpha(s string) bool {
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
