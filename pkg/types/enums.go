package types

import (
	"sort"
	"strings"
)

// Platform tags understood by the JobSpy API.
const (
	PlatformIndeed    = "indeed"
	PlatformLinkedIn  = "linkedin"
	PlatformGlassdoor = "glassdoor"
)

// ValidPlatforms is the default search order.
var ValidPlatforms = []string{PlatformIndeed, PlatformLinkedIn, PlatformGlassdoor}

// ValidJobTypes are the employment types the JobSpy API filters on.
var ValidJobTypes = []string{"contract", "fulltime", "parttime", "internship"}

// validCountries maps lowercase input (including Spanish spellings) to the
// canonical full name the JobSpy API expects. LATAM entries first.
var validCountries = map[string]string{
	"mexico":    "Mexico",
	"méxico":    "Mexico",
	"colombia":  "Colombia",
	"argentina": "Argentina",
	"peru":      "Peru",
	"perú":      "Peru",
	"chile":     "Chile",
	"brazil":    "Brazil",
	"brasil":    "Brazil",
	"usa":       "USA",
	"canada":    "Canada",
	"uk":        "UK",
	"spain":     "Spain",
	"españa":    "Spain",
	"germany":   "Germany",
	"france":    "France",
}

// NormalizeCountry resolves a free-text country to its canonical full name.
// Matching is case-insensitive. Returns ("", false) for unknown countries.
func NormalizeCountry(country string) (string, bool) {
	name, ok := validCountries[strings.ToLower(strings.TrimSpace(country))]
	return name, ok
}

// CountryNames returns the canonical country names, sorted, for error
// messages and keyboards.
func CountryNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, name := range validCountries {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// NormalizeJobType lowercases and validates an employment type.
// Returns ("", false) for unknown types.
func NormalizeJobType(jobType string) (string, bool) {
	jt := strings.ToLower(strings.TrimSpace(jobType))
	for _, valid := range ValidJobTypes {
		if jt == valid {
			return jt, true
		}
	}
	return "", false
}
