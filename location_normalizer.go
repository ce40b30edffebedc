package main

import (
	"strings"

	"github.com/cor0nius/localservices/internal/textnorm"
)

// Canadian postal codes and provinces. Every function here is pure: the same
// input always yields the same output, with no I/O.

var postalPrefixProvince = map[byte]string{
	'A': "NL",
	'B': "NS",
	'C': "PE",
	'E': "NB",
	'G': "QC",
	'H': "QC",
	'J': "QC",
	'K': "ON",
	'L': "ON",
	'M': "ON",
	'N': "ON",
	'P': "ON",
	'R': "MB",
	'S': "SK",
	'T': "AB",
	'V': "BC",
	'X': "NT",
	'Y': "YT",
}

var provinceNames = map[string]string{
	"AB": "Alberta",
	"BC": "British Columbia",
	"MB": "Manitoba",
	"NB": "New Brunswick",
	"NL": "Newfoundland and Labrador",
	"NS": "Nova Scotia",
	"NT": "Northwest Territories",
	"NU": "Nunavut",
	"ON": "Ontario",
	"PE": "Prince Edward Island",
	"QC": "Quebec",
	"SK": "Saskatchewan",
	"YT": "Yukon",
}

// provinceLookup maps folded names and lowercase abbreviations to abbreviations.
var provinceLookup = func() map[string]string {
	m := make(map[string]string, len(provinceNames)*2+2)
	for abbrev, name := range provinceNames {
		m[strings.ToLower(abbrev)] = abbrev
		m[textnorm.Key(name)] = abbrev
	}
	m["newfoundland"] = "NL"
	m["yukon territory"] = "YT"
	return m
}()

// NormalizePostalCode trims and uppercases a postal code. Canadian codes lose
// inner spaces and six-character codes are rendered as "A1A 1A1".
func NormalizePostalCode(code, country string) string {
	pc := strings.TrimSpace(code)
	if pc == "" {
		return ""
	}
	if !strings.EqualFold(strings.TrimSpace(country), "CA") {
		return pc
	}
	raw := compactPostalCode(pc)
	if len(raw) == 6 {
		return raw[:3] + " " + raw[3:]
	}
	return raw
}

// compactPostalCode is the comparison form: no spaces, uppercase.
func compactPostalCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), " ", ""))
}

// InferProvinceAbbrevFromPostal returns the province abbreviation implied by
// the first letter of a Canadian postal code, or "".
func InferProvinceAbbrevFromPostal(code string) string {
	raw := compactPostalCode(code)
	if raw == "" {
		return ""
	}
	return postalPrefixProvince[raw[0]]
}

// InferProvinceFromPostal returns the full province name implied by a
// Canadian postal code, or "".
func InferProvinceFromPostal(code string) string {
	return provinceNames[InferProvinceAbbrevFromPostal(code)]
}

// NormalizeProvince maps a province name or abbreviation (any case, accents
// ignored) to its two-letter abbreviation. Unknown input comes back trimmed
// and otherwise unchanged.
func NormalizeProvince(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	if abbrev, ok := provinceLookup[textnorm.Key(s)]; ok {
		return abbrev
	}
	return s
}

// ProvinceFullName returns the full name for a province given in any form
// NormalizeProvince understands, or "" when it is not a Canadian province.
func ProvinceFullName(input string) string {
	return provinceNames[NormalizeProvince(input)]
}

func countryDisplayName(country string) string {
	cc := strings.ToUpper(strings.TrimSpace(country))
	switch cc {
	case "CA":
		return "Canada"
	case "US":
		return "United States"
	}
	return cc
}

func countryIsCanada(country string) bool {
	return strings.EqualFold(strings.TrimSpace(country), "CA")
}
