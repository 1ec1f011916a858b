// Package instrument identifies financial instruments from filename
// patterns and supplies their default timezones.
package instrument

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Info describes a recognized instrument.
type Info struct {
	Code     string
	Timezone string
	Name     string
}

var known = []struct {
	patterns []*regexp.Regexp
	info     Info
}{
	{
		patterns: compile(`US100`, `NQ`, `NDX`, `NASDAQ`),
		info:     Info{Code: "US100", Timezone: "America/New_York", Name: "NASDAQ-100 E-Mini Futures"},
	},
	{
		patterns: compile(`\bES\b`, `SPX`, `SP500`, `S&P`),
		info:     Info{Code: "ES", Timezone: "America/Chicago", Name: "S&P 500 E-Mini Futures"},
	},
	{
		patterns: compile(`UK100`, `FTSE`),
		info:     Info{Code: "UK100", Timezone: "Europe/London", Name: "FTSE 100 Index"},
	},
	{
		patterns: compile(`GER40`, `DAX`),
		info:     Info{Code: "GER40", Timezone: "Europe/Berlin", Name: "DAX Index"},
	},
}

// fallback when nothing matches.
var defaultInfo = Info{Code: "US100", Timezone: "America/New_York", Name: "NASDAQ-100 E-Mini Futures"}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// separators become spaces so word-boundary patterns work: regexp
// counts "_" as a word character, and "ES_20260218" must still match.
var separators = strings.NewReplacer("_", " ", "-", " ", ".", " ")

// IdentifyFromFile detects the instrument from a file's name, e.g.
// "data_NQ_20251119.csv" -> US100 / America/New_York. Unrecognized names
// fall back to US100.
func IdentifyFromFile(path string) Info {
	name := separators.Replace(strings.ToUpper(filepath.Base(path)))
	for _, candidate := range known {
		for _, p := range candidate.patterns {
			if p.MatchString(name) {
				return candidate.info
			}
		}
	}
	return defaultInfo
}

// Lookup returns the Info for an explicit instrument code, falling back
// to US100 for unknown codes.
func Lookup(code string) Info {
	code = strings.ToUpper(code)
	for _, candidate := range known {
		if candidate.info.Code == code {
			return candidate.info
		}
	}
	return defaultInfo
}
