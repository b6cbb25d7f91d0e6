package scraper

import (
	"fmt"
	"regexp"
	"strings"
)

// SurnameHalf says which group of a surname-split course a student attends.
type SurnameHalf int

const (
	// FirstHalf covers surnames A-L
	FirstHalf SurnameHalf = iota
	// SecondHalf covers surnames M-Z
	SecondHalf
)

func (h SurnameHalf) String() string {
	if h == FirstHalf {
		return "A-L"
	}
	return "M-Z"
}

// token is the range qualifier a split course heading carries for this half
func (h SurnameHalf) token() string {
	if h == FirstHalf {
		return "a-l"
	}
	return "m-z"
}

var (
	surnamePattern = regexp.MustCompile(`^[a-zA-Z]+$`)
	markerPattern  = regexp.MustCompile(`(?i)` + surnameMarker)
)

// HalfForInitial maps a surname (or just its initial) to the half it belongs to.
func HalfForInitial(surname string) (SurnameHalf, error) {
	surname = strings.TrimSpace(surname)
	if !surnamePattern.MatchString(surname) {
		return FirstHalf, fmt.Errorf("invalid surname initial %q: letters only", surname)
	}
	if c := strings.ToUpper(surname)[0]; c >= 'A' && c <= 'L' {
		return FirstHalf, nil
	}
	return SecondHalf, nil
}

// courseIncluded reports whether a heading applies to students in half. Headings
// without the surname marker apply to everyone.
func courseIncluded(heading string, half SurnameHalf) bool {
	loc := markerPattern.FindStringIndex(heading)
	if loc == nil {
		return true
	}
	// only the qualifier after the marker counts; "cognomi A - L" and "cognomi A-L" match alike
	qualifier := strings.ToLower(heading[loc[1]:])
	compact := strings.Join(strings.Fields(qualifier), "")
	return strings.Contains(compact, half.token())
}

// courseName strips the surname qualifier from a heading:
// "Algorithms (cognomi A-L)" -> "Algorithms".
func courseName(heading string) string {
	loc := markerPattern.FindStringIndex(heading)
	if loc == nil {
		return strings.TrimSpace(heading)
	}
	name := strings.TrimSpace(heading[:loc[0]])
	name = strings.TrimRight(name, "([-–,: ")
	return strings.TrimSpace(name)
}
