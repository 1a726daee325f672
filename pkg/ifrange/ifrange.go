// Package ifrange expands bracket-range notation in interface names.
//
// Device templates abbreviate runs of interfaces as "Ethernet[1-48]" or
// "Ethernet[1,3,5]". Expansion resolves such a name into the concrete
// interface names it denotes; anything unparseable degrades to the literal
// input so that no template data is ever dropped.
package ifrange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// rangePattern matches a bracketed segment of digits, commas and hyphens
// containing at least one separator, e.g. "[1-48]" or "[1,3,5]". A plain
// "[5]" does not count as range notation.
var rangePattern = regexp.MustCompile(`\[[\w,-]*[-,][\w,-]*\]`)

// Expansion is the outcome of expanding one interface name. Literal reports
// that the input came back unchanged, either because it carries no range
// notation or because the notation could not be parsed; callers may log the
// latter but must not treat it as a failure.
type Expansion struct {
	Names   []string
	Literal bool
}

// Expand resolves bracket-range notation in an interface name. The result is
// never empty: names without notation, malformed notation, and notation that
// expands to nothing all come back as the single literal input. Within a
// hyphen range expansion is ascending; comma parts keep their written order
// and duplicates are preserved.
func Expand(name string) Expansion {
	loc := rangePattern.FindStringIndex(name)
	if loc == nil {
		return literal(name)
	}

	content := name[loc[0]+1 : loc[1]-1]
	prefix := name[:loc[0]]
	suffix := name[loc[1]:]

	var expanded []string
	for _, part := range strings.Split(content, ",") {
		if lo, hi, ok := parseSpan(part); ok {
			for i := lo; i <= hi; i++ {
				expanded = append(expanded, fmt.Sprintf("%s%d%s", prefix, i, suffix))
			}
			continue
		}
		if isDigits(part) {
			expanded = append(expanded, prefix+part+suffix)
			continue
		}
		// A bad part aborts the whole bracket, never a partial expansion
		return literal(name)
	}

	if len(expanded) == 0 {
		return literal(name)
	}
	return Expansion{Names: expanded}
}

// ExpandName is a convenience wrapper returning only the expanded names.
func ExpandName(name string) []string {
	return Expand(name).Names
}

func literal(name string) Expansion {
	return Expansion{Names: []string{name}, Literal: true}
}

// parseSpan parses a hyphenated span like "1-48". Both sides must be all
// digits; an inverted span parses but expands to nothing.
func parseSpan(part string) (int, int, bool) {
	lo, hi, found := strings.Cut(part, "-")
	if !found || !isDigits(lo) || !isDigits(hi) {
		return 0, 0, false
	}
	start, err := strconv.Atoi(lo)
	if err != nil {
		return 0, 0, false
	}
	end, err := strconv.Atoi(hi)
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
