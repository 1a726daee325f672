package ifrange

import "sort"

// SortNames orders interface names the way an operator reads them: runs of
// digits compare numerically, so "Ethernet2" sorts before "Ethernet10".
// Everything else compares byte-wise. The input is not modified.
func SortNames(names []string) []string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.SliceStable(sorted, func(i, j int) bool {
		return naturalLess(sorted[i], sorted[j])
	})
	return sorted
}

// naturalLess compares two strings treating digit runs as numbers.
func naturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		if isDigit(a[0]) && isDigit(b[0]) {
			aNum, aRest := takeDigits(a)
			bNum, bRest := takeDigits(b)
			if aNum != bNum {
				return aNum < bNum
			}
			a, b = aRest, bRest
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// takeDigits consumes the leading digit run and returns its numeric value.
// Runs long enough to overflow an int do not occur in interface names.
func takeDigits(s string) (int, string) {
	i := 0
	n := 0
	for i < len(s) && isDigit(s[i]) {
		n = n*10 + int(s[i]-'0')
		i++
	}
	return n, s[i:]
}
