// Package nomenclature implements the in-memory NCM code table and its
// deterministic resolvers: exact lookup, hierarchical prefix search and
// description similarity search.
package nomenclature

import "strings"

// Normalize strips dots, whitespace and dashes from an NCM code and returns
// only its digit run. An optional trailing alphanumeric suffix segment (the
// fiscal SIM code) is tolerated but never included. Anything else makes the
// code invalid and yields an empty string.
func Normalize(code string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', ' ', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(code))

	if cleaned == "" {
		return ""
	}

	// Leading digit run is the code proper.
	i := 0
	for i < len(cleaned) && cleaned[i] >= '0' && cleaned[i] <= '9' {
		i++
	}
	if i == 0 {
		return ""
	}

	// The remainder may only be an alphanumeric suffix segment.
	for _, r := range cleaned[i:] {
		alnum := (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
		if !alnum {
			return ""
		}
	}

	// A digit-leading suffix ("100W") extends the digit run past the code
	// itself. A full code is 8 digits, so with a suffix tail present the run
	// stops there.
	if i > 8 && i < len(cleaned) {
		i = 8
	}

	return cleaned[:i]
}

// ParentOf truncates a normalized code to the next coarser hierarchy bucket:
// 8+ digits keep 6, 6+ keep 4, 4+ keep 2, chapters have no parent.
func ParentOf(normalized string) string {
	switch {
	case len(normalized) >= 8:
		return normalized[:6]
	case len(normalized) >= 6:
		return normalized[:4]
	case len(normalized) >= 4:
		return normalized[:2]
	default:
		return ""
	}
}

// Level maps a normalized code's digit count to its hierarchy depth:
// chapter 1, heading 2, subheading 3, full code 4.
func Level(normalized string) int {
	switch {
	case len(normalized) >= 8:
		return 4
	case len(normalized) >= 6:
		return 3
	case len(normalized) >= 4:
		return 2
	case len(normalized) >= 2:
		return 1
	default:
		return 0
	}
}
