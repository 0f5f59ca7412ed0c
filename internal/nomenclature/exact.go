package nomenclature

import (
	"regexp"
	"strings"

	"github.com/comexar/despacho/internal/model"
)

// Query patterns the dataset's customers actually type: full code with a
// fiscal suffix separated by space or dot, or any of the usual base-code
// spellings.
var (
	suffixedPattern  = regexp.MustCompile(`^(\d{4}\.\d{2}\.\d{2})[ .]([A-Za-z0-9]+)$`)
	baseCodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}`),
		regexp.MustCompile(`^\d{8}`),
		regexp.MustCompile(`^\d{2}\.\d{2}\.\d{2}\.\d{2}`),
		regexp.MustCompile(`^\d{4}`),
		regexp.MustCompile(`^\d{2}`),
	}
)

// ResolveExact finds the precise row a query names. It never fails on
// malformed input; no match is (nil, nil).
//
// A bare base code shared by several fiscally distinct terminals is an
// ambiguous match: the siblings are returned so the caller can route them
// through disambiguation instead of silently picking one.
func (t *Table) ResolveExact(query string) (match *model.Position, ambiguous []*model.Position) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	// Strategy 1: explicit base code + fiscal suffix pair.
	if m := suffixedPattern.FindStringSubmatch(query); m != nil {
		base, suffix := m[1], m[2]
		for _, p := range t.byNormalized[Normalize(base)] {
			if p.Suffix == suffix {
				return p, nil
			}
		}
		return nil, nil
	}

	// Strategy 2: bare base code resolving to terminals.
	if base := extractBaseCode(query); base != "" {
		terminals := t.terminalsByBase[base]
		switch len(terminals) {
		case 0:
			// Fall through to normalized lookup.
		case 1:
			return terminals[0], nil
		default:
			return nil, terminals
		}
	}

	// Strategy 3: normalized lookup, preferring terminal rows. Buckets are
	// sorted by suffix at load time, so the pick is deterministic.
	candidates := t.byNormalized[Normalize(query)]
	if len(candidates) == 0 {
		return nil, nil
	}

	var terminals []*model.Position
	for _, p := range candidates {
		if p.RecordType == model.RecordTerminal {
			terminals = append(terminals, p)
		}
	}
	if len(terminals) == 0 {
		return candidates[0], nil
	}
	// Deterministic but fiscally arbitrary when several terminals share the
	// normalized code; bare-base queries surface that set as ambiguous above
	// before ever reaching here.
	return terminals[0], nil
}

// extractBaseCode pulls a recognizable base code prefix out of a query.
func extractBaseCode(query string) string {
	query = strings.TrimSpace(query)
	for _, pattern := range baseCodePatterns {
		if m := pattern.FindString(query); m != "" {
			return m
		}
	}
	return ""
}
