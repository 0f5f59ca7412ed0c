package nomenclature

import (
	"log/slog"
	"sort"

	"github.com/comexar/despacho/internal/common"
	"github.com/comexar/despacho/internal/model"
)

// prefixLengths are the hierarchy buckets used for indexing and search,
// most specific first.
var prefixLengths = []int{8, 6, 4, 2}

// Row is one raw dataset row, already mapped to canonical column names by
// the loader.
type Row struct {
	Code             string
	Suffix           string
	Description      string
	InterventionCode string
	DutyRate         float64
	SpecificDuty     float64
	StatisticalTax   float64
	ExportDuty       float64
	ExportRebate     float64
}

// Table is the immutable, indexed NCM code table. It is built once at
// startup and safe for concurrent readers; hot reloads must build a fresh
// Table and swap it by reference.
type Table struct {
	byNormalized    map[string][]*model.Position
	terminalsByBase map[string][]*model.Position
	byPrefix        map[string][]*model.Position
	positions       []*model.Position
}

// NewTable indexes the given rows. Rows whose code does not normalize to at
// least a chapter are dropped with a warning; broken parent links are
// counted and reported, never fatal.
func NewTable(rows []Row) (*Table, error) {
	if len(rows) == 0 {
		return nil, common.NewDataLoadError("dataset contains no rows", nil)
	}

	t := &Table{
		byNormalized:    make(map[string][]*model.Position),
		terminalsByBase: make(map[string][]*model.Position),
		byPrefix:        make(map[string][]*model.Position),
		positions:       make([]*model.Position, 0, len(rows)),
	}

	var skipped int
	for _, row := range rows {
		normalized := Normalize(row.Code)
		if len(normalized) < 2 {
			skipped++
			continue
		}

		p := &model.Position{
			BaseCode:         row.Code,
			Suffix:           row.Suffix,
			NormalizedCode:   normalized,
			Description:      row.Description,
			InterventionCode: row.InterventionCode,
			Chapter:          chapterOf(normalized),
			HierarchyLevel:   Level(normalized),
			ParentCode:       ParentOf(normalized),
			DutyRate:         row.DutyRate,
			SpecificDuty:     row.SpecificDuty,
			StatisticalTax:   row.StatisticalTax,
			ExportDuty:       row.ExportDuty,
			ExportRebate:     row.ExportRebate,
		}
		p.RecordType = classifyRecord(p)

		t.positions = append(t.positions, p)
		t.byNormalized[normalized] = append(t.byNormalized[normalized], p)
		if p.RecordType == model.RecordTerminal {
			t.terminalsByBase[p.BaseCode] = append(t.terminalsByBase[p.BaseCode], p)
		}
		for _, n := range prefixLengths {
			if len(normalized) >= n {
				t.byPrefix[normalized[:n]] = append(t.byPrefix[normalized[:n]], p)
			}
		}
	}

	if len(t.positions) == 0 {
		return nil, common.NewDataLoadError("no row carried a valid code", nil)
	}

	// Deterministic sibling order: normalized code, then suffix.
	for _, bucket := range t.byNormalized {
		sortPositions(bucket)
	}
	for _, bucket := range t.terminalsByBase {
		sortPositions(bucket)
	}
	for _, bucket := range t.byPrefix {
		sortPositions(bucket)
	}

	var brokenLinks int
	for _, p := range t.positions {
		if p.RecordType == model.RecordHeader || p.ParentCode == "" {
			continue
		}
		if _, ok := t.byNormalized[p.ParentCode]; !ok {
			brokenLinks++
		}
	}

	if skipped > 0 || brokenLinks > 0 {
		slog.Warn("dataset quality issues",
			"rows_skipped", skipped,
			"broken_parent_links", brokenLinks)
	}

	slog.Info("nomenclature table loaded",
		"positions", len(t.positions),
		"unique_codes", len(t.byNormalized))

	return t, nil
}

func sortPositions(ps []*model.Position) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].NormalizedCode != ps[j].NormalizedCode {
			return ps[i].NormalizedCode < ps[j].NormalizedCode
		}
		return ps[i].Suffix < ps[j].Suffix
	})
}

// FindByNormalizedCode returns every row sharing a normalized code. Rows
// differing only by fiscal suffix land in the same bucket.
func (t *Table) FindByNormalizedCode(code string) []*model.Position {
	return t.byNormalized[code]
}

// ChildrenOf returns the terminal children of an intermediate position.
// Direct fiscal siblings (same base code, distinct suffixes) come first;
// when the base has none, terminal descendants under the code's normalized
// prefix are returned instead.
func (t *Table) ChildrenOf(parentCode string) []*model.Position {
	if terminals := t.terminalsByBase[parentCode]; len(terminals) > 0 {
		return terminals
	}

	normalized := Normalize(parentCode)
	if normalized == "" {
		return nil
	}
	var descendants []*model.Position
	for _, p := range t.byPrefix[normalized] {
		if p.RecordType == model.RecordTerminal {
			descendants = append(descendants, p)
		}
	}
	return descendants
}

// Stats summarizes the loaded dataset for operators and tests.
type Stats struct {
	RecordTypeCounts map[model.RecordType]int
	Chapters         []int
	TotalRecords     int
	UniqueCodes      int
}

// Stats computes dataset statistics.
func (t *Table) Stats() Stats {
	counts := make(map[model.RecordType]int)
	chapterSet := make(map[int]struct{})
	for _, p := range t.positions {
		counts[p.RecordType]++
		chapterSet[p.Chapter] = struct{}{}
	}

	chapters := make([]int, 0, len(chapterSet))
	for c := range chapterSet {
		chapters = append(chapters, c)
	}
	sort.Ints(chapters)

	return Stats{
		TotalRecords:     len(t.positions),
		UniqueCodes:      len(t.byNormalized),
		Chapters:         chapters,
		RecordTypeCounts: counts,
	}
}
