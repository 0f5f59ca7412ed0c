// Package model defines the core domain models used throughout the application.
package model

// RecordType distinguishes how a nomenclature row participates in the hierarchy.
type RecordType string

// Record type constants.
const (
	// RecordTerminal is a leaf carrying an actual fiscal treatment.
	RecordTerminal RecordType = "terminal"
	// RecordIntermediate is a grouping node with terminal children.
	RecordIntermediate RecordType = "intermediate"
	// RecordHeader is a chapter/heading row with at most 4 significant digits.
	RecordHeader RecordType = "header"
)

// Position is one row of the NCM nomenclature table.
//
// BaseCode plus Suffix identifies a row; several terminal siblings may share
// a BaseCode and differ only by their fiscal suffix (SIM), each with its own
// duty treatment.
type Position struct {
	BaseCode         string
	Suffix           string
	NormalizedCode   string
	Description      string
	ParentCode       string
	InterventionCode string
	RecordType       RecordType
	Chapter          int
	HierarchyLevel   int
	DutyRate         float64
	StatisticalTax   float64
	SpecificDuty     float64
	ExportDuty       float64
	ExportRebate     float64
}

// FullCode returns the base code with the fiscal suffix appended, if any.
func (p *Position) FullCode() string {
	if p.Suffix != "" {
		return p.BaseCode + " " + p.Suffix
	}
	return p.BaseCode
}

// HasFiscalData reports whether any fiscal field is non-zero.
func (p *Position) HasFiscalData() bool {
	return p.DutyRate != 0 ||
		p.StatisticalTax != 0 ||
		p.SpecificDuty != 0 ||
		p.ExportDuty != 0 ||
		p.ExportRebate != 0
}
