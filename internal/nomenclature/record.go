package nomenclature

import (
	"strconv"

	"github.com/comexar/despacho/internal/model"
)

// classifyRecord assigns a record type at load time. The decision order
// matters: chapter/heading rows win over everything, then the presence of a
// fiscal suffix combined with duty data marks a chargeable leaf. Some source
// rows carry duty data without an explicit suffix; those are treated as
// terminal too.
func classifyRecord(p *model.Position) model.RecordType {
	if len(p.NormalizedCode) <= 4 && p.Suffix == "" {
		return model.RecordHeader
	}
	if p.Suffix != "" && p.HasFiscalData() {
		return model.RecordTerminal
	}
	if p.Suffix == "" && !p.HasFiscalData() {
		return model.RecordIntermediate
	}
	if p.Suffix == "" && p.HasFiscalData() {
		return model.RecordTerminal
	}
	return model.RecordIntermediate
}

// chapterOf parses the first two digits of a normalized code.
func chapterOf(normalized string) int {
	if len(normalized) < 2 {
		return 0
	}
	chapter, err := strconv.Atoi(normalized[:2])
	if err != nil {
		return 0
	}
	return chapter
}
