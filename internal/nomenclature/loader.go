package nomenclature

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/comexar/despacho/internal/common"
)

// requiredColumns are the canonical dataset columns, named as in the
// official consolidated NCM export: sim is the fiscal suffix, aec the common
// external tariff, die the specific duty, te the statistical tax, in the
// intervention code, de/re the export duty and rebate.
var requiredColumns = []string{"code", "sim", "description", "aec", "die", "te", "in", "de", "re"}

// LoadCSV reads a nomenclature dataset from a CSV file and builds the
// indexed table. Schema violations fail fast with a DataLoadError naming
// the missing column.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewDataLoadError(fmt.Sprintf("cannot open %s", path), err)
	}
	defer func() { _ = f.Close() }()

	return ReadCSV(f)
}

// ReadCSV parses dataset rows from any reader. Exposed separately so tests
// and alternative sources can feed in-memory data.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, common.NewDataLoadError("cannot read header", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, common.NewDataLoadError(fmt.Sprintf("missing required column %q", col), nil)
		}
	}

	var rows []Row
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, common.NewDataLoadError("malformed CSV row", readErr)
		}

		field := func(name string) string {
			i := index[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		rows = append(rows, Row{
			Code:             field("code"),
			Suffix:           field("sim"),
			Description:      field("description"),
			InterventionCode: field("in"),
			DutyRate:         parseRate(field("aec")),
			SpecificDuty:     parseRate(field("die")),
			StatisticalTax:   parseRate(field("te")),
			ExportDuty:       parseRate(field("de")),
			ExportRebate:     parseRate(field("re")),
		})
	}

	return NewTable(rows)
}

// parseRate tolerates the formatting quirks of the source dataset: percent
// signs, comma decimal separators and empty cells all map to a plain float.
func parseRate(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
