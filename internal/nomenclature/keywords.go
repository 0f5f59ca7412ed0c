package nomenclature

import "strings"

// chapterRange bounds a description search to a slice of the nomenclature.
type chapterRange struct {
	lo, hi int
}

func (r *chapterRange) contains(chapter int) bool {
	return chapter >= r.lo && chapter <= r.hi
}

// categoryFilters maps domain keywords to the chapter range their products
// live in. Queries mentioning a television should never match live-animal
// rows just because the descriptions share filler words.
var categoryFilters = []struct {
	keywords []string
	chapters chapterRange
}{
	{
		keywords: []string{"televisor", "tv", "lcd", "led", "monitor", "pantalla", "telefono", "teléfono", "celular", "smartphone", "notebook", "computadora"},
		chapters: chapterRange{84, 85},
	},
	{
		keywords: []string{"caballo", "animal", "vivo", "ganado", "equino", "vaca", "bovino"},
		chapters: chapterRange{1, 24},
	},
	{
		keywords: []string{"quimico", "químico", "farmaco", "fármaco", "medicamento", "reactivo"},
		chapters: chapterRange{28, 39},
	},
	{
		keywords: []string{"ropa", "textil", "tela", "vestimenta", "media", "calcetin", "calcetín"},
		chapters: chapterRange{61, 64},
	},
}

// chapterRangeFor returns the chapter pre-filter for a lowercased query, or
// nil when no domain keyword matches.
func chapterRangeFor(queryLower string) *chapterRange {
	for i := range categoryFilters {
		for _, kw := range categoryFilters[i].keywords {
			if strings.Contains(queryLower, kw) {
				return &categoryFilters[i].chapters
			}
		}
	}
	return nil
}
