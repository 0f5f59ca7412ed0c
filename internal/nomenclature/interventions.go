package nomenclature

// InterventionsFor maps a chapter to the regulatory agencies that typically
// intervene in its imports.
func InterventionsFor(chapter int) []string {
	var agencies []string
	switch {
	case chapter >= 1 && chapter <= 24:
		agencies = append(agencies, "SENASA")
	case chapter >= 28 && chapter <= 38:
		agencies = append(agencies, "ANMAT")
	case chapter >= 84 && chapter <= 85:
		agencies = append(agencies, "INTI-CIE")
	case chapter >= 61 && chapter <= 63, chapter == 95:
		agencies = append(agencies, "INTI")
	}
	return agencies
}
