package nomenclature

// sequenceSimilarity is a classic 2*M/T ratio where M is the length of the
// longest common subsequence of the two strings and T the sum of their
// lengths. Descriptions are short, so the quadratic table stays small.
func sequenceSimilarity(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// Single-row LCS to keep allocation proportional to the shorter string.
	if len(b) < len(a) {
		a, b = b, a
	}
	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := 1; i <= len(b); i++ {
		for j := 1; j <= len(a); j++ {
			if b[i-1] == a[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	lcs := prev[len(a)]
	return 2 * float64(lcs) / float64(len(a)+len(b))
}
