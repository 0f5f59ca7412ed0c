package nomenclature

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comexar/despacho/internal/model"
)

func TestResolveApproximatePrefixWalk(t *testing.T) {
	table := fixtureTable(t)

	// No exact row for 8528.73.00; the heading still yields candidates.
	candidates := table.ResolveApproximate("8528.73.00", 5)
	require.NotEmpty(t, candidates)

	// The most specific surviving prefix ranks first.
	first := candidates[0]
	assert.Equal(t, model.MatchHierarchical4, first.MatchType)
	assert.Equal(t, 85, first.Position.Chapter)
}

func TestResolveApproximateSkipsHeaderRows(t *testing.T) {
	table := fixtureTable(t)

	// The 8528 heading and chapter 85 both cover the query, but grouping
	// rows are not classifiable targets.
	candidates := table.ResolveApproximate("8528.73.00", 10)
	require.NotEmpty(t, candidates)
	for _, c := range candidates {
		assert.NotEqual(t, model.RecordHeader, c.Position.RecordType, "header row %s surfaced", c.Position.FullCode())
	}
}

func TestResolveApproximateEightDigitPrefixWinsOverFour(t *testing.T) {
	table := fixtureTable(t)

	candidates := table.ResolveApproximate("8528.72.00", 5)
	require.NotEmpty(t, candidates)
	assert.Equal(t, model.MatchHierarchical8, candidates[0].MatchType)
	assert.Equal(t, "85287200", candidates[0].Position.NormalizedCode)
	assert.InEpsilon(t, 1.0, candidates[0].Score, 1e-9)
}

func TestResolveApproximateRespectsMaxResults(t *testing.T) {
	table := fixtureTable(t)

	candidates := table.ResolveApproximate("8528.72.00", 2)
	assert.LessOrEqual(t, len(candidates), 2)
}

func TestResolveApproximateDeduplicates(t *testing.T) {
	table := fixtureTable(t)

	// The terminal row matches at both the 8 and shorter prefix levels; it
	// must appear once.
	candidates := table.ResolveApproximate("8528.72.00", 10)
	seen := make(map[string]int)
	for _, c := range candidates {
		seen[c.Position.FullCode()]++
	}
	for code, n := range seen {
		assert.Equal(t, 1, n, "duplicate candidate %s", code)
	}
}

func TestResolveApproximateBreadthCap(t *testing.T) {
	rows := make([]Row, 0, breadthCap+10)
	for i := 0; i < breadthCap+10; i++ {
		rows = append(rows, Row{
			Code:        fmt.Sprintf("8528.%02d.00", i%100),
			Suffix:      fmt.Sprintf("%03dA", i),
			Description: "variante",
			DutyRate:    20,
		})
	}
	rows = append(rows, Row{Code: "85", Description: "capítulo"})
	table, err := NewTable(rows)
	require.NoError(t, err)

	// The 4-digit level already saturates, so the walk stops before the
	// 2-digit bucket could add the chapter row.
	candidates := table.ResolveApproximate("8528.01.00", 1000)
	for _, c := range candidates {
		assert.NotEqual(t, "85", c.Position.NormalizedCode)
	}
}

func TestResolveApproximateDescriptionSearch(t *testing.T) {
	table := fixtureTable(t)

	candidates := table.ResolveApproximate("aparatos receptores de televisión en colores", 5)
	require.NotEmpty(t, candidates)
	assert.Equal(t, model.MatchByDescription, candidates[0].MatchType)
	assert.Equal(t, "85287200", candidates[0].Position.NormalizedCode)
	assert.Greater(t, candidates[0].Score, descriptionThreshold)
}

func TestResolveApproximateDescriptionChapterFilter(t *testing.T) {
	table := fixtureTable(t)

	// "televisor" pins the search to chapters 84-85; the horse row can
	// never surface even if wording overlapped.
	candidates := table.ResolveApproximate("televisor de caballos reproductores de raza pura en colores", 10)
	for _, c := range candidates {
		assert.GreaterOrEqual(t, c.Position.Chapter, 84)
		assert.LessOrEqual(t, c.Position.Chapter, 85)
	}
}

func TestResolveApproximateGenericPenalty(t *testing.T) {
	lowered := blendedSimilarity("medias", fieldsSet("medias"), "los demás medias")
	plain := blendedSimilarity("medias", fieldsSet("medias"), "calzas y medias")
	assert.Less(t, lowered, plain)
}

func TestResolveApproximateEmptyInputs(t *testing.T) {
	table := fixtureTable(t)

	assert.Empty(t, table.ResolveApproximate("", 5))
	assert.Empty(t, table.ResolveApproximate("   ", 5))
	assert.Empty(t, table.ResolveApproximate("8528.72.00", 0))
}

func TestSequenceSimilarity(t *testing.T) {
	assert.InEpsilon(t, 1.0, sequenceSimilarity("abc", "abc"), 1e-9)
	assert.Zero(t, sequenceSimilarity("abc", "xyz"))
	assert.Greater(t, sequenceSimilarity("television", "televisor"), 0.7)
}

func TestChapterRangeFor(t *testing.T) {
	r := chapterRangeFor("televisor smart 40 pulgadas")
	require.NotNil(t, r)
	assert.True(t, r.contains(85))
	assert.False(t, r.contains(61))

	assert.Nil(t, chapterRangeFor("martillo de acero"))
}
