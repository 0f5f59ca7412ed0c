package nomenclature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExactSuffixPair(t *testing.T) {
	table := fixtureTable(t)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "space separated", query: "8528.72.00 100W", want: "8528.72.00 100W"},
		{name: "dot separated", query: "6115.95.00.200V", want: "6115.95.00 200V"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, ambiguous := table.ResolveExact(tt.query)
			require.NotNil(t, match)
			assert.Nil(t, ambiguous)
			assert.Equal(t, tt.want, match.FullCode())
		})
	}
}

func TestResolveExactUnknownSuffix(t *testing.T) {
	table := fixtureTable(t)

	match, ambiguous := table.ResolveExact("8528.72.00 999Z")
	assert.Nil(t, match)
	assert.Nil(t, ambiguous)
}

func TestResolveExactBareBaseSingleTerminal(t *testing.T) {
	table := fixtureTable(t)

	match, ambiguous := table.ResolveExact("8528.72.00")
	require.NotNil(t, match)
	assert.Nil(t, ambiguous)
	assert.Equal(t, "8528.72.00 100W", match.FullCode())
	assert.InEpsilon(t, 20.0, match.DutyRate, 1e-9)
}

func TestResolveExactBareBaseAmbiguous(t *testing.T) {
	table := fixtureTable(t)

	match, ambiguous := table.ResolveExact("6115.95.00")
	assert.Nil(t, match)
	require.Len(t, ambiguous, 2)
	assert.Equal(t, "100P", ambiguous[0].Suffix)
	assert.Equal(t, "200V", ambiguous[1].Suffix)
}

func TestResolveExactNormalizedLookup(t *testing.T) {
	table := fixtureTable(t)

	// Undotted 8-digit spelling still resolves.
	match, ambiguous := table.ResolveExact("85287200")
	require.NotNil(t, match)
	assert.Nil(t, ambiguous)
	assert.Equal(t, "85287200", match.NormalizedCode)
}

func TestResolveExactHeading(t *testing.T) {
	table := fixtureTable(t)

	match, _ := table.ResolveExact("8528")
	require.NotNil(t, match)
	assert.Equal(t, "8528", match.NormalizedCode)
}

func TestResolveExactNoMatch(t *testing.T) {
	table := fixtureTable(t)

	match, ambiguous := table.ResolveExact("9999.99.99")
	assert.Nil(t, match)
	assert.Nil(t, ambiguous)

	match, ambiguous = table.ResolveExact("")
	assert.Nil(t, match)
	assert.Nil(t, ambiguous)

	match, ambiguous = table.ResolveExact("televisor led")
	assert.Nil(t, match)
	assert.Nil(t, ambiguous)
}

func TestExtractBaseCode(t *testing.T) {
	assert.Equal(t, "8528.72.00", extractBaseCode("8528.72.00"))
	assert.Equal(t, "85287200", extractBaseCode("85287200"))
	assert.Equal(t, "85.28.72.00", extractBaseCode("85.28.72.00"))
	assert.Equal(t, "8528", extractBaseCode("8528"))
	assert.Equal(t, "85", extractBaseCode("85"))
	assert.Equal(t, "", extractBaseCode("televisor"))
}
