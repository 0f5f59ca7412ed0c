package nomenclature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "dotted code", in: "8528.72.00", want: "85287200"},
		{name: "spaces and dashes", in: "85 28-72 00", want: "85287200"},
		{name: "trailing suffix dropped", in: "8528.72.00 100W", want: "85287200"},
		{name: "dot separated suffix dropped", in: "6115.95.00.200V", want: "61159500"},
		{name: "letter leading suffix dropped", in: "8528.72.00 W100", want: "85287200"},
		{name: "chapter only", in: "85", want: "85"},
		{name: "heading", in: "8528", want: "8528"},
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: "   ", want: ""},
		{name: "no digits", in: "televisor", want: ""},
		{name: "embedded punctuation", in: "8528,72", want: ""},
		{name: "leading letters invalid", in: "NCM8528", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestParentOf(t *testing.T) {
	assert.Equal(t, "852872", ParentOf("85287200"))
	assert.Equal(t, "8528", ParentOf("852872"))
	assert.Equal(t, "85", ParentOf("8528"))
	assert.Equal(t, "", ParentOf("85"))
	assert.Equal(t, "", ParentOf(""))
}

func TestLevel(t *testing.T) {
	assert.Equal(t, 4, Level("85287200"))
	assert.Equal(t, 3, Level("852872"))
	assert.Equal(t, 2, Level("8528"))
	assert.Equal(t, 1, Level("85"))
	assert.Equal(t, 0, Level("8"))
	assert.Equal(t, 0, Level(""))
}
