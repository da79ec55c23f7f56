package synonym

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/dynsynonym/errors"
)

func TestCompile_EquivalenceClass(t *testing.T) {
	m, err := Compile([]byte("a,b,c"), DefaultOptions())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"b", "c"}, m.Lookup("a"))
	assert.ElementsMatch(t, []string{"a", "c"}, m.Lookup("b"))
	assert.ElementsMatch(t, []string{"a", "b"}, m.Lookup("c"))
	assert.Equal(t, 1, m.Rules())
	assert.Equal(t, 3, m.Terms())
}

func TestCompile_ExplicitMapping(t *testing.T) {
	m, err := Compile([]byte("usa, united states => america"), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"america"}, m.Lookup("usa"))
	assert.Equal(t, []string{"america"}, m.Lookup("united states"))
	assert.Nil(t, m.Lookup("america"), "mapping is one-directional")
}

func TestCompile_NormalizationMode(t *testing.T) {
	m, err := Compile([]byte("gb,great britain,britain"), Options{Expand: false})
	require.NoError(t, err)

	assert.Equal(t, []string{"gb"}, m.Lookup("great britain"))
	assert.Equal(t, []string{"gb"}, m.Lookup("britain"))
	assert.Nil(t, m.Lookup("gb"), "first term is the canonical form")
}

func TestCompile_CommentsAndBlankLines(t *testing.T) {
	text := "# synonyms for colors\n\nred,crimson\n\r\n# end\n"
	m, err := Compile([]byte(text), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, m.Rules())
	assert.Equal(t, []string{"crimson"}, m.Lookup("red"))
}

func TestCompile_CaseFolding(t *testing.T) {
	m, err := Compile([]byte("Laptop, Notebook"), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"notebook"}, m.Lookup("laptop"))
	assert.Nil(t, m.Lookup("Laptop"), "lookup keys are folded at compile time")
}

func TestCompile_MergesDuplicateRules(t *testing.T) {
	m, err := Compile([]byte("a,b\na,b\na => c"), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "c"}, m.Lookup("a"))
	assert.Equal(t, 3, m.Rules())
}

func TestCompile_MalformedLines(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty term in group", "a,,b"},
		{"trailing comma", "a,b,"},
		{"empty mapping side", "a => "},
		{"double arrow", "a => b => c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile([]byte(tt.text), DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
			assert.ErrorIs(t, err, errors.ErrMalformedRules)
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestCompile_MalformedLineNumberReported(t *testing.T) {
	_, err := Compile([]byte("a,b\nc,d\nbad,,line"), DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestCompile_LenientSkipsBadLines(t *testing.T) {
	m, err := Compile([]byte("a,b\nbad,,line\nc,d"), Options{Expand: true, Lenient: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, m.Lookup("a"))
	assert.Equal(t, []string{"c"}, m.Lookup("d"))
	assert.Equal(t, 2, m.Rules())
}

func TestCompile_Deterministic(t *testing.T) {
	text := []byte("a,b,c\nusa => america\nred,crimson")

	m1, err := Compile(text, DefaultOptions())
	require.NoError(t, err)
	m2, err := Compile(text, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, m1.Fingerprint(), m2.Fingerprint())
	assert.Equal(t, m1.Rules(), m2.Rules())
	assert.Equal(t, m1.Lookup("a"), m2.Lookup("a"))
	assert.Equal(t, m1.Lookup("usa"), m2.Lookup("usa"))
}

func TestCompile_EmptyInput(t *testing.T) {
	m, err := Compile(nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, m.Rules())
	assert.Equal(t, 0, m.Terms())
}

func TestEmpty_SharedInstance(t *testing.T) {
	assert.Same(t, Empty(), Empty())
	assert.Nil(t, Empty().Lookup("anything"))
}
