package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/paris-tree-census/internal/domain"
)

func treesOf(species ...string) []domain.Tree {
	out := make([]domain.Tree, len(species))
	for i, s := range species {
		out[i] = domain.Tree{Species: s, Genus: genusOf(s)}
	}
	return out
}

func genusOf(binomial string) string {
	for i, r := range binomial {
		if r == ' ' {
			return binomial[:i]
		}
	}
	return binomial
}

func TestAbundanceBySpecies(t *testing.T) {
	trees := treesOf(
		"Platanus x hispanica", "Platanus x hispanica", "Platanus x hispanica",
		"Tilia cordata", "Tilia cordata",
		"Aesculus hippocastanum",
	)

	rows := AbundanceBySpecies(trees)
	require.Len(t, rows, 3)

	assert.Equal(t, Abundance{Name: "Platanus x hispanica", Count: 3, Share: 0.5}, rows[0])
	assert.Equal(t, "Tilia cordata", rows[1].Name)
	assert.Equal(t, 2, rows[1].Count)
	assert.Equal(t, "Aesculus hippocastanum", rows[2].Name)
	assert.InDelta(t, 1.0/6, rows[2].Share, 1e-12)
}

func TestAbundanceTieBreaksAlphabetically(t *testing.T) {
	rows := AbundanceBySpecies(treesOf("Tilia cordata", "Acer campestre"))
	require.Len(t, rows, 2)
	assert.Equal(t, "Acer campestre", rows[0].Name)
	assert.Equal(t, "Tilia cordata", rows[1].Name)
}

func TestAbundanceSkipsEmptyKeys(t *testing.T) {
	trees := append(treesOf("Tilia cordata"), domain.Tree{Species: ""})
	rows := AbundanceBySpecies(trees)
	require.Len(t, rows, 1)
	assert.Equal(t, 1.0, rows[0].Share, "empty-species individuals do not dilute shares")
}

func TestAbundanceByGenus(t *testing.T) {
	rows := AbundanceByGenus(treesOf("Platanus x hispanica", "Platanus orientalis", "Tilia cordata"))
	require.Len(t, rows, 2)
	assert.Equal(t, "Platanus", rows[0].Name)
	assert.Equal(t, 2, rows[0].Count)
}

func TestAbundanceBySizeClass(t *testing.T) {
	young := "young"
	trees := []domain.Tree{
		{Species: "Tilia cordata", SizeClass: &young},
		{Species: "Tilia cordata", SizeClass: &young},
		{Species: "Tilia cordata"}, // unmeasured
	}
	rows := AbundanceBySizeClass(trees)
	require.Len(t, rows, 2)
	assert.Equal(t, "young", rows[0].Name)
	assert.Equal(t, "unmeasured", rows[1].Name)
}

func TestTopN(t *testing.T) {
	rows := AbundanceBySpecies(treesOf("A a", "A a", "B b", "C c"))

	assert.Len(t, TopN(rows, 2), 2)
	assert.Len(t, TopN(rows, 10), 3)
	assert.Empty(t, TopN(nil, 5))
}

func TestCountsByGroup(t *testing.T) {
	trees := []domain.Tree{
		{Species: "Tilia cordata", Street: "RUE A"},
		{Species: "Tilia cordata", Street: "RUE A"},
		{Species: "Platanus x hispanica", Street: "RUE B"},
		{Species: "Platanus x hispanica", Street: ""}, // no grouping key
	}

	groups := CountsByGroup(trees, func(t domain.Tree) string { return t.Street })
	require.Len(t, groups, 2)
	assert.Equal(t, 2, groups["RUE A"]["Tilia cordata"])
	assert.Equal(t, 1, groups["RUE B"]["Platanus x hispanica"])
}
