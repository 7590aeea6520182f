package neat

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// splitParents returns two clones of one seed, each split on a different connection.
func splitParents(t *testing.T) (*Genome, *Genome) {
	t.Helper()
	seed := seedGenome(t, 2, 1, 11)
	a, b := seed.Clone(), seed.Clone()
	AddNodeMutation{}.Mutate(a, &scriptedRand{ints: []int{0}})
	AddNodeMutation{}.Mutate(b, &scriptedRand{ints: []int{1}})
	return a, b
}

func TestCrossoverWithSelfReproducesParent(t *testing.T) {
	g := seedGenome(t, 3, 2, 8)
	rng := NewRand(8)
	for i := 0; i < 5; i++ {
		AddNodeMutation{}.Mutate(g, rng)
	}

	child, err := CrossoverMate{DisableChance: 0.5}.Mate(g, g, NewRand(1))
	require.NoError(t, err)
	assert.Equal(t, g.Record().Connections, child.Record().Connections)
	assert.Equal(t, g.Nodes(), child.Nodes())
}

func TestCrossoverTiedFitnessInheritsBothParents(t *testing.T) {
	a, b := splitParents(t)
	a.Fitness, b.Fitness = 1, 1

	child, err := CrossoverMate{DisableChance: 0.75}.Mate(a, b, NewRand(2))
	require.NoError(t, err)

	union := append(a.Innovations(), b.Innovations()...)
	slices.Sort(union)
	union = slices.Compact(union)
	assert.Equal(t, union, child.Innovations())
	assert.Len(t, child.NodesOfType(HiddenNode), 2)
}

func TestCrossoverDropsWeakerParentGenes(t *testing.T) {
	a, b := splitParents(t)

	a.Fitness, b.Fitness = 2, 1
	child, err := CrossoverMate{DisableChance: 0.75}.Mate(a, b, NewRand(3))
	require.NoError(t, err)
	assert.Equal(t, a.Innovations(), child.Innovations())

	a.Fitness, b.Fitness = 1, 2
	child, err = CrossoverMate{DisableChance: 0.75}.Mate(a, b, NewRand(3))
	require.NoError(t, err)
	assert.Equal(t, b.Innovations(), child.Innovations())
}

func TestCrossoverResolvesDisagreeingEnabledFlag(t *testing.T) {
	seed := seedGenome(t, 1, 1, 4)
	a, b := seed.Clone(), seed.Clone()
	a.Connections()[0].Enabled = false
	mate := CrossoverMate{DisableChance: 0.75}

	// allele from a, then a draw above the disable chance: enabled
	child, err := mate.Mate(a, b, &scriptedRand{floats: []float64{0.3, 0.9}})
	require.NoError(t, err)
	assert.True(t, child.Connections()[0].Enabled)

	// a draw equal to the chance does not exceed it: disabled
	child, err = mate.Mate(a, b, &scriptedRand{floats: []float64{0.3, 0.75}})
	require.NoError(t, err)
	assert.False(t, child.Connections()[0].Enabled)

	assert.False(t, a.Connections()[0].Enabled, "parent modified")
	assert.True(t, b.Connections()[0].Enabled, "parent modified")
}

func TestCloneMateCopiesOneParent(t *testing.T) {
	a, b := splitParents(t)
	a.Key, b.Key = 1, 2

	child, err := CloneMate{}.Mate(a, b, &scriptedRand{floats: []float64{0.7}})
	require.NoError(t, err)
	assert.Equal(t, a.Record().Connections, child.Record().Connections)
	assert.Zero(t, child.Key)

	child.Connections()[0].Weight = 42
	assert.NotEqual(t, 42.0, a.Connections()[0].Weight)

	child, err = CloneMate{}.Mate(a, b, &scriptedRand{floats: []float64{0.2}})
	require.NoError(t, err)
	assert.Equal(t, b.Record().Connections, child.Record().Connections)
}

func TestChooseMate(t *testing.T) {
	mates := []WeightedMate{
		{Mate: CloneMate{}, Weight: 1},
		{Mate: CrossoverMate{DisableChance: 0.5}, Weight: 3},
	}

	m, err := chooseMate(mates, &scriptedRand{floats: []float64{0.2}})
	require.NoError(t, err)
	assert.Equal(t, CloneMate{}, m)

	m, err = chooseMate(mates, &scriptedRand{floats: []float64{0.5}})
	require.NoError(t, err)
	assert.Equal(t, CrossoverMate{DisableChance: 0.5}, m)

	_, err = chooseMate([]WeightedMate{{Mate: CloneMate{}, Weight: 0}}, &scriptedRand{})
	assert.ErrorIs(t, err, ErrMateDraw)
}
