package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// genesGenome builds a genome holding one connection per innovation id, with the given
// weights. Each connection gets its own pair of endpoint nodes.
func genesGenome(t *testing.T, genes map[int]float64) *Genome {
	t.Helper()
	g := NewGenome()
	for innov, w := range genes {
		c := &Connection{
			From:       Node{ID: 10000 + innov, Type: InputNode},
			To:         Node{ID: 20000 + innov, Type: OutputNode},
			Weight:     w,
			Enabled:    true,
			Innovation: innov,
		}
		require.NoError(t, g.AddConnection(c))
	}
	return g
}

func TestCompareCountsExcessAndDisjoint(t *testing.T) {
	rep := genesGenome(t, map[int]float64{1: 1, 2: 2, 3: 0, 5: 0})
	g := genesGenome(t, map[int]float64{1: 0.5, 2: 2.5, 4: 0, 6: 0, 7: 0})

	cmp := Compare(rep, g)
	assert.Equal(t, 2, cmp.Excess)
	assert.Equal(t, 3, cmp.Disjoint)
	assert.Equal(t, 2, cmp.Matching)
	assert.InDelta(t, 0.5, cmp.AverageWeightDifference, 1e-12)

	c := DistanceClassifier{ExcessWeighting: 1, DisjointWeighting: 1, WeightWeighting: 0.4, Threshold: 3}
	assert.InDelta(t, 5.2, c.Distance(rep, g), 1e-12)
}

func TestDistanceToSelfIsZero(t *testing.T) {
	g := seedGenome(t, 3, 2, 6)
	rng := NewRand(6)
	for i := 0; i < 3; i++ {
		AddNodeMutation{}.Mutate(g, rng)
	}

	c := DistanceClassifier{ExcessWeighting: 1, DisjointWeighting: 1, WeightWeighting: 0.4, Threshold: 0.1}
	assert.Zero(t, c.Distance(g, g))

	s := NewSpecies(1, 0)
	s.Add(g)
	assert.True(t, c.IsWithinSpecies(s, g, rng))
}

func TestIsWithinSpeciesWithoutMembers(t *testing.T) {
	c := DistanceClassifier{ExcessWeighting: 1, DisjointWeighting: 1, WeightWeighting: 1, Threshold: 100}
	g := seedGenome(t, 1, 1, 1)

	s := NewSpecies(1, 0)
	assert.False(t, c.IsWithinSpecies(s, g, &scriptedRand{}))

	s.Add(g)
	assert.True(t, c.IsWithinSpecies(s, g, &scriptedRand{ints: []int{0}}))

	s.Clear()
	assert.True(t, s.IsEmpty())
	assert.Nil(t, s.Representative())
	assert.False(t, c.IsWithinSpecies(s, g, &scriptedRand{}))
}

func TestIsWithinSpeciesThroughKeptRepresentative(t *testing.T) {
	c := DistanceClassifier{ExcessWeighting: 1, DisjointWeighting: 1, WeightWeighting: 1, Threshold: 100}
	g := seedGenome(t, 1, 1, 1)

	s := NewSpecies(1, 0)
	s.Add(g)
	s.ClearKeepingRepresentative(&scriptedRand{ints: []int{0}})
	assert.True(t, s.IsEmpty())
	assert.Same(t, g, s.Representative())
	assert.True(t, c.IsWithinSpecies(s, g, &scriptedRand{}))

	s.Clear()
	assert.False(t, c.IsWithinSpecies(s, g, &scriptedRand{}))
}

func TestSpeciesCullKeepsUpperHalfAndMiddle(t *testing.T) {
	for m, want := range map[int]int{1: 1, 2: 2, 3: 2, 4: 3, 5: 3, 6: 4, 7: 4, 8: 5, 9: 5} {
		fitness := make([]float64, m)
		for i := range fitness {
			fitness[i] = float64(i)
		}
		s := speciesOf(t, 1, fitness...)
		s.Cull()

		require.Equal(t, want, s.Len(), "m=%d", m)
		for i, g := range s.Members() {
			assert.Equal(t, float64(m-1-i), g.Fitness)
		}
	}
}

func TestSpeciesUpdateBestTracksStaleness(t *testing.T) {
	s := NewSpecies(1, 0)
	g := seedGenome(t, 1, 1, 1)

	step := func(fitness float64) {
		s.Clear()
		g.Fitness = fitness
		s.Add(g)
		s.UpdateBest()
	}

	step(1)
	assert.Equal(t, 0, s.Staleness)
	assert.Equal(t, 1.0, s.HighestFitness)

	step(1)
	assert.Equal(t, 1, s.Staleness)

	step(0.5)
	assert.Equal(t, 2, s.Staleness)
	assert.Equal(t, 1.0, s.HighestFitness)

	step(2)
	assert.Equal(t, 0, s.Staleness)
	assert.Equal(t, 2.0, s.HighestFitness)
}

func TestSpeciesFitnessAggregates(t *testing.T) {
	s := speciesOf(t, 1, 1, 2, 6)
	assert.Equal(t, 9.0, s.TotalFitness())
	assert.Equal(t, 3.0, s.AverageFitness())
	assert.Equal(t, 6.0, s.Champion().Fitness)
	assert.Zero(t, NewSpecies(2, 0).AverageFitness())
}

func TestSpeciateGroupsCompatibleGenomes(t *testing.T) {
	seed := seedGenome(t, 2, 1, 12)
	c1, c2, c3 := seed.Clone(), seed.Clone(), seed.Clone()
	odd := seed.Clone()
	rng := NewRand(12)
	AddNodeMutation{}.Mutate(odd, rng)
	AddNodeMutation{}.Mutate(odd, rng)
	odd.Fitness = 10

	classifier := DistanceClassifier{ExcessWeighting: 1, DisjointWeighting: 1, Threshold: 1}
	ss := NewSpeciesSet()
	genomes := []*Genome{c1, c2, odd, c3}
	ss.Speciate(genomes, classifier, rng, 1)

	require.Len(t, ss.Species, 2)
	assert.Equal(t, []*Genome{odd}, ss.Species[0].Members())
	assert.Equal(t, []*Genome{c1, c2, c3}, ss.Species[1].Members())
	assert.Equal(t, 2, ss.Species[0].Key)
	assert.Equal(t, 1, ss.Species[1].Key)

	// Every generation starts from no species.
	ss.Speciate(genomes, classifier, rng, 2)
	require.Len(t, ss.Species, 2)
	assert.Equal(t, 4, ss.Species[0].Key)
	assert.Equal(t, 3, ss.Species[1].Key)
	assert.Equal(t, 2, ss.Species[1].Created)
	assert.Zero(t, ss.Species[1].Staleness)
	assert.Equal(t, 5, ss.Indexer)
}

func TestSpeciateKeepingRepresentatives(t *testing.T) {
	seed := seedGenome(t, 2, 1, 12)
	c1, c2, c3 := seed.Clone(), seed.Clone(), seed.Clone()
	odd := seed.Clone()
	rng := NewRand(12)
	AddNodeMutation{}.Mutate(odd, rng)
	AddNodeMutation{}.Mutate(odd, rng)
	odd.Fitness = 10

	classifier := DistanceClassifier{ExcessWeighting: 1, DisjointWeighting: 1, Threshold: 1}
	ss := &SpeciesSet{Indexer: 1, KeepRepresentatives: true}
	genomes := []*Genome{c1, c2, odd, c3}
	ss.Speciate(genomes, classifier, rng, 1)
	require.Len(t, ss.Species, 2)

	// Species survive into the next generation through their representatives.
	ss.Speciate(genomes, classifier, rng, 2)
	require.Len(t, ss.Species, 2)
	assert.Equal(t, 2, ss.Species[0].Key)
	assert.Equal(t, 1, ss.Species[1].Key)
	assert.Equal(t, 1, ss.Species[1].Staleness)
	assert.Equal(t, 3, ss.Indexer)

	// Species that attract no genome are dropped.
	ss.Speciate([]*Genome{c1}, classifier, rng, 3)
	require.Len(t, ss.Species, 1)
	assert.Equal(t, 1, ss.Species[0].Key)
}
