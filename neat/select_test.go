package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedFitnessSelectDrawsProportionally(t *testing.T) {
	s := speciesOf(t, 1, 3, 2, 1)
	members := s.Members()

	for _, tc := range []struct {
		draw float64
		want *Genome
	}{
		{draw: 0.0, want: members[0]},
		{draw: 0.4, want: members[0]},
		{draw: 0.5, want: members[0]}, // cumulative 3 meets a draw of exactly 3
		{draw: 0.6, want: members[1]},
		{draw: 0.95, want: members[2]},
	} {
		got, err := WeightedFitnessSelect{}.Select(s, &scriptedRand{floats: []float64{tc.draw}})
		require.NoError(t, err)
		assert.Same(t, tc.want, got, "draw %.2f", tc.draw)
	}
}

func TestWeightedFitnessSelectNonPositiveTotal(t *testing.T) {
	s := speciesOf(t, 1, 0, 0)
	got, err := WeightedFitnessSelect{}.Select(s, &scriptedRand{})
	require.NoError(t, err)
	assert.Same(t, s.Members()[0], got)

	s = speciesOf(t, 2, -1, 0.5)
	got, err = WeightedFitnessSelect{}.Select(s, &scriptedRand{})
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Fitness)
}

func TestWeightedFitnessSelectEmptySpecies(t *testing.T) {
	_, err := WeightedFitnessSelect{}.Select(NewSpecies(1, 0), &scriptedRand{})
	assert.ErrorIs(t, err, ErrSelectionExhausted)
}
