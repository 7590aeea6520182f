package neat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedRand replays fixed draws so a test can steer every random decision.
// It panics when a test consumes more draws than it scripted.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) Intn(n int) int {
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func testConfigValues() map[string]string {
	return map[string]string{
		"genome.input-nodes":                       "2",
		"genome.output-nodes":                      "1",
		"population.initial-size":                  "50",
		"population.seed":                          "1",
		"species.stale-threshold":                  "15",
		"species.compatibility.excess-weighting":   "1.0",
		"species.compatibility.disjoint-weighting": "1.0",
		"species.compatibility.weight-weighting":   "0.4",
		"species.compatibility.threshold":          "3.0",
		"mutation.change-weights-chance":           "0.8",
		"mutation.add-connection-chance":           "0.1",
		"mutation.add-node-chance":                 "0.05",
		"mate.clone-chance":                        "0.25",
		"mate.crossover-chance":                    "0.75",
		"mate.crossover.disable-connection-chance": "0.75",
	}
}

func testConfig(t *testing.T, overrides map[string]string) *Config {
	t.Helper()
	values := testConfigValues()
	for k, v := range overrides {
		values[k] = v
	}
	cfg, err := LoadConfigFromMap(values)
	require.NoError(t, err)
	return cfg
}

// seedGenome returns a minimal genome with fixed weights drawn from seed.
func seedGenome(t *testing.T, inputs, outputs int, seed int64) *Genome {
	t.Helper()
	g, err := NewMinimalGenome(inputs, outputs, DefaultWeightRange, NewRand(seed))
	require.NoError(t, err)
	return g
}

// speciesOf builds a ranked species whose members share one topology and carry the
// given fitness values.
func speciesOf(t *testing.T, key int, fitness ...float64) *Species {
	t.Helper()
	seed := seedGenome(t, 2, 1, int64(key))
	rng := NewRand(int64(key))
	s := NewSpecies(key, 0)
	for i, f := range fitness {
		g := seed.WithRandomWeights(DefaultWeightRange, rng)
		g.Key = key*100 + i
		g.Fitness = f
		s.Add(g)
	}
	s.UpdateBest()
	return s
}
