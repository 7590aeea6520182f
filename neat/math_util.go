package neat

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// fitnesses returns the fitness of each genome, in order.
func fitnesses(genomes []*Genome) []float64 {
	out := make([]float64, len(genomes))
	for i, g := range genomes {
		out[i] = g.Fitness
	}
	return out
}

// bestGenome returns the genome with the highest fitness; the first one wins ties.
func bestGenome(genomes []*Genome) *Genome {
	if len(genomes) == 0 {
		return nil
	}
	return genomes[floats.MaxIdx(fitnesses(genomes))]
}

// clamp restricts a value to a given range [minVal, maxVal].
func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}
