package neat

import (
	"fmt"
	"math"
)

// Reproduction handles the creation of new genomes, either from a seed or by breeding
// the surviving species.
type Reproduction struct {
	NextGenomeKey int           // State for the next genome key
	Ancestors     map[int][]int // Map genome key -> parent keys (for tracking lineage)

	Mates     []WeightedMate
	Mutations MutationPipeline
	Selector  Selector
}

// NewReproduction creates a new reproduction manager.
func NewReproduction(mates []WeightedMate, mutations MutationPipeline, selector Selector) *Reproduction {
	return &Reproduction{
		NextGenomeKey: 1, // Start genome keys at 1
		Ancestors:     make(map[int][]int),
		Mates:         mates,
		Mutations:     mutations,
		Selector:      selector,
	}
}

// getNextKey gets the next available genome key and increments the internal counter.
func (r *Reproduction) getNextKey() int {
	key := r.NextGenomeKey
	r.NextGenomeKey++
	return key
}

// CreateNewPopulation creates popSize genomes sharing the topology and innovation ids
// of seed, each with freshly drawn weights.
func (r *Reproduction) CreateNewPopulation(seed *Genome, popSize int, weights WeightRange, rng Rand) []*Genome {
	genomes := make([]*Genome, popSize)
	for i := range genomes {
		g := seed.WithRandomWeights(weights, rng)
		g.Key = r.getNextKey()
		genomes[i] = g
		r.Ancestors[g.Key] = []int{} // No parents for initial population
	}
	return genomes
}

// Reproduce breeds the next generation from the surviving, culled species. Each species
// passes its champion on unchanged and breeds quota-1 children; any shortfall left by
// rounding is filled from random species, so exactly popSize genomes come back.
func (r *Reproduction) Reproduce(ss *SpeciesSet, popSize int, rng Rand) ([]*Genome, error) {
	if len(ss.Species) == 0 {
		return nil, ErrNoSpecies
	}

	total := quotaTotal(ss.Species)
	next := make([]*Genome, 0, popSize)
	ancestors := make(map[int][]int, popSize)

	for _, s := range ss.Species {
		elite := s.Champion().Clone()
		next = append(next, elite)
		ancestors[elite.Key] = []int{elite.Key}

		quota := offspringQuota(s, total, len(ss.Species), popSize)
		for i := 1; i < quota; i++ {
			child, parents, err := r.breed(s, rng)
			if err != nil {
				return nil, err
			}
			next = append(next, child)
			ancestors[child.Key] = parents
		}
	}

	for len(next) < popSize {
		s := ss.Species[rng.Intn(len(ss.Species))]
		child, parents, err := r.breed(s, rng)
		if err != nil {
			return nil, err
		}
		next = append(next, child)
		ancestors[child.Key] = parents
	}

	r.Ancestors = ancestors
	return next, nil
}

// breed selects two parents from s, mates them and mutates the child.
func (r *Reproduction) breed(s *Species, rng Rand) (*Genome, []int, error) {
	mother, err := r.Selector.Select(s, rng)
	if err != nil {
		return nil, nil, err
	}
	father, err := r.Selector.Select(s, rng)
	if err != nil {
		return nil, nil, err
	}

	mate, err := chooseMate(r.Mates, rng)
	if err != nil {
		return nil, nil, err
	}
	child, err := mate.Mate(mother, father, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("species %d: %w", s.Key, err)
	}
	r.Mutations.Apply(child, rng)

	child.Key = r.getNextKey()
	child.Fitness = 0
	return child, []int{mother.Key, father.Key}, nil
}

// quotaTotal sums the species' average fitness, counting negative averages as zero.
func quotaTotal(species []*Species) float64 {
	total := 0.0
	for _, s := range species {
		total += math.Max(0, s.AverageFitness())
	}
	return total
}

// offspringQuota is floor(average / total * popSize). When total is not positive every
// one of the numSpecies species gets an equal floor share.
func offspringQuota(s *Species, total float64, numSpecies, popSize int) int {
	if !(total > 0) {
		if numSpecies == 0 {
			return 0
		}
		return popSize / numSpecies
	}
	return int(math.Floor(math.Max(0, s.AverageFitness()) / total * float64(popSize)))
}

// OffspringQuotas returns the quota of each species against their combined fitness.
func OffspringQuotas(species []*Species, popSize int) []int {
	total := quotaTotal(species)
	quotas := make([]int, len(species))
	for i, s := range species {
		quotas[i] = offspringQuota(s, total, len(species), popSize)
	}
	return quotas
}
