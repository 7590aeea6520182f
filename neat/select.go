package neat

import "fmt"

// Selector picks a parent from a ranked species.
type Selector interface {
	Select(s *Species, rng Rand) (*Genome, error)
}

// WeightedFitnessSelect is fitness-proportionate (roulette wheel) selection.
type WeightedFitnessSelect struct{}

// Select returns the top-ranked member when the species' total fitness is not positive.
// Otherwise it draws in [0, total) and returns the first member, in rank order, whose
// cumulative fitness reaches the draw.
func (WeightedFitnessSelect) Select(s *Species, rng Rand) (*Genome, error) {
	members := s.Members()
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: species %d has no members", ErrSelectionExhausted, s.Key)
	}

	total := s.TotalFitness()
	if !(total > 0) {
		return members[0], nil
	}

	draw := rng.Float64() * total
	sum := 0.0
	for _, g := range members {
		sum += g.Fitness
		if sum >= draw {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: species %d, draw %.4f, total %.4f", ErrSelectionExhausted, s.Key, draw, total)
}
