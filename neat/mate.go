package neat

import (
	"fmt"
	"slices"
)

// Mate produces a child from two parents without modifying either of them.
type Mate interface {
	Mate(a, b *Genome, rng Rand) (*Genome, error)
}

// WeightedMate pairs a mate strategy with its relative weight in the strategy draw.
type WeightedMate struct {
	Mate   Mate
	Weight float64
}

// chooseMate draws one strategy with probability proportional to its weight.
// Iteration follows slice order, which decides ties at the boundaries.
func chooseMate(mates []WeightedMate, rng Rand) (Mate, error) {
	total := 0.0
	for _, wm := range mates {
		total += wm.Weight
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: total weight %.3f", ErrMateDraw, total)
	}

	draw := rng.Float64() * total
	sum := 0.0
	for _, wm := range mates {
		sum += wm.Weight
		if wm.Weight > 0 && sum >= draw {
			return wm.Mate, nil
		}
	}
	return nil, fmt.Errorf("%w: draw %.3f over total %.3f", ErrMateDraw, draw, total)
}

// --------------------------- Clone ---------------------------

// CloneMate copies one parent picked uniformly at random.
type CloneMate struct{}

// Mate returns a structural copy of a or b.
func (CloneMate) Mate(a, b *Genome, rng Rand) (*Genome, error) {
	parent := a
	if rng.Float64() < 0.5 {
		parent = b
	}
	child := parent.Clone()
	child.Key = 0
	return child, nil
}

// --------------------------- Crossover ---------------------------

// CrossoverMate recombines two parents gene by gene, aligned on innovation id.
type CrossoverMate struct {
	// DisableChance decides the enabled flag of a matching gene the parents disagree
	// on: the child's gene is enabled iff a fresh draw exceeds DisableChance.
	DisableChance float64
}

// Mate walks the union of both parents' innovation ids in ascending order.
// Matching genes come from a random parent. Disjoint and excess genes come from the
// fitter parent only, or from both parents when fitness is exactly tied.
// With tied fitness a is treated as the fitter parent.
func (m CrossoverMate) Mate(a, b *Genome, rng Rand) (*Genome, error) {
	best, other := a, b
	if b.Fitness > a.Fitness {
		best, other = b, a
	}
	tied := best.Fitness == other.Fitness

	innovations := append(best.Innovations(), other.Innovations()...)
	slices.Sort(innovations)
	innovations = slices.Compact(innovations)

	child := NewGenome()
	for _, innov := range innovations {
		bc, inBest := best.Connection(innov)
		oc, inOther := other.Connection(innov)

		var gene *Connection
		switch {
		case inBest && inOther:
			if rng.Float64() < 0.5 {
				gene = bc.Copy()
			} else {
				gene = oc.Copy()
			}
			if bc.Enabled != oc.Enabled {
				gene.Enabled = rng.Float64() > m.DisableChance
			}
		case tied && inBest:
			gene = bc.Copy()
		case tied && inOther:
			gene = oc.Copy()
		case inBest:
			gene = bc.Copy()
		default:
			continue // unique to the weaker parent
		}

		if err := child.AddConnection(gene); err != nil {
			return nil, fmt.Errorf("crossover of genomes %d and %d: %w", best.Key, other.Key, err)
		}
	}
	return child, nil
}
