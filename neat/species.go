package neat

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Species represents a group of genetically similar genomes.
type Species struct {
	Key            int     // Unique identifier for the species.
	Created        int     // Generation number when the species was created.
	HighestFitness float64 // Best fitness any member has ever reached.
	Staleness      int     // Generations since HighestFitness last improved.

	members        []*Genome // ranked by fitness, descending
	representative *Genome   // a member of the previous generation, see ClearKeepingRepresentative
	hasBest        bool
}

// NewSpecies creates an empty species.
func NewSpecies(key, generation int) *Species {
	return &Species{
		Key:            key,
		Created:        generation,
		HighestFitness: math.Inf(-1),
	}
}

// Add appends g to the members. Ranking is restored by UpdateBest.
func (s *Species) Add(g *Genome) {
	s.members = append(s.members, g)
}

// Members returns the member genomes, best first once ranked.
func (s *Species) Members() []*Genome { return s.members }

// Len returns the number of members.
func (s *Species) Len() int { return len(s.members) }

// IsEmpty reports whether the species has no members.
func (s *Species) IsEmpty() bool { return len(s.members) == 0 }

// Representative returns the genome kept from the previous generation, if any.
func (s *Species) Representative() *Genome { return s.representative }

// Clear drops every member and any kept representative. A cleared species accepts no
// genome until something is added to it again.
func (s *Species) Clear() {
	s.members = s.members[:0]
	s.representative = nil
}

// ClearKeepingRepresentative drops every member but keeps one of them at random as
// the representative new genomes are compared against until the species has members
// again.
func (s *Species) ClearKeepingRepresentative(rng Rand) {
	if len(s.members) > 0 {
		s.representative = s.members[rng.Intn(len(s.members))]
	}
	s.members = s.members[:0]
}

// Champion returns the top-ranked member.
func (s *Species) Champion() *Genome {
	if len(s.members) == 0 {
		return nil
	}
	return s.members[0]
}

// rank sorts members by fitness, descending. Equal fitness keeps insertion order.
func (s *Species) rank() {
	sort.SliceStable(s.members, func(i, j int) bool {
		return s.members[i].Fitness > s.members[j].Fitness
	})
}

// UpdateBest ranks the members and compares the champion with the best fitness on
// record: a strict improvement resets staleness, anything else increments it.
func (s *Species) UpdateBest() {
	s.rank()
	champ := s.Champion()
	if champ == nil {
		s.Staleness++
		return
	}
	if !s.hasBest || champ.Fitness > s.HighestFitness {
		s.HighestFitness = champ.Fitness
		s.Staleness = 0
		s.hasBest = true
		return
	}
	s.Staleness++
}

// Cull keeps members 0..n/2 (n/2+1 of them) when there are at least two.
func (s *Species) Cull() {
	n := len(s.members)
	if n < 2 {
		return
	}
	s.rank()
	keep := n/2 + 1
	for i := keep; i < n; i++ {
		s.members[i] = nil
	}
	s.members = s.members[:keep]
}

// Fitnesses returns the members' fitness values in rank order.
func (s *Species) Fitnesses() []float64 {
	return fitnesses(s.members)
}

// TotalFitness returns the sum of the members' fitness.
func (s *Species) TotalFitness() float64 {
	return floats.Sum(s.Fitnesses())
}

// AverageFitness returns the mean fitness of the members, 0 for an empty species.
func (s *Species) AverageFitness() float64 {
	if len(s.members) == 0 {
		return 0
	}
	return stat.Mean(s.Fitnesses(), nil)
}

// String returns a short summary of the species.
func (s *Species) String() string {
	return fmt.Sprintf("Species(Key: %d, Members: %d, Highest: %.4f, Staleness: %d)",
		s.Key, len(s.members), s.HighestFitness, s.Staleness)
}

// --------------------------- Classifier ---------------------------

// SpeciesClassifier decides whether a genome belongs to a species.
type SpeciesClassifier interface {
	IsWithinSpecies(s *Species, g *Genome, rng Rand) bool
}

// DistanceClassifier is the NEAT compatibility distance
//
//	d = ExcessWeighting*E + DisjointWeighting*D + WeightWeighting*W
//
// measured against a random member of the species. A genome belongs to the species
// iff d < Threshold.
type DistanceClassifier struct {
	ExcessWeighting   float64
	DisjointWeighting float64
	WeightWeighting   float64
	Threshold         float64
}

// IsWithinSpecies draws a representative from the current members. An empty species
// only matches through a representative kept by ClearKeepingRepresentative; without
// one it is false.
func (c DistanceClassifier) IsWithinSpecies(s *Species, g *Genome, rng Rand) bool {
	var rep *Genome
	switch {
	case len(s.members) > 0:
		rep = s.members[rng.Intn(len(s.members))]
	case s.representative != nil:
		rep = s.representative
	default:
		return false
	}
	return c.Distance(rep, g) < c.Threshold
}

// Distance returns the weighted compatibility distance of g from rep.
func (c DistanceClassifier) Distance(rep, g *Genome) float64 {
	cmp := Compare(rep, g)
	return c.ExcessWeighting*float64(cmp.Excess) +
		c.DisjointWeighting*float64(cmp.Disjoint) +
		c.WeightWeighting*cmp.AverageWeightDifference
}

// Comparison holds the raw terms of the compatibility distance.
type Comparison struct {
	Excess                  int     // genes of g above rep's highest innovation
	Disjoint                int     // unmatched genes of either genome that are not excess
	Matching                int     // genes present in both
	AverageWeightDifference float64 // mean |wRep - wG| over matching genes, 0 without any
}

// Compare aligns the genes of rep and g by innovation id.
func Compare(rep, g *Genome) Comparison {
	var cmp Comparison
	repIDs, gIDs := rep.innovations, g.innovations
	repMax := rep.MaxInnovation()
	weightDiff := 0.0

	i, j := 0, 0
	for i < len(repIDs) || j < len(gIDs) {
		switch {
		case j >= len(gIDs) || (i < len(repIDs) && repIDs[i] < gIDs[j]):
			cmp.Disjoint++
			i++
		case i >= len(repIDs) || gIDs[j] < repIDs[i]:
			if gIDs[j] > repMax {
				cmp.Excess++
			} else {
				cmp.Disjoint++
			}
			j++
		default:
			weightDiff += math.Abs(rep.connections[repIDs[i]].Weight - g.connections[gIDs[j]].Weight)
			cmp.Matching++
			i++
			j++
		}
	}
	if cmp.Matching > 0 {
		cmp.AverageWeightDifference = weightDiff / float64(cmp.Matching)
	}
	return cmp
}

// --------------------------- SpeciesSet ---------------------------

// SpeciesSet manages the collection of species within a population.
type SpeciesSet struct {
	Species []*Species // ranked by HighestFitness, descending, after Speciate
	Indexer int        // next species key

	// KeepRepresentatives lets a species outlive a generation through one of its
	// previous members. Off, every generation is speciated from nothing.
	KeepRepresentatives bool
}

// NewSpeciesSet creates an empty species set.
func NewSpeciesSet() *SpeciesSet {
	return &SpeciesSet{Indexer: 1}
}

// Speciate rebuilds membership from scratch: every species is cleared, each genome joins
// the first species the classifier accepts or founds a new one, species left empty are
// dropped, and the rest are updated and ranked.
func (ss *SpeciesSet) Speciate(genomes []*Genome, classifier SpeciesClassifier, rng Rand, generation int) {
	for _, s := range ss.Species {
		if ss.KeepRepresentatives {
			s.ClearKeepingRepresentative(rng)
		} else {
			s.Clear()
		}
	}

	for _, g := range genomes {
		var home *Species
		for _, s := range ss.Species {
			if classifier.IsWithinSpecies(s, g, rng) {
				home = s
				break
			}
		}
		if home == nil {
			home = NewSpecies(ss.Indexer, generation)
			ss.Indexer++
			ss.Species = append(ss.Species, home)
		}
		home.Add(g)
	}

	kept := ss.Species[:0]
	for _, s := range ss.Species {
		if s.IsEmpty() {
			continue
		}
		s.UpdateBest()
		kept = append(kept, s)
	}
	ss.Species = kept

	sort.SliceStable(ss.Species, func(i, j int) bool {
		return ss.Species[i].HighestFitness > ss.Species[j].HighestFitness
	})
}

// Remove drops the species at index i, preserving order.
func (ss *SpeciesSet) Remove(i int) {
	ss.Species = append(ss.Species[:i], ss.Species[i+1:]...)
}
