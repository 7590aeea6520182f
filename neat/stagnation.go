package neat

import "fmt"

// RemovalReason says why a species was taken out of the breeding pool.
type RemovalReason int

const (
	// RemovedStale marks a species whose staleness reached the configured threshold.
	RemovedStale RemovalReason = iota
	// RemovedNoOffspring marks a species whose offspring quota rounded below one.
	RemovedNoOffspring
)

func (r RemovalReason) String() string {
	switch r {
	case RemovedStale:
		return "stale"
	case RemovedNoOffspring:
		return "no offspring"
	}
	return fmt.Sprintf("RemovalReason(%d)", int(r))
}

// Stagnation removes species that stopped improving or earn no offspring, and culls
// the rest down to their breeding half.
type Stagnation struct {
	StaleThreshold int // species with Staleness >= this are removed
	SpeciesElitism int // the top N species by HighestFitness are never removed as stale
}

// StagnationInfo records one removal.
type StagnationInfo struct {
	Species *Species
	Reason  RemovalReason
}

// Update filters the ranked species in place and returns what was removed.
// The fitness total used for the quota test is taken over every species before any
// removal; the quota of a species is computed after it has been culled.
func (st *Stagnation) Update(ss *SpeciesSet, popSize int) []StagnationInfo {
	total := quotaTotal(ss.Species)
	var removed []StagnationInfo

	kept := ss.Species[:0]
	for rank, s := range ss.Species {
		if s.Staleness >= st.StaleThreshold && rank >= st.SpeciesElitism {
			removed = append(removed, StagnationInfo{Species: s, Reason: RemovedStale})
			continue
		}

		s.Cull()

		if offspringQuota(s, total, len(ss.Species), popSize) < 1 {
			removed = append(removed, StagnationInfo{Species: s, Reason: RemovedNoOffspring})
			continue
		}
		kept = append(kept, s)
	}
	for i := len(kept); i < len(ss.Species); i++ {
		ss.Species[i] = nil
	}
	ss.Species = kept
	return removed
}
