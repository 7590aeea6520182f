package neat

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// Reporter receives progress events from the generation loop.
type Reporter interface {
	StartGeneration(generation int)
	SpeciesRemoved(generation int, s *Species, reason RemovalReason)
	// EndGeneration is called once the next generation has been bred. An error aborts
	// the run.
	EndGeneration(stats GenerationStats) error
}

// GenerationStats summarises one evaluated generation.
type GenerationStats struct {
	RunID          uuid.UUID
	Generation     int
	PopulationSize int
	NumSpecies     int // species after speciation, before removals
	NumRemoved     int
	BestFitness    float64
	MeanFitness    float64
	StdDevFitness  float64
	Elapsed        time.Duration
	Champion       *Genome // best genome of the generation
}

// NewGenerationStats computes the fitness statistics of genomes.
func NewGenerationStats(runID uuid.UUID, generation int, genomes []*Genome) GenerationStats {
	stats := GenerationStats{
		RunID:          runID,
		Generation:     generation,
		PopulationSize: len(genomes),
		Champion:       bestGenome(genomes),
	}
	if len(genomes) == 0 {
		return stats
	}
	fit := fitnesses(genomes)
	stats.BestFitness = stats.Champion.Fitness
	if len(fit) > 1 {
		stats.MeanFitness, stats.StdDevFitness = stat.MeanStdDev(fit, nil)
	} else {
		stats.MeanFitness = fit[0]
	}
	return stats
}

// StdOutReporter prints progress lines to a writer.
type StdOutReporter struct {
	w            io.Writer
	ShowSpecies  bool // also print every removed species
	bestEver     float64
	hasBestEver  bool
	generationAt time.Time
}

// NewStdOutReporter creates a reporter writing to w.
func NewStdOutReporter(w io.Writer, showSpecies bool) *StdOutReporter {
	return &StdOutReporter{w: w, ShowSpecies: showSpecies}
}

func (r *StdOutReporter) StartGeneration(generation int) {
	r.generationAt = time.Now()
	fmt.Fprintf(r.w, "****** Generation %d ******\n", generation)
}

func (r *StdOutReporter) SpeciesRemoved(generation int, s *Species, reason RemovalReason) {
	if !r.ShowSpecies {
		return
	}
	fmt.Fprintf(r.w, " Species %d removed (%s): %d members, highest %.4f, staleness %d\n",
		s.Key, reason, s.Len(), s.HighestFitness, s.Staleness)
}

func (r *StdOutReporter) EndGeneration(stats GenerationStats) error {
	fmt.Fprintf(r.w, " Population of %s members in %s species (%s removed).\n",
		humanize.Comma(int64(stats.PopulationSize)), humanize.Comma(int64(stats.NumSpecies)),
		humanize.Comma(int64(stats.NumRemoved)))
	fmt.Fprintf(r.w, " Population's average fitness: %.5f stdev: %.5f\n", stats.MeanFitness, stats.StdDevFitness)
	if stats.Champion != nil {
		fmt.Fprintf(r.w, " Best fitness: %.5f - %s\n", stats.BestFitness, stats.Champion)
		if !r.hasBestEver || stats.BestFitness > r.bestEver {
			r.bestEver, r.hasBestEver = stats.BestFitness, true
			fmt.Fprintf(r.w, " New best genome found! Key: %d, Fitness: %.4f\n", stats.Champion.Key, stats.BestFitness)
		}
	}
	elapsed := stats.Elapsed
	if elapsed == 0 && !r.generationAt.IsZero() {
		elapsed = time.Since(r.generationAt)
	}
	_, err := fmt.Fprintf(r.w, "Generation %d finished in %s\n\n", stats.Generation, elapsed.Round(time.Microsecond))
	return err
}
