package neat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Population holds the state of the NEAT evolutionary process.
type Population struct {
	Config       *Config
	Genomes      []*Genome // Current generation of genomes
	SpeciesSet   *SpeciesSet
	Reproduction *Reproduction
	Stagnation   *Stagnation
	Generation   int       // Number of generations run so far
	BestGenome   *Genome   // Best genome found so far
	RunID        uuid.UUID // Identifies this run in reports, history and checkpoints

	rng        Rand
	classifier SpeciesClassifier
	reporters  []Reporter
}

// Option customises a Population built by NewPopulation or LoadCheckpoint.
type Option func(p *Population)

// WithRand replaces the random source, which is otherwise seeded from population.seed
// or from the clock.
func WithRand(rng Rand) Option {
	return func(p *Population) { p.rng = rng }
}

// WithClassifier replaces the compatibility distance classifier.
func WithClassifier(c SpeciesClassifier) Option {
	return func(p *Population) { p.classifier = c }
}

// WithSelector replaces the weighted fitness selector.
func WithSelector(s Selector) Option {
	return func(p *Population) { p.Reproduction.Selector = s }
}

// WithMates replaces the mate strategies built from the configuration.
func WithMates(mates ...WeightedMate) Option {
	return func(p *Population) { p.Reproduction.Mates = mates }
}

// WithMutations replaces the mutation pipeline built from the configuration.
func WithMutations(pipeline MutationPipeline) Option {
	return func(p *Population) { p.Reproduction.Mutations = pipeline }
}

// WithReporter registers a reporter.
func WithReporter(r Reporter) Option {
	return func(p *Population) { p.reporters = append(p.reporters, r) }
}

// newPopulationShell wires the strategies described by config, without any genomes.
func newPopulationShell(config *Config, opts []Option) *Population {
	var rng Rand
	if config.Population.HasSeed {
		rng = NewRand(config.Population.Seed)
	} else {
		rng = NewRand(time.Now().UnixNano())
	}

	p := &Population{
		Config:       config,
		SpeciesSet:   &SpeciesSet{Indexer: 1, KeepRepresentatives: config.Species.KeepRepresentative},
		Reproduction: NewReproduction(config.Mates(), config.Mutations(), WeightedFitnessSelect{}),
		Stagnation: &Stagnation{
			StaleThreshold: config.Species.StaleThreshold,
			SpeciesElitism: config.Species.Elitism,
		},
		RunID:      uuid.New(),
		rng:        rng,
		classifier: config.Classifier(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewPopulation creates a new Population instance.
// Every genome of the first generation shares the node and innovation ids of one
// minimal seed genome and gets its own random weights.
func NewPopulation(config *Config, opts ...Option) (*Population, error) {
	p := newPopulationShell(config, opts)

	weights := config.Genome.Weights()
	seed, err := NewMinimalGenome(config.Genome.NumInputs, config.Genome.NumOutputs, weights, p.rng)
	if err != nil {
		return nil, fmt.Errorf("failed to create seed genome: %w", err)
	}
	p.Genomes = p.Reproduction.CreateNewPopulation(seed, config.Population.Size, weights, p.rng)
	return p, nil
}

// AddReporter registers a reporter after construction.
func (p *Population) AddReporter(r Reporter) {
	p.reporters = append(p.reporters, r)
}

// RunGeneration executes a single generation of the NEAT algorithm: evaluate,
// speciate, remove stale and unproductive species, breed and replace.
// It returns the best genome of the evaluated generation.
func (p *Population) RunGeneration(fitness FitnessFunc) (*Genome, error) {
	p.Generation++
	genStartTime := time.Now()
	for _, r := range p.reporters {
		r.StartGeneration(p.Generation)
	}

	// 1. Evaluate Fitness
	evaluateGenomes(p.Genomes, fitness, p.Config.Population.Workers)
	stats := NewGenerationStats(p.RunID, p.Generation, p.Genomes)
	currentBest := stats.Champion
	if p.BestGenome == nil || currentBest.Fitness > p.BestGenome.Fitness {
		p.BestGenome = currentBest
	}

	// 2. Speciate
	p.SpeciesSet.Speciate(p.Genomes, p.classifier, p.rng, p.Generation)
	stats.NumSpecies = len(p.SpeciesSet.Species)

	// 3. Remove stale and unproductive species, cull the rest
	removed := p.Stagnation.Update(p.SpeciesSet, p.Config.Population.Size)
	stats.NumRemoved = len(removed)
	for _, info := range removed {
		for _, r := range p.reporters {
			r.SpeciesRemoved(p.Generation, info.Species, info.Reason)
		}
	}

	// 4. Reproduce
	next, err := p.Reproduction.Reproduce(p.SpeciesSet, p.Config.Population.Size, p.rng)
	if err != nil {
		return currentBest, fmt.Errorf("reproduction failed in generation %d: %w", p.Generation, err)
	}

	// 5. Replace
	p.Genomes = next

	stats.Elapsed = time.Since(genStartTime)
	for _, r := range p.reporters {
		if err := r.EndGeneration(stats); err != nil {
			return currentBest, fmt.Errorf("reporter failed in generation %d: %w", p.Generation, err)
		}
	}
	return currentBest, nil
}

// Run executes up to n generations. It stops early once the best genome reaches
// population.fitness-threshold, when one is configured. The best genome found is
// returned in both cases.
func (p *Population) Run(fitness FitnessFunc, n int) (*Genome, error) {
	for i := 0; i < n; i++ {
		if _, err := p.RunGeneration(fitness); err != nil {
			return p.BestGenome, err
		}
		if p.ThresholdReached() {
			break
		}
	}
	return p.BestGenome, nil
}

// ThresholdReached reports whether the best genome meets the configured fitness
// threshold. Without a threshold it is always false.
func (p *Population) ThresholdReached() bool {
	return p.Config.Population.HasFitnessThreshold && p.BestGenome != nil &&
		p.BestGenome.Fitness >= p.Config.Population.FitnessThreshold
}
