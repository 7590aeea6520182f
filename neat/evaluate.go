package neat

import "github.com/sourcegraph/conc/pool"

// FitnessFunc scores one genome. It must not modify the genome; with more than one
// worker it is called concurrently for different genomes.
type FitnessFunc func(g *Genome) float64

// evaluateGenomes stores fitness(g) on every genome. With workers > 1 the calls are
// spread over a bounded goroutine pool; a panic in fitness is re-raised here.
func evaluateGenomes(genomes []*Genome, fitness FitnessFunc, workers int) {
	if workers <= 1 {
		for _, g := range genomes {
			g.Fitness = fitness(g)
		}
		return
	}

	p := pool.New().WithMaxGoroutines(workers)
	for _, g := range genomes {
		p.Go(func() {
			g.Fitness = fitness(g)
		})
	}
	p.Wait()
}
