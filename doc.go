// Package neatevo is a Go implementation of NeuroEvolution of Augmenting Topologies (NEAT).
//
// NEAT evolves both the structure and the connection weights of small feed-forward
// networks. Every connection gene carries a globally unique innovation id, which lets
// two genomes of different shape be aligned for crossover and for the compatibility
// distance that groups genomes into species. Speciation protects new topologies from
// competing directly with mature lineages until they have had time to optimise.
//
// The engine lives in package neat, the phenotype evaluator in neat/nn and an optional
// SQLite run history in neat/history.
//
// Basic usage:
//
//	// Load configuration
//	config, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Create a new population
//	pop, err := neat.NewPopulation(config)
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	// Run for 100 generations with your fitness function
//	best, err := pop.Run(func(g *neat.Genome) float64 {
//		out, err := nn.FeedForward(g, []float64{1, 0})
//		if err != nil {
//			return 0
//		}
//		return out[0]
//	}, 100)
//	if err != nil {
//		log.Fatalf("Error running evolution: %v", err)
//	}
//	fmt.Println("Best fitness:", best.Fitness)
package neatevo
