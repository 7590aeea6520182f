package neat

// Mutation changes one genome in place. Mutations are best effort: when the genome
// offers no legal target the call does nothing.
type Mutation interface {
	Mutate(g *Genome, rng Rand)
}

// WeightedMutation pairs a mutation with the probability that it fires on a child.
type WeightedMutation struct {
	Mutation Mutation
	Chance   float64
}

// MutationPipeline applies each mutation independently, gated by its own chance,
// in the order given.
type MutationPipeline []WeightedMutation

// Apply runs the pipeline over g.
func (p MutationPipeline) Apply(g *Genome, rng Rand) {
	for _, wm := range p {
		if rng.Float64() < wm.Chance {
			wm.Mutation.Mutate(g, rng)
		}
	}
}

// --------------------------- Add connection ---------------------------

// AddConnectionMutation connects two randomly drawn nodes that are not connected yet.
type AddConnectionMutation struct {
	Weights WeightRange
}

// Mutate draws two nodes uniformly. Nothing happens when they are the same node, when
// both have a type that may not connect to itself, when the edge already exists, or
// when the edge would close a cycle. Direction runs from the lower type order to the
// higher one; between equal types it follows the draw.
func (m AddConnectionMutation) Mutate(g *Genome, rng Rand) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return
	}
	from := nodes[rng.Intn(len(nodes))]
	to := nodes[rng.Intn(len(nodes))]

	if from.ID == to.ID {
		return
	}
	if from.Type == to.Type && !from.Type.SameTypeConnectionAllowed() {
		return
	}
	if from.Type.Order() > to.Type.Order() {
		from, to = to, from
	}
	if g.IsConnected(from.ID, to.ID) {
		return
	}
	if g.createsCycle(from.ID, to.ID) {
		return
	}

	if err := g.AddConnection(NewConnection(from, to, m.Weights.Draw(rng))); err != nil {
		panic(err) // both endpoints came from g, so the types agree
	}
}

// --------------------------- Add node ---------------------------

// AddNodeMutation splits a random enabled connection a->b into a->n->b.
// The split connection is disabled, never removed. a->n carries weight 1.0 and n->b
// carries the old weight, so the split starts close to the old behaviour.
type AddNodeMutation struct{}

// Mutate performs the split; a genome without enabled connections is left alone.
func (AddNodeMutation) Mutate(g *Genome, rng Rand) {
	active := g.ActiveConnections()
	if len(active) == 0 {
		return
	}
	old := active[rng.Intn(len(active))]
	old.Enabled = false

	node := NewNode(HiddenNode)
	g.mustAddNode(node)

	in := NewConnection(old.From, node, 1.0)
	out := NewConnection(node, old.To, old.Weight)
	for _, c := range []*Connection{in, out} {
		if err := g.AddConnection(c); err != nil {
			panic(err)
		}
	}
}

// --------------------------- Connection weight ---------------------------

// ConnectionWeightMutation replaces the weight of one random enabled connection with
// a fresh draw from Weights. It is a reset, not a perturbation.
type ConnectionWeightMutation struct {
	Weights WeightRange
}

// Mutate performs the reset; a genome without enabled connections is left alone.
func (m ConnectionWeightMutation) Mutate(g *Genome, rng Rand) {
	active := g.ActiveConnections()
	if len(active) == 0 {
		return
	}
	active[rng.Intn(len(active))].Weight = m.Weights.Draw(rng)
}
