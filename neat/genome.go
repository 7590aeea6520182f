package neat

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Genome represents an individual organism in the population.
// It owns its nodes and its connection genes; connections are kept ordered by
// innovation id, which crossover and the compatibility distance rely on.
type Genome struct {
	Key     int     // Population-assigned identifier, 0 for free-standing genomes.
	Fitness float64 // Set once per generation by the fitness function.

	nodes       map[int]Node
	nodeTypes   map[NodeType][]int // node ids per type, ascending (creation order)
	connections map[int]*Connection
	innovations []int // ascending
}

// NewGenome creates an empty genome.
func NewGenome() *Genome {
	return &Genome{
		nodes:       make(map[int]Node),
		nodeTypes:   make(map[NodeType][]int),
		connections: make(map[int]*Connection),
	}
}

// NewMinimalGenome creates numInputs INPUT nodes fully connected to numOutputs OUTPUT
// nodes. Every node and connection receives a fresh id; weights are drawn from weights.
func NewMinimalGenome(numInputs, numOutputs int, weights WeightRange, rng Rand) (*Genome, error) {
	if numInputs <= 0 {
		return nil, fmt.Errorf("minimal genome needs at least one input, got %d", numInputs)
	}
	if numOutputs <= 0 {
		return nil, fmt.Errorf("minimal genome needs at least one output, got %d", numOutputs)
	}

	g := NewGenome()
	for i := 0; i < numInputs; i++ {
		g.mustAddNode(NewNode(InputNode))
	}
	for i := 0; i < numOutputs; i++ {
		g.mustAddNode(NewNode(OutputNode))
	}
	for _, in := range g.Inputs() {
		for _, out := range g.Outputs() {
			if err := g.AddConnection(NewConnection(in, out, weights.Draw(rng))); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// --------------------------- Structure ---------------------------

// AddNode inserts node. It fails with ErrDuplicateNode if the id is already present.
func (g *Genome) AddNode(node Node) error {
	if _, exists := g.nodes[node.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, node.ID)
	}
	g.nodes[node.ID] = node
	ids := g.nodeTypes[node.Type]
	pos, _ := slices.BinarySearch(ids, node.ID)
	g.nodeTypes[node.Type] = slices.Insert(ids, pos, node.ID)
	return nil
}

// mustAddNode is for freshly allocated nodes, which cannot collide.
func (g *Genome) mustAddNode(node Node) {
	if err := g.AddNode(node); err != nil {
		panic(fmt.Sprintf("attempted to create duplicate node key: %v", err))
	}
}

// AddConnection inserts conn under its innovation id. Endpoints not yet present in the
// genome are added implicitly, which lets crossover assemble a genome from genes alone.
// The caller is responsible for the (from, to) uniqueness check, see IsConnected.
func (g *Genome) AddConnection(conn *Connection) error {
	for _, end := range [2]Node{conn.From, conn.To} {
		existing, ok := g.nodes[end.ID]
		if !ok {
			if err := g.AddNode(end); err != nil {
				return err
			}
			continue
		}
		if existing.Type != end.Type {
			return fmt.Errorf("%w: node %d is %s, connection #%d says %s",
				ErrNodeTypeConflict, end.ID, existing.Type, conn.Innovation, end.Type)
		}
	}

	if _, exists := g.connections[conn.Innovation]; !exists {
		pos, _ := slices.BinarySearch(g.innovations, conn.Innovation)
		g.innovations = slices.Insert(g.innovations, pos, conn.Innovation)
	}
	g.connections[conn.Innovation] = conn
	return nil
}

// IsConnected reports whether any connection, enabled or not, runs from -> to.
func (g *Genome) IsConnected(from, to int) bool {
	for _, c := range g.connections {
		if c.From.ID == from && c.To.ID == to {
			return true
		}
	}
	return false
}

// --------------------------- Queries ---------------------------

// Node returns the node stored under id.
func (g *Genome) Node(id int) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node ordered by id.
func (g *Genome) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b Node) int { return a.ID - b.ID })
	return out
}

// NodesOfType returns the nodes of type t in creation order.
func (g *Genome) NodesOfType(t NodeType) []Node {
	ids := g.nodeTypes[t]
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id]
	}
	return out
}

// Inputs returns the INPUT nodes in creation order.
func (g *Genome) Inputs() []Node { return g.NodesOfType(InputNode) }

// Outputs returns the OUTPUT nodes in creation order.
func (g *Genome) Outputs() []Node { return g.NodesOfType(OutputNode) }

// NumNodes returns the number of nodes in the genome.
func (g *Genome) NumNodes() int { return len(g.nodes) }

// NumConnections returns the number of connection genes, enabled or not.
func (g *Genome) NumConnections() int { return len(g.connections) }

// Connection returns the gene with the given innovation id.
func (g *Genome) Connection(innovation int) (*Connection, bool) {
	c, ok := g.connections[innovation]
	return c, ok
}

// Connections returns every connection gene in ascending innovation order.
// The pointers are the genome's own genes; mutating them mutates the genome.
func (g *Genome) Connections() []*Connection {
	out := make([]*Connection, len(g.innovations))
	for i, innov := range g.innovations {
		out[i] = g.connections[innov]
	}
	return out
}

// ActiveConnections returns the enabled connections in ascending innovation order.
func (g *Genome) ActiveConnections() []*Connection {
	out := make([]*Connection, 0, len(g.innovations))
	for _, innov := range g.innovations {
		if c := g.connections[innov]; c.Enabled {
			out = append(out, c)
		}
	}
	return out
}

// Innovations returns the innovation ids of the genome in ascending order.
func (g *Genome) Innovations() []int {
	return slices.Clone(g.innovations)
}

// MaxInnovation returns the highest innovation id, or 0 for a genome without genes.
func (g *Genome) MaxInnovation() int {
	if len(g.innovations) == 0 {
		return 0
	}
	return g.innovations[len(g.innovations)-1]
}

// maxNodeID returns the highest node id present, or 0.
func (g *Genome) maxNodeID() int {
	maxID := 0
	for id := range g.nodes {
		maxID = max(maxID, id)
	}
	return maxID
}

// --------------------------- Copying ---------------------------

// Clone returns a structural copy that shares no mutable state with g.
// Fitness and Key are carried over.
func (g *Genome) Clone() *Genome {
	c := NewGenome()
	c.Key = g.Key
	c.Fitness = g.Fitness
	for _, n := range g.Nodes() {
		c.mustAddNode(n)
	}
	for _, conn := range g.Connections() {
		// Endpoints are already present, so this cannot fail.
		_ = c.AddConnection(conn.Copy())
	}
	return c
}

// WithRandomWeights returns a clone of g whose connection weights are redrawn.
// Node ids and innovation ids are kept, so the result aligns gene-for-gene with g.
func (g *Genome) WithRandomWeights(weights WeightRange, rng Rand) *Genome {
	c := g.Clone()
	c.Fitness = 0
	for _, conn := range c.Connections() {
		conn.Weight = weights.Draw(rng)
	}
	return c
}

// --------------------------- Graph view ---------------------------

// EnabledGraph returns the directed graph induced by the enabled connections.
// Graph node ids are genome node ids.
func (g *Genome) EnabledGraph() *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for id := range g.nodes {
		dg.AddNode(simple.Node(int64(id)))
	}
	for _, c := range g.ActiveConnections() {
		if c.From.ID == c.To.ID {
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(int64(c.From.ID)), simple.Node(int64(c.To.ID))))
	}
	return dg
}

// createsCycle reports whether adding an enabled connection from -> to would close
// a cycle over the enabled connections.
func (g *Genome) createsCycle(from, to int) bool {
	if from == to {
		return true
	}
	var dg graph.Graph = g.EnabledGraph()
	return topo.PathExistsIn(dg, simple.Node(int64(to)), simple.Node(int64(from)))
}

// String returns a short summary of the genome.
func (g *Genome) String() string {
	return fmt.Sprintf("Genome(Key: %d, Fitness: %.4f, Nodes: %d, Connections: %d, Active: %d)",
		g.Key, g.Fitness, len(g.nodes), len(g.connections), len(g.ActiveConnections()))
}

// --------------------------- Records ---------------------------

// GenomeRecord is a plain snapshot of a genome used for encoding (checkpoints, history).
type GenomeRecord struct {
	Key         int          `json:"key"`
	Fitness     float64      `json:"fitness"`
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}

// Record returns a snapshot of the genome.
func (g *Genome) Record() GenomeRecord {
	rec := GenomeRecord{
		Key:         g.Key,
		Fitness:     g.Fitness,
		Nodes:       g.Nodes(),
		Connections: make([]Connection, 0, len(g.innovations)),
	}
	for _, c := range g.Connections() {
		rec.Connections = append(rec.Connections, *c)
	}
	return rec
}

// GenomeFromRecord rebuilds a genome from a snapshot.
func GenomeFromRecord(rec GenomeRecord) (*Genome, error) {
	g := NewGenome()
	g.Key = rec.Key
	g.Fitness = rec.Fitness
	for _, n := range rec.Nodes {
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("failed to restore genome %d: %w", rec.Key, err)
		}
	}
	for i := range rec.Connections {
		c := rec.Connections[i]
		if err := g.AddConnection(&c); err != nil {
			return nil, fmt.Errorf("failed to restore genome %d: %w", rec.Key, err)
		}
	}
	return g, nil
}
