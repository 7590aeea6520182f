package neat

import (
	"fmt"
	"math/rand"
)

// Rand is the single source of randomness used by every strategy in this package.
// *rand.Rand satisfies it; tests pass a seeded one to get exact outcomes.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand returns a Rand seeded with seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// --------------------------- NodeType ---------------------------

// NodeType is the role of a node in the network.
type NodeType int

const (
	InputNode NodeType = iota
	HiddenNode
	OutputNode
)

// Order ranks node types so connections always run INPUT -> HIDDEN -> OUTPUT.
func (t NodeType) Order() int { return int(t) }

// SameTypeConnectionAllowed reports whether two nodes of this type may be connected.
func (t NodeType) SameTypeConnectionAllowed() bool { return t != InputNode }

// Activates reports whether the node applies the activation function when evaluated.
// Input nodes pass their value through unchanged.
func (t NodeType) Activates() bool { return t != InputNode }

func (t NodeType) String() string {
	switch t {
	case InputNode:
		return "INPUT"
	case HiddenNode:
		return "HIDDEN"
	case OutputNode:
		return "OUTPUT"
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// --------------------------- Node ---------------------------

// Node is a vertex of a genome. It is a value: copying it yields an independent node.
// The transient activation value lives in the evaluator's scratch space, never here.
type Node struct {
	ID   int
	Type NodeType
}

// NewNode creates a node of the given type with a freshly allocated id.
func NewNode(t NodeType) Node {
	return Node{ID: NextNodeID(), Type: t}
}

// String returns a string representation of the Node.
func (n Node) String() string {
	return fmt.Sprintf("Node(ID: %d, Type: %s)", n.ID, n.Type)
}

// --------------------------- Connection ---------------------------

// Connection is a directed, weighted edge between two nodes. Two connections are the
// same edge when they share (From.ID, To.ID); Innovation is the independent
// historical marker used to align genomes.
type Connection struct {
	From       Node
	To         Node
	Weight     float64
	Enabled    bool
	Innovation int
}

// NewConnection creates an enabled connection with a freshly allocated innovation id.
func NewConnection(from, to Node, weight float64) *Connection {
	return &Connection{
		From:       from,
		To:         to,
		Weight:     weight,
		Enabled:    true,
		Innovation: NextInnovationID(),
	}
}

// Key returns the (from, to) pair identifying this edge.
func (c *Connection) Key() ConnectionKey {
	return ConnectionKey{From: c.From.ID, To: c.To.ID}
}

// String returns a string representation of the Connection.
func (c *Connection) String() string {
	return fmt.Sprintf("Connection(#%d %d->%d, Weight: %.3f, Enabled: %t)",
		c.Innovation, c.From.ID, c.To.ID, c.Weight, c.Enabled)
}

// Copy creates a deep copy of the Connection.
func (c *Connection) Copy() *Connection {
	cp := *c
	return &cp
}

// ConnectionKey identifies an edge by its endpoint node ids.
type ConnectionKey struct {
	From int
	To   int
}

// --------------------------- WeightRange ---------------------------

// WeightRange is the half-open interval [Min, Max) new weights are drawn from.
type WeightRange struct {
	Min float64
	Max float64
}

// DefaultWeightRange is used when the configuration does not set one.
var DefaultWeightRange = WeightRange{Min: -1, Max: 1}

// Draw returns a uniform random weight in the range.
func (r WeightRange) Draw(rng Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Contains reports whether w lies inside the range.
func (r WeightRange) Contains(w float64) bool {
	return w >= r.Min && w < r.Max
}
