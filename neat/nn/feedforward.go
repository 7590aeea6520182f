package nn

import (
	"errors"
	"fmt"

	"github.com/baldhumanity/neatevo/neat"
	"gonum.org/v1/gonum/graph/topo"
)

var (
	// ErrInputLength is returned when the input vector does not match the INPUT nodes.
	ErrInputLength = errors.New("input length mismatch")
	// ErrCycle is returned when the enabled connections of a genome form a cycle.
	ErrCycle = errors.New("enabled connections form a cycle")
)

// link is one enabled incoming connection of a node.
type link struct {
	from   int
	weight float64
}

// FeedForwardNetwork represents a phenotype network that can be activated.
// It is immutable once compiled and safe for concurrent use.
type FeedForwardNetwork struct {
	InputIDs  []int // INPUT node ids in creation order
	OutputIDs []int // OUTPUT node ids in creation order

	order       []int // non-INPUT node ids, topologically sorted
	incoming    map[int][]link
	activates   map[int]bool
	activation  neat.ActivationType
	aggregation neat.AggregationType
}

// Option customises Compile.
type Option func(n *FeedForwardNetwork)

// WithActivation replaces the sigmoid applied by HIDDEN and OUTPUT nodes.
func WithActivation(fn neat.ActivationType) Option {
	return func(n *FeedForwardNetwork) { n.activation = fn }
}

// WithAggregation replaces the sum that combines the weighted inputs of a node.
func WithAggregation(fn neat.AggregationType) Option {
	return func(n *FeedForwardNetwork) { n.aggregation = fn }
}

// ConfigOptions returns the options selecting the activation and aggregation named
// in cfg.
func ConfigOptions(cfg *neat.Config) ([]Option, error) {
	act, err := neat.GetActivation(cfg.Genome.Activation)
	if err != nil {
		return nil, err
	}
	agg, err := neat.GetAggregation(cfg.Genome.Aggregation)
	if err != nil {
		return nil, err
	}
	return []Option{WithActivation(act), WithAggregation(agg)}, nil
}

// Compile builds a runnable feed-forward network from a genome.
// It fails with ErrCycle if the enabled connections are not acyclic.
func Compile(g *neat.Genome, opts ...Option) (*FeedForwardNetwork, error) {
	n := &FeedForwardNetwork{
		incoming:    make(map[int][]link),
		activates:   make(map[int]bool),
		activation:  neat.Sigmoid,
		aggregation: neat.AggregateSum,
	}
	for _, opt := range opts {
		opt(n)
	}

	for _, in := range g.Inputs() {
		n.InputIDs = append(n.InputIDs, in.ID)
	}
	for _, out := range g.Outputs() {
		n.OutputIDs = append(n.OutputIDs, out.ID)
	}

	for _, c := range g.ActiveConnections() {
		if c.From.ID == c.To.ID {
			return nil, fmt.Errorf("%w: self-loop on node %d", ErrCycle, c.From.ID)
		}
		n.incoming[c.To.ID] = append(n.incoming[c.To.ID], link{from: c.From.ID, weight: c.Weight})
	}

	sorted, err := topo.SortStabilized(g.EnabledGraph(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCycle, err)
	}
	for _, node := range sorted {
		id := int(node.ID())
		gn, _ := g.Node(id)
		if gn.Type == neat.InputNode {
			continue
		}
		n.order = append(n.order, id)
		n.activates[id] = gn.Type.Activates()
	}
	return n, nil
}

// Activate evaluates the network on one input vector and returns the OUTPUT values in
// creation order.
//
// INPUT nodes are the roots. Any other node activates once every source of its enabled
// incoming connections has activated: its weighted inputs are aggregated and, for
// HIDDEN and OUTPUT nodes, passed through the activation function. A node that never
// becomes ready keeps the raw aggregate of whatever reached it and passes nothing on.
func (n *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(n.InputIDs) {
		return nil, fmt.Errorf("%w: expected %d inputs, got %d", ErrInputLength, len(n.InputIDs), len(inputs))
	}

	size := len(n.InputIDs) + len(n.order)
	values := make(map[int]float64, size)
	activated := make(map[int]bool, size)
	for i, id := range n.InputIDs {
		values[id] = inputs[i]
		activated[id] = true
	}

	var weighted []float64
	for _, id := range n.order {
		links := n.incoming[id]
		ready := len(links) > 0
		weighted = weighted[:0]
		for _, l := range links {
			if !activated[l.from] {
				ready = false
				continue
			}
			weighted = append(weighted, l.weight*values[l.from])
		}

		raw := 0.0
		if len(weighted) > 0 {
			raw = n.aggregation(weighted)
		}
		if ready {
			activated[id] = true
			if n.activates[id] {
				raw = n.activation(raw)
			}
		}
		values[id] = raw
	}

	outputs := make([]float64, len(n.OutputIDs))
	for i, id := range n.OutputIDs {
		outputs[i] = values[id]
	}
	return outputs, nil
}

// FeedForward compiles g with the default sigmoid and sum and evaluates it once.
func FeedForward(g *neat.Genome, inputs []float64) ([]float64, error) {
	net, err := Compile(g)
	if err != nil {
		return nil, err
	}
	return net.Activate(inputs)
}
