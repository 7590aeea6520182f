package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/topo"
)

func TestAddNodeMutationSplitsConnection(t *testing.T) {
	g := seedGenome(t, 2, 1, 3)
	old := g.ActiveConnections()[0]
	a, b, w := old.From, old.To, old.Weight

	AddNodeMutation{}.Mutate(g, &scriptedRand{ints: []int{0}})

	assert.False(t, old.Enabled)
	assert.Equal(t, 4, g.NumConnections())
	hidden := g.NodesOfType(HiddenNode)
	require.Len(t, hidden, 1)
	n := hidden[0]

	assert.True(t, g.IsConnected(a.ID, b.ID))
	var in, out *Connection
	for _, c := range g.ActiveConnections() {
		assert.False(t, c.From.ID == a.ID && c.To.ID == b.ID, "split connection still active")
		if c.From.ID == a.ID && c.To.ID == n.ID {
			in = c
		}
		if c.From.ID == n.ID && c.To.ID == b.ID {
			out = c
		}
	}
	require.NotNil(t, in)
	require.NotNil(t, out)
	assert.Equal(t, 1.0, in.Weight)
	assert.Equal(t, w, out.Weight)
	assert.Greater(t, in.Innovation, old.Innovation)
	assert.Greater(t, out.Innovation, in.Innovation)
}

func TestAddNodeMutationWithoutActiveConnectionsIsNoop(t *testing.T) {
	g := NewGenome()
	require.NoError(t, g.AddNode(NewNode(InputNode)))
	require.NoError(t, g.AddNode(NewNode(OutputNode)))

	AddNodeMutation{}.Mutate(g, &scriptedRand{})
	assert.Equal(t, 2, g.NumNodes())
	assert.Zero(t, g.NumConnections())
}

func TestAddConnectionMutationCanonicalDirection(t *testing.T) {
	g := NewGenome()
	in, out := NewNode(InputNode), NewNode(OutputNode)
	require.NoError(t, g.AddNode(in))
	require.NoError(t, g.AddNode(out))

	// Draws the OUTPUT node first; the mutation must still connect INPUT -> OUTPUT.
	AddConnectionMutation{Weights: DefaultWeightRange}.Mutate(g, &scriptedRand{
		ints:   []int{1, 0},
		floats: []float64{0.75},
	})

	require.Equal(t, 1, g.NumConnections())
	c := g.Connections()[0]
	assert.Equal(t, in, c.From)
	assert.Equal(t, out, c.To)
	assert.InDelta(t, 0.5, c.Weight, 1e-12)
	assert.True(t, c.Enabled)
}

func TestAddConnectionMutationNoops(t *testing.T) {
	mut := AddConnectionMutation{Weights: DefaultWeightRange}

	t.Run("same node", func(t *testing.T) {
		g := seedGenome(t, 2, 1, 1)
		mut.Mutate(g, &scriptedRand{ints: []int{0, 0}})
		assert.Equal(t, 2, g.NumConnections())
	})

	t.Run("two inputs", func(t *testing.T) {
		g := seedGenome(t, 2, 1, 1)
		mut.Mutate(g, &scriptedRand{ints: []int{0, 1}})
		assert.Equal(t, 2, g.NumConnections())
	})

	t.Run("existing connection", func(t *testing.T) {
		g := seedGenome(t, 2, 1, 1)
		mut.Mutate(g, &scriptedRand{ints: []int{0, 2}})
		assert.Equal(t, 2, g.NumConnections())
	})

	t.Run("closes a cycle", func(t *testing.T) {
		g := NewGenome()
		h1, h2 := NewNode(HiddenNode), NewNode(HiddenNode)
		require.NoError(t, g.AddConnection(NewConnection(h1, h2, 1)))
		mut.Mutate(g, &scriptedRand{ints: []int{1, 0}})
		assert.Equal(t, 1, g.NumConnections())
	})
}

func TestStructuralMutationsKeepInvariants(t *testing.T) {
	g := seedGenome(t, 3, 2, 7)
	rng := NewRand(7)
	addConn := AddConnectionMutation{Weights: DefaultWeightRange}

	for i := 0; i < 300; i++ {
		if i%4 == 0 {
			AddNodeMutation{}.Mutate(g, rng)
		} else {
			addConn.Mutate(g, rng)
		}

		pairs := make(map[ConnectionKey]bool)
		for _, c := range g.Connections() {
			require.NotEqual(t, c.From.ID, c.To.ID, "self-loop %s", c)
			require.False(t, pairs[c.Key()], "duplicate %s", c)
			pairs[c.Key()] = true
			require.False(t, c.From.Type == InputNode && c.To.Type == InputNode, "input pair %s", c)
			require.NotEqual(t, InputNode, c.To.Type, "connection into input %s", c)
		}
		_, err := topo.Sort(g.EnabledGraph())
		require.NoError(t, err, "enabled graph has a cycle after step %d", i)
	}
	assert.Greater(t, g.NumConnections(), 6)
}

func TestConnectionWeightMutationResetsWeight(t *testing.T) {
	g := seedGenome(t, 1, 1, 2)
	ConnectionWeightMutation{Weights: DefaultWeightRange}.Mutate(g, &scriptedRand{
		ints:   []int{0},
		floats: []float64{0.75},
	})
	assert.InDelta(t, 0.5, g.Connections()[0].Weight, 1e-12)
}

type countingMutation struct{ calls int }

func (m *countingMutation) Mutate(*Genome, Rand) { m.calls++ }

func TestMutationPipelineGatesEachMutation(t *testing.T) {
	first, second := &countingMutation{}, &countingMutation{}
	pipeline := MutationPipeline{
		{Mutation: first, Chance: 0.5},
		{Mutation: second, Chance: 0.5},
	}

	pipeline.Apply(NewGenome(), &scriptedRand{floats: []float64{0.4, 0.6}})
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)

	pipeline.Apply(NewGenome(), &scriptedRand{floats: []float64{0.5, 0.1}})
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}
