package neat

import "sync/atomic"

// IDAllocator hands out node ids and innovation ids. Both counters only ever grow,
// so every value returned is strictly greater than any value returned before it.
// It is safe for concurrent use.
type IDAllocator struct {
	node       atomic.Int64
	innovation atomic.Int64
}

// NextNodeID returns a node id never handed out before by this allocator.
func (a *IDAllocator) NextNodeID() int {
	return int(a.node.Add(1))
}

// NextInnovationID returns an innovation id never handed out before by this allocator.
func (a *IDAllocator) NextInnovationID() int {
	return int(a.innovation.Add(1))
}

// Reserve raises the counters so the next ids issued are above node and innovation.
// Used when genomes created elsewhere (a checkpoint) are brought back into the process.
func (a *IDAllocator) Reserve(node, innovation int) {
	raise(&a.node, int64(node))
	raise(&a.innovation, int64(innovation))
}

func raise(counter *atomic.Int64, floor int64) {
	for {
		cur := counter.Load()
		if cur >= floor {
			return
		}
		if counter.CompareAndSwap(cur, floor) {
			return
		}
	}
}

// ids is the process-wide allocator used by genome construction and the mutation operators.
var ids = &IDAllocator{}

// NextNodeID allocates a process-wide unique node id.
func NextNodeID() int { return ids.NextNodeID() }

// NextInnovationID allocates a process-wide unique innovation id.
func NextInnovationID() int { return ids.NextInnovationID() }

// ReserveIDs raises the process-wide counters, see IDAllocator.Reserve.
func ReserveIDs(node, innovation int) { ids.Reserve(node, innovation) }
