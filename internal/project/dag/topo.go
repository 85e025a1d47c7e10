package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"
)

var (
	ErrCycle   = errors.New("dependency cycle")
	ErrMissing = errors.New("missing dependency")
)

type Topo struct {
	Order   []NodeID   // линейный порядок, зависимости раньше зависимых
	Batches [][]NodeID // волны независимых узлов
	Cyclic  bool
	Cycles  []NodeID // узлы, оставшиеся в цикле
}

func toID(i int) NodeID {
	id, err := safecast.Conv[NodeID](i)
	if err != nil {
		panic(fmt.Errorf("node id overflow: %w", err))
	}
	return id
}

// ToposortKahn orders present nodes in waves; ties break by id, so by name.
func ToposortKahn(g Graph) *Topo {
	count := len(g.Edges)
	indeg := slices.Clone(g.Indeg)
	topo := &Topo{Order: make([]NodeID, 0, count)}

	active := 0
	var current []NodeID
	for i := range count {
		if !g.Present[i] {
			continue
		}
		active++
		if indeg[i] == 0 {
			current = append(current, toID(i))
		}
	}

	for len(current) > 0 {
		topo.Batches = append(topo.Batches, current)
		var next []NodeID
		for _, id := range current {
			topo.Order = append(topo.Order, id)
			for _, to := range g.Edges[int(id)] {
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != active {
		topo.Cyclic = true
		for i := range count {
			if g.Present[i] && indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, toID(i))
			}
		}
	}
	return topo
}

// Sort returns node names with dependencies first.
func Sort(nodes []Node) ([]string, error) {
	idx := BuildIndex(nodes)
	g, missing := BuildGraph(idx, nodes)
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	topo := ToposortKahn(g)
	if topo.Cyclic {
		return idx.Names(topo.Order), fmt.Errorf("%w: %s", ErrCycle, strings.Join(idx.Names(topo.Cycles), " -> "))
	}
	return idx.Names(topo.Order), nil
}
