// Package dag orders named nodes by their dependencies.
package dag

import "slices"

// Node is one named item and the names it depends on.
type Node struct {
	Name string
	Deps []string
}

type Graph struct {
	Edges   [][]NodeID // Edges[dep] = узлы, зависящие от dep
	Indeg   []int      // входящие степени для Kahn (только присутствующие узлы)
	Present []bool     // узел объявлен, а не только упомянут в Deps
}

// BuildGraph links every node after its dependencies. Names that are only
// referenced as dependencies are returned as missing, sorted.
func BuildGraph(idx Index, nodes []Node) (Graph, []string) {
	count := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]NodeID, count),
		Indeg:   make([]int, count),
		Present: make([]bool, count),
	}
	for _, n := range nodes {
		if id, ok := idx.NameToID[n.Name]; ok {
			g.Present[int(id)] = true
		}
	}

	var missing []string
	declared := make(map[NodeID]bool, len(nodes))
	for _, n := range nodes {
		to, ok := idx.NameToID[n.Name]
		if !ok || declared[to] {
			// повторное объявление не добавляет рёбер
			continue
		}
		declared[to] = true
		seen := make(map[NodeID]struct{}, len(n.Deps))
		for _, dep := range n.Deps {
			from, ok := idx.NameToID[dep]
			if !ok || from == to {
				continue
			}
			if _, dup := seen[from]; dup {
				continue
			}
			seen[from] = struct{}{}
			if !g.Present[int(from)] {
				if !slices.Contains(missing, dep) {
					missing = append(missing, dep)
				}
				continue
			}
			g.Edges[int(from)] = append(g.Edges[int(from)], to)
			g.Indeg[int(to)]++
		}
	}
	for i := range g.Edges {
		slices.Sort(g.Edges[i])
	}
	slices.Sort(missing)
	return g, missing
}
