package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestBuildIndexIncludesDeps(t *testing.T) {
	nodes := []Node{
		{Name: "main", Deps: []string{"math", "util"}},
		{Name: "util"},
	}

	idx := BuildIndex(nodes)

	wantNames := []string{"main", "math", "util"}
	if !slices.Equal(idx.IDToName, wantNames) {
		t.Fatalf("IDToName = %v, want %v", idx.IDToName, wantNames)
	}
	for i, want := range wantNames {
		if id, ok := idx.NameToID[want]; !ok || int(id) != i {
			t.Fatalf("idx.NameToID[%q] = %v, want %d", want, id, i)
		}
	}
}

func TestBuildGraphReportsMissing(t *testing.T) {
	nodes := []Node{
		{Name: "app", Deps: []string{"core", "util", "app"}},
		{Name: "core", Deps: []string{"util", "util"}},
	}
	idx := BuildIndex(nodes)
	graph, missing := BuildGraph(idx, nodes)

	if !slices.Equal(missing, []string{"util"}) {
		t.Fatalf("missing = %v", missing)
	}
	appID, coreID := idx.NameToID["app"], idx.NameToID["core"]
	// ребро идёт от зависимости к зависимому
	if got := graph.Edges[int(coreID)]; !slices.Equal(got, []NodeID{appID}) {
		t.Fatalf("core edges = %v, want [%v]", got, appID)
	}
	if graph.Indeg[int(appID)] != 1 || graph.Indeg[int(coreID)] != 0 {
		t.Fatalf("indeg = %v", graph.Indeg)
	}
	if graph.Present[idx.NameToID["util"]] {
		t.Fatalf("util must not be present")
	}
}

func TestToposortKahnBatches(t *testing.T) {
	nodes := []Node{
		{Name: "b", Deps: []string{"c"}},
		{Name: "a"},
		{Name: "c"},
		{Name: "d", Deps: []string{"b", "a"}},
	}
	idx := BuildIndex(nodes)
	graph, _ := BuildGraph(idx, nodes)

	topo := ToposortKahn(graph)
	if topo.Cyclic {
		t.Fatalf("expected acyclic graph")
	}
	if got := idx.Names(topo.Order); !slices.Equal(got, []string{"a", "c", "b", "d"}) {
		t.Fatalf("order = %v", got)
	}
	wantBatches := [][]string{{"a", "c"}, {"b"}, {"d"}}
	if len(topo.Batches) != len(wantBatches) {
		t.Fatalf("batches len = %d, want %d", len(topo.Batches), len(wantBatches))
	}
	for i, want := range wantBatches {
		if got := idx.Names(topo.Batches[i]); !slices.Equal(got, want) {
			t.Fatalf("batch[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestSortErrors(t *testing.T) {
	_, err := Sort([]Node{{Name: "a", Deps: []string{"b"}}, {Name: "b", Deps: []string{"a"}}, {Name: "c"}})
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("err = %v, want cycle", err)
	}
	_, err = Sort([]Node{{Name: "a", Deps: []string{"ghost"}}})
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("err = %v, want missing", err)
	}
	order, err := Sort([]Node{{Name: "x", Deps: []string{"y"}}, {Name: "y"}})
	if err != nil || !slices.Equal(order, []string{"y", "x"}) {
		t.Fatalf("Sort = %v, %v", order, err)
	}
}
