package network

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/store"
)

var errNotFound = errors.New("profile not found")

type fakeGraph struct {
	profiles map[string]common.Profile
	edges    []common.Linkage
}

func (g *fakeGraph) ListActive(ctx context.Context) ([]common.Profile, error) {
	var out []common.Profile
	for _, p := range g.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (g *fakeGraph) GetByID(ctx context.Context, id string) (*common.Profile, error) {
	p, ok := g.profiles[id]
	if !ok {
		return nil, errNotFound
	}
	return &p, nil
}

func (g *fakeGraph) UpdateDerived(ctx context.Context, id string, fields store.DerivedFields) error {
	return nil
}

func (g *fakeGraph) Upsert(ctx context.Context, l common.Linkage) error {
	g.edges = append(g.edges, l)
	return nil
}

func (g *fakeGraph) FindByProfile(ctx context.Context, profileID string) ([]common.Linkage, error) {
	var out []common.Linkage
	for _, l := range g.edges {
		if l.Profile1 == profileID || l.Profile2 == profileID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (g *fakeGraph) FindStrongByProfile(ctx context.Context, profileID string, minStrength int) ([]common.Linkage, error) {
	all, err := g.FindByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	var out []common.Linkage
	for _, l := range all {
		if l.Strength >= minStrength {
			out = append(out, l)
		}
	}
	return out, nil
}

func (g *fakeGraph) ListActiveLinkages(ctx context.Context) ([]common.Linkage, error) {
	return g.edges, nil
}

func (g *fakeGraph) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

// linkageSide exposes the linkage half of fakeGraph under the interface's
// method name.
type linkageSide struct{ *fakeGraph }

func (s linkageSide) ListActive(ctx context.Context) ([]common.Linkage, error) {
	return s.ListActiveLinkages(ctx)
}

func testGraph() *fakeGraph {
	return &fakeGraph{
		profiles: map[string]common.Profile{
			"a": {ID: "a", FullName: "Rahim Khan", SuspicionScore: 80, LinkageCount: 2},
			"b": {ID: "b", FullName: "Salim Shaikh", SuspicionScore: 60, LinkageCount: 2},
			"c": {ID: "c", FullName: "Akbar Ali", SuspicionScore: 50, LinkageCount: 1},
			"e": {ID: "e", FullName: "Weak Link", SuspicionScore: 10, LinkageCount: 1},
		},
		edges: []common.Linkage{
			{Profile1: "a", Profile2: "b", ConnectionType: "contact", Strength: 90, SuspicionScore: 70, IsActive: true},
			{Profile1: "b", Profile2: "c", ConnectionType: "associate", Strength: 80, SuspicionScore: 60, IsActive: true},
			{Profile1: "a", Profile2: "e", ConnectionType: "location", Strength: 40, SuspicionScore: 20, IsActive: true},
		},
	}
}

func nodeIDs(n *common.Network) []string {
	ids := make([]string, 0, len(n.Nodes))
	for _, node := range n.Nodes {
		ids = append(ids, node.ID)
	}
	sort.Strings(ids)
	return ids
}

func edgePairs(n *common.Network) []string {
	pairs := make([]string, 0, len(n.Edges))
	for _, e := range n.Edges {
		p1, p2 := common.CanonicalPair(e.Source, e.Target)
		pairs = append(pairs, p1+"|"+p2)
	}
	sort.Strings(pairs)
	return pairs
}

func TestExploreDepthOne(t *testing.T) {
	g := testGraph()
	e := NewExplorer(g, linkageSide{g})

	n, err := e.Explore(context.Background(), "a", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The weak edge to e is below the traversal cutoff; b is the only
	// neighbor. b's own strong edges are reported even though c is not
	// expanded at this depth.
	if diff := cmp.Diff([]string{"a", "b"}, nodeIDs(n)); diff != "" {
		t.Fatalf("unexpected nodes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a|b", "b|c"}, edgePairs(n)); diff != "" {
		t.Fatalf("unexpected edges (-want +got):\n%s", diff)
	}
}

func TestExploreDepthTwo(t *testing.T) {
	g := testGraph()
	e := NewExplorer(g, linkageSide{g})

	n, err := e.Explore(context.Background(), "a", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"a", "b", "c"}, nodeIDs(n)); diff != "" {
		t.Fatalf("unexpected nodes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a|b", "b|c"}, edgePairs(n)); diff != "" {
		t.Fatalf("unexpected edges (-want +got):\n%s", diff)
	}
}

func TestExploreDeduplicatesEdges(t *testing.T) {
	g := testGraph()
	e := NewExplorer(g, linkageSide{g})

	n, err := e.Explore(context.Background(), "a", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]int)
	for _, pair := range edgePairs(n) {
		seen[pair]++
	}
	for pair, count := range seen {
		if count > 1 {
			t.Fatalf("edge %s reported %d times", pair, count)
		}
	}
}

func TestExploreIsolatedSeed(t *testing.T) {
	g := &fakeGraph{
		profiles: map[string]common.Profile{
			"solo": {ID: "solo", FullName: "Solo"},
		},
	}
	e := NewExplorer(g, linkageSide{g})

	n, err := e.Explore(context.Background(), "solo", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.Nodes) != 1 || n.Nodes[0].ID != "solo" {
		t.Fatalf("unexpected nodes: %+v", n.Nodes)
	}
	if len(n.Edges) != 0 {
		t.Fatalf("unexpected edges: %+v", n.Edges)
	}
}

func TestExploreUnknownSeed(t *testing.T) {
	g := testGraph()
	e := NewExplorer(g, linkageSide{g})

	if _, err := e.Explore(context.Background(), "missing", 2); !errors.Is(err, errNotFound) {
		t.Fatalf("expected the store error to surface, got %v", err)
	}
}

func TestExploreNodeFields(t *testing.T) {
	g := testGraph()
	e := NewExplorer(g, linkageSide{g})

	n, err := e.Explore(context.Background(), "a", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.Nodes) != 1 {
		t.Fatalf("depth zero must only contain the seed, got %+v", n.Nodes)
	}
	node := n.Nodes[0]
	if node.Name != "Rahim Khan" || node.SuspicionScore != 80 || node.LinkageCount != 2 {
		t.Fatalf("unexpected node fields: %+v", node)
	}
}
