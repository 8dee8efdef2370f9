package graph

// Adjacency is an id-keyed neighbor index built once per graph load.
// It holds no node references, keeping ownership acyclic: disposing a graph
// disposes the index with it.
type Adjacency map[string]map[string]struct{}

// BuildAdjacency indexes the edge list by node id. Edges with a dangling
// endpoint are skipped, matching the render pipeline's treatment of them.
// Edges are treated as undirected for neighborhood purposes.
func BuildAdjacency(nodes []Node, edges []Edge) Adjacency {
	live := make(map[string]bool, len(nodes))
	for i := range nodes {
		live[nodes[i].ID] = true
	}

	adj := make(Adjacency, len(nodes))
	add := func(from, to string) {
		set, ok := adj[from]
		if !ok {
			set = make(map[string]struct{})
			adj[from] = set
		}
		set[to] = struct{}{}
	}

	for _, e := range edges {
		if e.Source == e.Target || !live[e.Source] || !live[e.Target] {
			continue
		}
		add(e.Source, e.Target)
		add(e.Target, e.Source)
	}
	return adj
}

// Neighbors returns the direct (first-degree) neighbor set of id.
// Unknown ids yield an empty set.
func (a Adjacency) Neighbors(id string) map[string]struct{} {
	return a[id]
}

// Neighborhood classifies nodes around a focus id. First-degree nodes share
// an edge with the focus; second-degree nodes are neighbors-of-neighbors,
// excluding the focus itself and the first-degree set. The two sets are
// always disjoint and never contain the focus.
func (a Adjacency) Neighborhood(focus string) (first, second map[string]struct{}) {
	first = make(map[string]struct{})
	second = make(map[string]struct{})
	for id := range a[focus] {
		first[id] = struct{}{}
	}
	for id := range first {
		for hop := range a[id] {
			if hop == focus {
				continue
			}
			if _, ok := first[hop]; ok {
				continue
			}
			second[hop] = struct{}{}
		}
	}
	return first, second
}

// Degree returns the number of direct neighbors of id.
func (a Adjacency) Degree(id string) int { return len(a[id]) }

// MostConnected returns the id with the highest degree, breaking ties by
// the order of nodes, or "" for an empty graph.
func (a Adjacency) MostConnected(nodes []Node) string {
	best := ""
	bestDeg := -1
	for i := range nodes {
		if d := len(a[nodes[i].ID]); d > bestDeg {
			best = nodes[i].ID
			bestDeg = d
		}
	}
	return best
}
