// Package graph defines the knowledge-graph input model consumed by the
// layout and rendering engine: typed nodes (people, files, calendar events,
// topics, categories), weighted undirected edges, and the adjacency index
// used for neighbor-degree classification during focus.
//
// The package owns the JSON serialization of graphs. This is the input
// contract with the data-aggregation layer, not a persistence format: the
// engine rebuilds all derived state (adjacency, simulation positions) from
// scratch every time a graph is supplied.
package graph
