// Package sim runs the force-directed position simulation that lays out a
// knowledge graph in 3D.
//
// A State owns the canonical mutable array of simulated nodes for the
// lifetime of one graph instance. Every other component references nodes by
// id and re-reads positions through the State each frame; nothing holds a
// private copy that could desynchronize. Loading a new graph replaces the
// State wholesale.
//
// Five forces combine per tick: link attraction along edges (heavier edges
// pull nodes closer), pairwise charge repulsion (categories repel harder),
// a centering pull toward the origin, a weak z-axis pull that shapes the
// layout into a shallow dish, and collision resolution against visual radii.
// Alpha (system energy) decays each tick until the simulation rests.
package sim
