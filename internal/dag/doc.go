// Package dag provides the directed acyclic graph underlying a compiled
// workflow. Nodes are identified by string IDs; an edge from A to B means B
// depends on A.
//
// Every query that returns several IDs returns them sorted, so two graphs
// built from the same nodes and edges answer identically whatever order they
// were built in.
package dag
