// Package reason answers bounded multi-hop questions over the graph. A
// traversal starts from a seed edge (literal or pattern), walks the
// shared-atom adjacency breadth-first, and returns every reached edge with
// its distance and the path of edges that led to it.
package reason
