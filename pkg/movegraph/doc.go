// Package movegraph deduplicates poses into the nodes of a move graph.
//
// A [Graph] owns an append-only arena of nodes. Node ids are stable
// indexes assigned in creation order and are never reused or renumbered.
// [Graph.InsertOrFind] resolves a candidate pose to the first existing
// node it matches, or creates a new node; authored (explicit) positions
// are trusted as distinct and always create a node.
//
// Resolution is first-match-wins, so the resulting graph depends on the
// order candidates arrive in. [Graph.ResolveAll] may run the read-only
// matching phase on several goroutines but commits serially, producing
// exactly the result of resolving the batch one candidate at a time.
//
// # Indexes
//
// By default every candidate is compared against every node
// ([IndexLinear]). [IndexHeadDistance] only compares against nodes whose
// head to head distance is within the match tolerance, which gives the
// same answers faster. [IndexCanonical] tries the node sharing the
// candidate's canonical key first and falls back to a full scan; it may
// resolve to a different (still equivalent) node than the linear scan
// when several nodes match.
//
// # Building
//
// [Build] turns a [catalog.Catalog] into a graph: explicit positions
// first, then for each transition its start and end poses are resolved
// and an edge is added, plus a reverse edge when the transition is
// bidirectional. Records that fail to decode are skipped and listed in
// the [Report].
package movegraph
