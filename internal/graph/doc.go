// Package graph derives the category/topic knowledge graph from the article
// corpus.
//
// The builder walks non-draft articles in trending order (views, then recency)
// and emits category nodes, topic nodes and category-membership edges. In
// linked mode it additionally parses each article's Markdown for internal
// /wiki/<category>/<slug> links and turns resolvable ones into cross-edges,
// subject to a hard global budget.
//
// Every build result is cached in a single process-wide slot for a bounded
// time window, keyed by the build parameters. The slot is owned by the
// Builder instance (injected clock, swappable corpus reader) rather than a
// package global, which keeps it mockable in tests. Concurrent builds for
// different parameter sets evict each other; with the low parameter
// cardinality this sees in practice that is an accepted trade-off, not a bug.
package graph
