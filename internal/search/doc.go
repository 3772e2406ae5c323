// Package search implements full-text search over the article corpus.
//
// It has three pieces:
//
//   - Tokenize: turns a raw user query into normalized prefix-match tokens.
//   - Index: keeps the article_search table (one row per article, weighted
//     tsvector) in step with the articles table. The hooks run inside the
//     caller's transaction, so an article write and its index mutation commit
//     or abort as one unit.
//   - Engine: executes a normalized query against the index and returns up to
//     MaxResults ranked results with highlighted snippets.
//
// Ranking uses PostgreSQL ts_rank with field weights (title A, topic B,
// category/slug C, body D), so a title match always outranks an otherwise
// identical body-only match, with ties broken by ascending article id to keep
// output order reproducible.
//
// The tsvector and tsquery both use the 'simple' configuration: no stemming
// and no stopword removal, matching the tokenizer's deliberately structural
// normalization.
package search
