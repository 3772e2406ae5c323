// Package rag maintains article embeddings and serves related-article
// lookups over pgvector.
//
// Every published article gets one embedding row derived from its topic and
// body. Related lookups compare stored vectors with the cosine operator, so
// no model call happens on the read path.
package rag
