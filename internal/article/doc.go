// Package article persists encyclopedia entries in PostgreSQL.
//
// The store owns the write transactions: every insert, update and delete of
// an articles row also runs the matching full-text index hook inside the same
// transaction, so the article and its search row commit or roll back as one
// unit. Revisions go to article_versions on each write.
//
// Category and slug form the natural key and are normalized to lower case at
// the write path; lookups normalize the same way, so keys differing only in
// case address the same article.
package article
