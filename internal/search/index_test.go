package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

// recordedExec captures one Exec call made against the mock transaction.
type recordedExec struct {
	sql  string
	args []any
}

// mockTx implements DBTX and records every statement in order.
type mockTx struct {
	execs   []recordedExec
	failOn  int // 1-based call number to fail on; 0 disables
	execErr error
}

func (m *mockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.execs = append(m.execs, recordedExec{sql: sql, args: args})
	if m.failOn != 0 && len(m.execs) == m.failOn {
		return pgconn.CommandTag{}, m.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func testDoc() Document {
	return Document{
		ArticleID: 42,
		Title:     "Raft",
		Body:      "Raft is a consensus algorithm.",
		Category:  "dsa",
		Topic:     "Raft",
		Slug:      "raft",
	}
}

func TestOnArticleInserted(t *testing.T) {
	tx := &mockTx{}
	ix := NewIndex(nil)

	if err := ix.OnArticleInserted(context.Background(), tx, testDoc()); err != nil {
		t.Fatalf("OnArticleInserted error: %v", err)
	}

	if len(tx.execs) != 1 {
		t.Fatalf("got %d statements, want 1", len(tx.execs))
	}
	if !strings.Contains(tx.execs[0].sql, "INSERT INTO article_search") {
		t.Errorf("unexpected SQL: %s", tx.execs[0].sql)
	}
	if !strings.Contains(tx.execs[0].sql, "setweight") {
		t.Errorf("index insert must build a weighted tsvector: %s", tx.execs[0].sql)
	}
	if got := tx.execs[0].args[0]; got != int64(42) {
		t.Errorf("article id arg = %v, want 42", got)
	}
}

func TestOnArticleUpdated_DeleteThenInsert(t *testing.T) {
	tx := &mockTx{}
	ix := NewIndex(nil)

	old := testDoc()
	updated := testDoc()
	updated.Body = "Raft, revised."

	if err := ix.OnArticleUpdated(context.Background(), tx, old, updated); err != nil {
		t.Fatalf("OnArticleUpdated error: %v", err)
	}

	if len(tx.execs) != 2 {
		t.Fatalf("got %d statements, want 2 (delete then insert)", len(tx.execs))
	}
	if !strings.Contains(tx.execs[0].sql, "DELETE FROM article_search") {
		t.Errorf("first statement should delete, got: %s", tx.execs[0].sql)
	}
	if !strings.Contains(tx.execs[1].sql, "INSERT INTO article_search") {
		t.Errorf("second statement should insert, got: %s", tx.execs[1].sql)
	}
	if got := tx.execs[1].args[2]; got != "Raft, revised." {
		t.Errorf("reindexed body = %v, want updated body", got)
	}
}

func TestOnArticleUpdated_RejectsIDChange(t *testing.T) {
	tx := &mockTx{}
	ix := NewIndex(nil)

	old := testDoc()
	updated := testDoc()
	updated.ArticleID = 43

	if err := ix.OnArticleUpdated(context.Background(), tx, old, updated); err == nil {
		t.Fatal("expected error for changed article id")
	}
	if len(tx.execs) != 0 {
		t.Errorf("no statements should run, got %d", len(tx.execs))
	}
}

func TestOnArticleDeleted(t *testing.T) {
	tx := &mockTx{}
	ix := NewIndex(nil)

	if err := ix.OnArticleDeleted(context.Background(), tx, 42); err != nil {
		t.Fatalf("OnArticleDeleted error: %v", err)
	}

	if len(tx.execs) != 1 || !strings.Contains(tx.execs[0].sql, "DELETE FROM article_search") {
		t.Fatalf("expected a single delete statement, got %+v", tx.execs)
	}
}

func TestIndexHooks_PropagateStorageErrors(t *testing.T) {
	wantErr := errors.New("deadlock detected")
	ix := NewIndex(nil)
	ctx := context.Background()

	tx := &mockTx{failOn: 1, execErr: wantErr}
	if err := ix.OnArticleInserted(ctx, tx, testDoc()); !errors.Is(err, wantErr) {
		t.Errorf("insert error = %v, want wrapped %v", err, wantErr)
	}

	// Failure on the re-insert half of an update must surface too.
	tx = &mockTx{failOn: 2, execErr: wantErr}
	if err := ix.OnArticleUpdated(ctx, tx, testDoc(), testDoc()); !errors.Is(err, wantErr) {
		t.Errorf("update error = %v, want wrapped %v", err, wantErr)
	}

	tx = &mockTx{failOn: 1, execErr: wantErr}
	if err := ix.OnArticleDeleted(ctx, tx, 42); !errors.Is(err, wantErr) {
		t.Errorf("delete error = %v, want wrapped %v", err, wantErr)
	}
}
