package collab

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmaas/techwiki/internal/article"
	"github.com/dmaas/techwiki/internal/log"
	"github.com/dmaas/techwiki/internal/search"
	"github.com/dmaas/techwiki/internal/testutil"
)

func setupCollab(t *testing.T) (*Store, int64, func()) {
	t.Helper()

	testDB, cleanup := testutil.SetupTestDB(t)
	logger := log.NewNop()
	articles := article.NewStore(testDB.Pool, search.NewIndex(logger), logger)

	a, err := articles.Create(context.Background(), article.Draft{
		Category: "dsa", Topic: "Graphs", Markdown: "b",
	})
	if err != nil {
		cleanup()
		t.Fatalf("creating fixture article: %v", err)
	}

	return New(testDB.Pool, logger), a.ID, cleanup
}

func TestCommentLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store, articleID, cleanup := setupCollab(t)
	defer cleanup()

	c, err := store.AddComment(ctx, articleID, 1, "Great overview of traversals.")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, c.Status, "new comments start pending")

	// Pending comments stay hidden from the public view.
	visible, err := store.Comments(ctx, articleID, false)
	require.NoError(t, err)
	assert.Empty(t, visible)

	moderation, err := store.Comments(ctx, articleID, true)
	require.NoError(t, err)
	require.Len(t, moderation, 1)

	require.NoError(t, store.Moderate(ctx, c.ID, StatusApproved))
	visible, err = store.Comments(ctx, articleID, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, StatusApproved, visible[0].Status)

	// Rejected comments disappear from both views' approved set.
	rejected, err := store.AddComment(ctx, articleID, 2, "spam")
	require.NoError(t, err)
	require.NoError(t, store.Moderate(ctx, rejected.ID, StatusRejected))
	visible, err = store.Comments(ctx, articleID, false)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	assert.ErrorIs(t, store.Moderate(ctx, uuid.New(), StatusApproved), ErrNotFound)
	assert.ErrorIs(t, store.Moderate(ctx, c.ID, "weird"), ErrInvalidStatus)
}

func TestCommentValidation_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store, articleID, cleanup := setupCollab(t)
	defer cleanup()

	_, err := store.AddComment(ctx, articleID, 1, "   ")
	assert.ErrorIs(t, err, ErrEmptyComment)

	_, err = store.AddComment(ctx, articleID, 1, strings.Repeat("x", MaxCommentLength+1))
	assert.ErrorIs(t, err, ErrCommentTooLong)

	_, err = store.AddComment(ctx, 999999, 1, "orphan")
	assert.ErrorIs(t, err, ErrUnknownArticle)
}

func TestBans_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store, articleID, cleanup := setupCollab(t)
	defer cleanup()

	const userID = 3

	// Permanent ban blocks commenting.
	require.NoError(t, store.BanUser(ctx, userID, "abuse", time.Time{}))
	_, err := store.AddComment(ctx, articleID, userID, "hello")
	assert.ErrorIs(t, err, ErrUserBanned)

	banned, err := store.IsBanned(ctx, userID)
	require.NoError(t, err)
	assert.True(t, banned)

	// An expired ban no longer applies.
	require.NoError(t, store.BanUser(ctx, userID, "old", time.Now().Add(-time.Hour)))
	banned, err = store.IsBanned(ctx, userID)
	require.NoError(t, err)
	assert.False(t, banned)

	_, err = store.AddComment(ctx, articleID, userID, "back again")
	require.NoError(t, err)

	require.NoError(t, store.UnbanUser(ctx, userID))
	assert.ErrorIs(t, store.UnbanUser(ctx, userID), ErrNotFound)
}
