package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harubang/fengshui-site/auth"
	"github.com/harubang/fengshui-site/content"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
	"github.com/harubang/fengshui-site/internal/storage/sqlite"
	"github.com/harubang/fengshui-site/profiles"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := sqlite.Open("  ")
	require.Error(t, err)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.db")

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening the same file must not re-apply migrations.
	store, err = sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestUserStore_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	users := store.Users()
	ctx := context.Background()

	user := &auth.User{
		ID:           "user-1",
		Email:        "jane@example.com",
		PasswordHash: "hash",
		Metadata:     map[string]string{"full_name": "Jane Doe"},
		CreatedAt:    time.Now(),
	}
	require.NoError(t, users.Upsert(ctx, user))

	byEmail, err := users.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)
	require.Equal(t, "Jane Doe", byEmail.Metadata["full_name"])

	byID, err := users.GetByID(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, user.Email, byID.Email)

	_, err = users.GetByID(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, users.Delete(ctx, "user-1"))
	_, err = users.GetByID(ctx, "user-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

// seedUser satisfies the foreign keys on sessions and profiles.
func seedUser(t *testing.T, store *sqlite.Store, id string) {
	t.Helper()
	err := store.Users().Upsert(context.Background(), &auth.User{
		ID:        id,
		Email:     id + "@example.com",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
}

func TestSessionStore_ExpiryCleanup(t *testing.T) {
	store := openTestStore(t)
	sessions := store.Sessions()
	ctx := context.Background()
	now := time.Now()
	seedUser(t, store, "user-1")

	live := &auth.Session{
		UserID:           "user-1",
		AccessToken:      "access-live",
		RefreshToken:     "refresh-live",
		ExpiresAt:        now.Add(time.Hour),
		RefreshExpiresAt: now.Add(24 * time.Hour),
		CreatedAt:        now,
	}
	dead := &auth.Session{
		UserID:           "user-1",
		AccessToken:      "access-dead",
		RefreshToken:     "refresh-dead",
		ExpiresAt:        now.Add(-2 * time.Hour),
		RefreshExpiresAt: now.Add(-time.Hour),
		CreatedAt:        now.Add(-48 * time.Hour),
	}
	require.NoError(t, sessions.Upsert(ctx, live))
	require.NoError(t, sessions.Upsert(ctx, dead))

	require.NoError(t, sessions.DeleteExpired(ctx, now))

	_, err := sessions.GetByRefreshToken(ctx, "refresh-dead")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	found, err := sessions.GetByRefreshToken(ctx, "refresh-live")
	require.NoError(t, err)
	require.Equal(t, "user-1", found.UserID)
}

func TestProfileStore_AdminFlag(t *testing.T) {
	store := openTestStore(t)
	repo := store.Profiles()
	ctx := context.Background()
	seedUser(t, store, "user-1")

	profile := &profiles.Profile{ID: "user-1", Email: "jane@example.com", FullName: "Jane Doe"}
	require.NoError(t, repo.Upsert(ctx, profile))

	stored, err := repo.GetByID(ctx, "user-1")
	require.NoError(t, err)
	require.False(t, stored.IsAdmin)

	require.NoError(t, repo.SetAdmin(ctx, "user-1", true))
	stored, err = repo.GetByID(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, stored.IsAdmin)

	require.ErrorIs(t, repo.SetAdmin(ctx, "missing", true), apperrors.ErrNotFound)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestPostStore_PublishedFilterAndSlugLookup(t *testing.T) {
	store := openTestStore(t)
	posts := store.Posts()
	ctx := context.Background()
	now := time.Now()

	draft := &content.Post{ID: "post-1", Title: "Draft", Slug: "draft", Body: "...", AuthorID: "user-1", CreatedAt: now.Add(-time.Hour), UpdatedAt: now}
	published := &content.Post{ID: "post-2", Title: "Live", Slug: "live", Body: "...", Published: true, AuthorID: "user-1", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, posts.Upsert(ctx, draft))
	require.NoError(t, posts.Upsert(ctx, published))

	all, err := posts.List(ctx, content.PostListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Newest first
	require.Equal(t, "post-2", all[0].ID)

	visible, err := posts.List(ctx, content.PostListOptions{PublishedOnly: true})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, "post-2", visible[0].ID)

	bySlug, err := posts.GetBySlug(ctx, "live")
	require.NoError(t, err)
	require.Equal(t, "post-2", bySlug.ID)

	_, err = posts.GetBySlug(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	count, err := posts.Count(ctx, true)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// Upsert with the same ID updates in place.
	draft.Published = true
	require.NoError(t, posts.Upsert(ctx, draft))
	count, err = posts.Count(ctx, true)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestNoticeStore_PinnedOrdering(t *testing.T) {
	store := openTestStore(t)
	notices := store.Notices()
	ctx := context.Background()
	now := time.Now()

	older := &content.Notice{ID: "notice-1", Title: "Older", Body: "...", CreatedAt: now.Add(-2 * time.Hour)}
	newer := &content.Notice{ID: "notice-2", Title: "Newer", Body: "...", CreatedAt: now.Add(-time.Hour)}
	pinned := &content.Notice{ID: "notice-3", Title: "Pinned", Body: "...", Pinned: true, CreatedAt: now.Add(-3 * time.Hour)}
	for _, n := range []*content.Notice{older, newer, pinned} {
		require.NoError(t, notices.Upsert(ctx, n))
	}

	list, err := notices.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "notice-3", list[0].ID)
	require.Equal(t, "notice-2", list[1].ID)
	require.Equal(t, "notice-1", list[2].ID)

	require.NoError(t, notices.Delete(ctx, "notice-1"))
	count, err := notices.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestQuestionStore_AnswerAndAuthorFilter(t *testing.T) {
	store := openTestStore(t)
	questions := store.Questions()
	ctx := context.Background()
	now := time.Now()

	mine := &content.Question{ID: "q-1", AuthorID: "user-1", Title: "Door placement", Body: "...", Private: true, CreatedAt: now}
	theirs := &content.Question{ID: "q-2", AuthorID: "user-2", Title: "Mirror position", Body: "...", CreatedAt: now.Add(-time.Hour)}
	require.NoError(t, questions.Upsert(ctx, mine))
	require.NoError(t, questions.Upsert(ctx, theirs))

	byAuthor, err := questions.List(ctx, content.QuestionListOptions{AuthorID: "user-1"})
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	require.Equal(t, "q-1", byAuthor[0].ID)

	answeredAt := now.Truncate(time.Millisecond)
	require.NoError(t, questions.SetAnswer(ctx, "q-1", "Face east", answeredAt))

	answered, err := questions.GetByID(ctx, "q-1")
	require.NoError(t, err)
	require.True(t, answered.Answered())
	require.Equal(t, "Face east", answered.Answer)
	require.True(t, answered.AnsweredAt.Equal(answeredAt.UTC()))

	require.ErrorIs(t, questions.SetAnswer(ctx, "missing", "...", now), apperrors.ErrNotFound)
}

func TestReviewStore_ApprovalFilter(t *testing.T) {
	store := openTestStore(t)
	reviews := store.Reviews()
	ctx := context.Background()
	now := time.Now()

	pending := &content.Review{ID: "r-1", AuthorID: "user-1", Rating: 5, Body: "Great", CreatedAt: now}
	approved := &content.Review{ID: "r-2", AuthorID: "user-2", Rating: 4, Body: "Good", Approved: true, CreatedAt: now.Add(-time.Hour)}
	require.NoError(t, reviews.Upsert(ctx, pending))
	require.NoError(t, reviews.Upsert(ctx, approved))

	visible, err := reviews.List(ctx, content.ReviewListOptions{ApprovedOnly: true})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, "r-2", visible[0].ID)

	require.NoError(t, reviews.SetApproved(ctx, "r-1", true))
	visible, err = reviews.List(ctx, content.ReviewListOptions{ApprovedOnly: true})
	require.NoError(t, err)
	require.Len(t, visible, 2)

	require.ErrorIs(t, reviews.SetApproved(ctx, "missing", true), apperrors.ErrNotFound)

	total, err := reviews.Count(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 2, total)

	require.NoError(t, reviews.Delete(ctx, "r-1"))
	total, err = reviews.Count(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestStore_PaginationBounds(t *testing.T) {
	store := openTestStore(t)
	posts := store.Posts()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 5; i++ {
		post := &content.Post{
			ID:        "post-" + string(rune('a'+i)),
			Title:     "Post",
			Slug:      "post-" + string(rune('a'+i)),
			Body:      "...",
			Published: true,
			AuthorID:  "user-1",
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
			UpdatedAt: now,
		}
		require.NoError(t, posts.Upsert(ctx, post))
	}

	page, err := posts.List(ctx, content.PostListOptions{Offset: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)

	past, err := posts.List(ctx, content.PostListOptions{Offset: 10, Limit: 2})
	require.NoError(t, err)
	require.Empty(t, past)
}
