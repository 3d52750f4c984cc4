package jsonfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/apperr"
	"inkwell/internal/article"
	"inkwell/models"
)

func newCommentFixture(t *testing.T) (*Store, *CommentFileStorage, *UserFileStorage, *ArticleFileStorage) {
	t.Helper()
	store := newTestStore(t)
	users := NewUserFileStorage(store)
	articles := NewArticleFileStorage(store, users)
	comments := NewCommentFileStorage(store, users)
	return store, comments, users, articles
}

func TestCommentFileStorage_Create(t *testing.T) {
	_, comments, users, articles := newCommentFixture(t)

	author := registerTestUser(t, users, "author", "author@example.com")
	a, err := articles.Create(ctxFor(author.ID), article.CreateInput{
		Title: "post", Content: "body", Status: models.StatusPublished,
	})
	require.NoError(t, err)

	t.Run("Success comment creation with enriched author", func(t *testing.T) {
		created, err := comments.Create(ctxFor(author.ID), a.ID, "great read")
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, a.ID, created.ArticleID)
		assert.Equal(t, author.ID, created.AuthorID)
		assert.Equal(t, "author", created.Author.Username)
	})

	t.Run("Empty content rejected", func(t *testing.T) {
		_, err := comments.Create(ctxFor(author.ID), a.ID, "")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("Error: no authorization", func(t *testing.T) {
		_, err := comments.Create(ctxNoUser(), a.ID, "hi")
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})
}

func TestCommentFileStorage_ListForArticle(t *testing.T) {
	_, comments, users, articles := newCommentFixture(t)

	author := registerTestUser(t, users, "author", "author@example.com")
	a, err := articles.Create(ctxFor(author.ID), article.CreateInput{
		Title: "post", Content: "body", Status: models.StatusPublished,
	})
	require.NoError(t, err)

	_, err = comments.Create(ctxFor(author.ID), a.ID, "first")
	require.NoError(t, err)
	// Комментарий от несуществующего пользователя - автор-заглушка при чтении.
	_, err = comments.Create(ctxFor("ghost-user"), a.ID, "second")
	require.NoError(t, err)

	list, err := comments.ListForArticle(a.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "author", list[0].Author.Username)
	assert.Equal(t, models.UnknownUser(), list[1].Author)

	t.Run("Other article is empty", func(t *testing.T) {
		list, err := comments.ListForArticle("other")
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestCommentFileStorage_Delete(t *testing.T) {
	store, comments, users, articles := newCommentFixture(t)

	author := registerTestUser(t, users, "author", "author@example.com")
	stranger := registerTestUser(t, users, "stranger", "stranger@example.com")
	admin := registerTestUser(t, users, "admin", "admin@example.com")
	makeAdmin(t, store, admin.ID)

	a, err := articles.Create(ctxFor(author.ID), article.CreateInput{
		Title: "post", Content: "body", Status: models.StatusPublished,
	})
	require.NoError(t, err)

	first, err := comments.Create(ctxFor(author.ID), a.ID, "mine")
	require.NoError(t, err)
	second, err := comments.Create(ctxFor(author.ID), a.ID, "moderated away")
	require.NoError(t, err)

	t.Run("Stranger cannot delete", func(t *testing.T) {
		assert.ErrorIs(t, comments.Delete(ctxFor(stranger.ID), first.ID), apperr.ErrForbidden)
	})

	t.Run("Author deletes own comment", func(t *testing.T) {
		require.NoError(t, comments.Delete(ctxFor(author.ID), first.ID))
		assert.ErrorIs(t, comments.Delete(ctxFor(author.ID), first.ID), apperr.ErrNotFound)
	})

	t.Run("Admin deletes someone else's comment", func(t *testing.T) {
		require.NoError(t, comments.Delete(ctxFor(admin.ID), second.ID))
	})
}
