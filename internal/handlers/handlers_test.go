package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/auth"
	"inkwell/internal/query"
	"inkwell/internal/storage/memory"
)

type testAPI struct {
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewUserMemoryStorage()
	articles := memory.NewArticleMemoryStorage(users)
	comments := memory.NewCommentMemoryStorage(users, articles)
	likes := memory.NewLikeMemoryStorage(articles)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := query.NewEngine(articles, users, likes, logger)
	authManager := auth.NewManager("test-secret", time.Hour)

	r := gin.New()
	New(engine, users, articles, comments, likes, authManager, logger).Register(r)
	return &testAPI{router: r}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// register создает пользователя через API и возвращает его id и токен.
func (a *testAPI) register(t *testing.T, username string) (id, token string) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode(t, w)
	u, ok := resp["user"].(map[string]any)
	require.True(t, ok)
	return u["id"].(string), resp["token"].(string)
}

func (a *testAPI) createArticle(t *testing.T, token string, body gin.H) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/articles", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["id"].(string)
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)

	t.Run("Register returns user and token", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"username": "alice", "email": "alice@example.com", "password": "secret123",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		resp := decode(t, w)
		assert.NotEmpty(t, resp["token"])
		u := resp["user"].(map[string]any)
		assert.Equal(t, "alice", u["username"])
		// Хеш пароля наружу не отдается.
		assert.NotContains(t, u, "password")
	})

	t.Run("Duplicate email is rejected", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"username": "alice2", "email": "alice@example.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User already exists", decode(t, w)["message"])
	})

	t.Run("Login with valid credentials", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "alice@example.com", "password": "secret123",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, decode(t, w)["token"])
	})

	t.Run("Wrong password and unknown email look the same", func(t *testing.T) {
		bad := api.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "alice@example.com", "password": "wrong",
		})
		unknown := api.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "ghost@example.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusBadRequest, bad.Code)
		assert.Equal(t, http.StatusBadRequest, unknown.Code)
		assert.Equal(t, decode(t, bad)["message"], decode(t, unknown)["message"])
	})

	t.Run("Me requires a token", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = api.do(t, http.MethodGet, "/api/auth/me", "garbage-token", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Me returns the caller", func(t *testing.T) {
		_, token := api.register(t, "bob")
		w := api.do(t, http.MethodGet, "/api/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "bob", decode(t, w)["username"])
	})
}

func TestArticleEndpoints(t *testing.T) {
	api := newTestAPI(t)
	_, ownerToken := api.register(t, "owner")
	_, readerToken := api.register(t, "reader")

	draftID := api.createArticle(t, ownerToken, gin.H{
		"title": "draft piece", "content": "wip", "status": "draft",
	})
	publishedID := api.createArticle(t, ownerToken, gin.H{
		"title": "published piece", "content": "done", "status": "published", "category": "tech",
	})

	t.Run("Create without token is 401", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/articles", "", gin.H{
			"title": "x", "content": "y", "status": "published",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Create without status is 400", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/articles", ownerToken, gin.H{
			"title": "x", "content": "y",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("List hides drafts from strangers", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/articles", readerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode(t, w)
		articles := resp["articles"].([]any)
		require.Len(t, articles, 1)
		first := articles[0].(map[string]any)
		assert.Equal(t, "published piece", first["title"])
		assert.Equal(t, "owner", first["author"].(map[string]any)["username"])
		assert.Equal(t, float64(1), resp["total"])
	})

	t.Run("Get draft by stranger is 403", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/articles/"+draftID, readerToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Get draft by owner succeeds", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/articles/"+draftID, ownerToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Get unknown article is 404", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/articles/nope", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Update by stranger is 403", func(t *testing.T) {
		w := api.do(t, http.MethodPut, "/api/articles/"+publishedID, readerToken, gin.H{
			"title": "hijacked",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Update by owner merges fields", func(t *testing.T) {
		w := api.do(t, http.MethodPut, "/api/articles/"+publishedID, ownerToken, gin.H{
			"title": "published piece v2",
		})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode(t, w)
		assert.Equal(t, "published piece v2", resp["title"])
		assert.Equal(t, "done", resp["content"])
	})

	t.Run("My articles includes drafts", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/users/me/articles", ownerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var mine []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
		assert.Len(t, mine, 2)
	})

	t.Run("Delete by stranger is 403, by owner succeeds", func(t *testing.T) {
		w := api.do(t, http.MethodDelete, "/api/articles/"+draftID, readerToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = api.do(t, http.MethodDelete, "/api/articles/"+draftID, ownerToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = api.do(t, http.MethodDelete, "/api/articles/"+draftID, ownerToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLikeEndpoints(t *testing.T) {
	api := newTestAPI(t)
	_, ownerToken := api.register(t, "owner")
	_, readerToken := api.register(t, "reader")

	articleID := api.createArticle(t, ownerToken, gin.H{
		"title": "likeable", "content": "c", "status": "published",
	})

	t.Run("Like then duplicate like", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/articles/"+articleID+"/like", readerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, float64(1), resp["likes"])
		assert.Equal(t, true, resp["isLiked"])

		w = api.do(t, http.MethodPost, "/api/articles/"+articleID+"/like", readerToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("isLiked is per caller", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/articles/"+articleID, ownerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, float64(1), resp["likes"])
		assert.Equal(t, false, resp["isLiked"])
	})

	t.Run("Unlike round-trip", func(t *testing.T) {
		w := api.do(t, http.MethodDelete, "/api/articles/"+articleID+"/like", readerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, float64(0), resp["likes"])
		assert.Equal(t, false, resp["isLiked"])
	})

	t.Run("Unlike without like is 400", func(t *testing.T) {
		w := api.do(t, http.MethodDelete, "/api/articles/"+articleID+"/like", readerToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Like of unknown article is 404", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/articles/nope/like", readerToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCommentEndpoints(t *testing.T) {
	api := newTestAPI(t)
	_, ownerToken := api.register(t, "owner")
	_, commenterToken := api.register(t, "commenter")

	articleID := api.createArticle(t, ownerToken, gin.H{
		"title": "discussed", "content": "c", "status": "published",
	})

	var commentID string

	t.Run("Add comment returns the enriched comment", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/articles/"+articleID+"/comments", commenterToken, gin.H{
			"content": "nice one",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		resp := decode(t, w)
		commentID = resp["id"].(string)
		assert.Equal(t, "nice one", resp["content"])
		assert.Equal(t, "commenter", resp["author"].(map[string]any)["username"])
	})

	t.Run("Empty content is 400", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/articles/"+articleID+"/comments", commenterToken, gin.H{
			"content": "",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("List is public", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/articles/"+articleID+"/comments", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var comments []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
		assert.Len(t, comments, 1)
	})

	t.Run("Delete by non-author is 403", func(t *testing.T) {
		w := api.do(t, http.MethodDelete, "/api/comments/"+commentID, ownerToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Delete by author succeeds", func(t *testing.T) {
		w := api.do(t, http.MethodDelete, "/api/comments/"+commentID, commenterToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSearchAndCategories(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register(t, "golang_fan")

	api.createArticle(t, token, gin.H{
		"title": "golang tricks", "content": "c", "status": "published", "category": "tech",
	})
	api.createArticle(t, token, gin.H{
		"title": "golang drafts", "content": "c", "status": "draft",
	})

	t.Run("Search without query is 400", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/search", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Search finds published articles and users", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/search?q=golang", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode(t, w)
		articles := resp["articles"].([]any)
		require.Len(t, articles, 1)
		assert.Equal(t, "golang tricks", articles[0].(map[string]any)["title"])
		assert.Len(t, resp["users"].([]any), 1)
		assert.Equal(t, float64(2), resp["total"])
	})

	t.Run("Categories count only published articles", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/categories", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var counts []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &counts))
		require.Len(t, counts, 1)
		assert.Equal(t, "tech", counts[0]["name"])
		assert.Equal(t, float64(1), counts[0]["count"])
	})

	t.Run("Pagination echoes offset and limit", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/articles?limit=1&offset=0", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode(t, w)
		assert.Equal(t, float64(1), resp["limit"])
		assert.Equal(t, float64(0), resp["offset"])
		assert.Equal(t, float64(1), resp["total"])
	})
}
