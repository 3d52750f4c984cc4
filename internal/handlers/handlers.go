// Package handlers - REST-поверхность поверх хранилищ и движка выдачи.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"inkwell/internal/apperr"
	"inkwell/internal/article"
	"inkwell/internal/auth"
	"inkwell/internal/comment"
	"inkwell/internal/like"
	"inkwell/internal/query"
	"inkwell/internal/user"
)

type Handler struct {
	engine   *query.Engine
	users    user.UserStorage
	articles article.ArticleStorage
	comments comment.CommentStorage
	likes    like.LikeStorage
	auth     *auth.Manager
	logger   *slog.Logger
}

func New(
	engine *query.Engine,
	users user.UserStorage,
	articles article.ArticleStorage,
	comments comment.CommentStorage,
	likes like.LikeStorage,
	authManager *auth.Manager,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		engine:   engine,
		users:    users,
		articles: articles,
		comments: comments,
		likes:    likes,
		auth:     authManager,
		logger:   logger,
	}
}

// Register вешает маршруты на движок gin.
func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.GET("/auth/me", h.auth.Required(), h.me)

		api.GET("/users", h.listUsers)
		api.GET("/users/me/articles", h.auth.Required(), h.myArticles)
		api.GET("/users/:id", h.getUser)

		api.GET("/articles", h.auth.Optional(), h.listArticles)
		api.POST("/articles", h.auth.Required(), h.createArticle)
		api.GET("/articles/:id", h.auth.Optional(), h.getArticle)
		api.PUT("/articles/:id", h.auth.Required(), h.updateArticle)
		api.DELETE("/articles/:id", h.auth.Required(), h.deleteArticle)

		api.POST("/articles/:id/like", h.auth.Required(), h.likeArticle)
		api.DELETE("/articles/:id/like", h.auth.Required(), h.unlikeArticle)

		api.GET("/articles/:id/comments", h.listComments)
		api.POST("/articles/:id/comments", h.auth.Required(), h.addComment)
		api.DELETE("/comments/:id", h.auth.Required(), h.deleteComment)

		api.GET("/search", h.auth.Optional(), h.search)
		api.GET("/categories", h.categories)
	}
}

// --- auth ---

type registerRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *Handler) register(c *gin.Context) {
	var body registerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username, email and password are required"})
		return
	}

	created, err := h.users.Register(c.Request.Context(), user.RegisterInput{
		Username:  body.Username,
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Password:  body.Password,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
			return
		}
		h.error(c, err)
		return
	}

	token, err := h.auth.Issue(created.ID)
	if err != nil {
		h.error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": created.Public(), "token": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		// Не различаем "нет такого email" и "неверный пароль".
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := h.auth.Issue(u.ID)
	if err != nil {
		h.error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": u.Public(), "token": token})
}

func (h *Handler) me(c *gin.Context) {
	callerID := auth.CallerID(c.Request.Context())
	u, err := h.users.GetByID(callerID)
	if err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

// --- users ---

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List()
	if err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) getUser(c *gin.Context) {
	u, err := h.users.GetByID(c.Param("id"))
	if err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

func (h *Handler) myArticles(c *gin.Context) {
	callerID := auth.CallerID(c.Request.Context())
	articles, err := h.engine.Mine(callerID)
	if err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

// --- articles ---

func (h *Handler) listArticles(c *gin.Context) {
	opts := query.ListOptions{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Author:   c.Query("author"),
		SortBy:   c.DefaultQuery("sortBy", "createdAt"),
		Order:    c.DefaultQuery("order", "desc"),
	}

	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && offset > 0 {
		opts.Offset = offset
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit >= 0 {
			opts.Limit = &limit
		}
	}

	result, err := h.engine.List(auth.CallerID(c.Request.Context()), opts)
	if err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getArticle(c *gin.Context) {
	enriched, err := h.engine.Get(c.Param("id"), auth.CallerID(c.Request.Context()))
	if err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusOK, enriched)
}

type articleRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Excerpt  string   `json:"excerpt"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Status   string   `json:"status"`
}

func (h *Handler) createArticle(c *gin.Context) {
	var body articleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	created, err := h.articles.Create(c.Request.Context(), article.CreateInput{
		Title:    body.Title,
		Content:  body.Content,
		Excerpt:  body.Excerpt,
		Category: body.Category,
		Tags:     body.Tags,
		Status:   body.Status,
	})
	if err != nil {
		h.error(c, err)
		return
	}

	enriched, err := h.engine.Get(created.ID, auth.CallerID(c.Request.Context()))
	if err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusCreated, enriched)
}

// Патч частичный: поля id, authorId и createdAt игнорируются,
// даже если присутствуют в теле запроса.
type articlePatch struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Excerpt  *string   `json:"excerpt"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
	Status   *string   `json:"status"`
}

func (h *Handler) updateArticle(c *gin.Context) {
	var body articlePatch
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	updated, err := h.articles.Update(c.Request.Context(), c.Param("id"), article.UpdateInput{
		Title:    body.Title,
		Content:  body.Content,
		Excerpt:  body.Excerpt,
		Category: body.Category,
		Tags:     body.Tags,
		Status:   body.Status,
	})
	if err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) deleteArticle(c *gin.Context) {
	if err := h.articles.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Article deleted"})
}

// --- likes ---

func (h *Handler) likeArticle(c *gin.Context) {
	state, err := h.likes.Like(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Article liked", "likes": state.Likes, "isLiked": state.IsLiked})
}

func (h *Handler) unlikeArticle(c *gin.Context) {
	state, err := h.likes.Unlike(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Article unliked", "likes": state.Likes, "isLiked": state.IsLiked})
}

// --- comments ---

func (h *Handler) listComments(c *gin.Context) {
	comments, err := h.comments.ListForArticle(c.Param("id"))
	if err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) addComment(c *gin.Context) {
	var body commentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "content is required"})
		return
	}

	created, err := h.comments.Create(c.Request.Context(), c.Param("id"), body.Content)
	if err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) deleteComment(c *gin.Context) {
	if err := h.comments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// --- search / categories ---

func (h *Handler) search(c *gin.Context) {
	result, err := h.engine.Search(c.Query("q"), c.DefaultQuery("type", "all"), auth.CallerID(c.Request.Context()))
	if err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) categories(c *gin.Context) {
	counts, err := h.engine.Categories()
	if err != nil {
		h.error(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// error переводит сигнальные ошибки в HTTP-статусы.
// Ошибки видимости и владения никогда не глотаются в пустой успех.
func (h *Handler) error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrInvalidCredential):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrNotLiked):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrValidation):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"message": "Server error"})
		return
	}
	c.JSON(status, gin.H{"message": err.Error()})
}
