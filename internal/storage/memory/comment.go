package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"inkwell/internal/apperr"
	"inkwell/internal/article"
	"inkwell/internal/auth"
	"inkwell/internal/comment"
	"inkwell/internal/user"
	"inkwell/models"
)

type CommentMemoryStorage struct {
	mu       sync.Mutex
	comments map[string]*models.Comment
	nextID   int
	users    user.UserStorage
}

func NewCommentMemoryStorage(users user.UserStorage, articles article.ArticleStorage) *CommentMemoryStorage {
	s := &CommentMemoryStorage{
		comments: make(map[string]*models.Comment),
		nextID:   1,
		users:    users,
	}
	if a, ok := articles.(*ArticleMemoryStorage); ok {
		a.OnDelete(s.removeForArticle)
	}
	return s
}

var _ comment.CommentStorage = (*CommentMemoryStorage)(nil)

func (s *CommentMemoryStorage) Create(ctx context.Context, articleID, content string) (*models.EnrichedComment, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", apperr.ErrUnauthenticated)
	}

	if content == "" {
		return nil, fmt.Errorf("content is required: %w", apperr.ErrValidation)
	}

	s.mu.Lock()
	id := strconv.Itoa(s.nextID)
	s.nextID++

	c := &models.Comment{
		ID:        id,
		ArticleID: articleID,
		AuthorID:  userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	s.comments[id] = c
	created := *c
	s.mu.Unlock()

	return &models.EnrichedComment{Comment: created, Author: s.users.PublicView(userID)}, nil
}

func (s *CommentMemoryStorage) ListForArticle(articleID string) ([]models.EnrichedComment, error) {
	s.mu.Lock()
	matched := []models.Comment{}
	for _, c := range s.comments {
		if c.ArticleID == articleID {
			matched = append(matched, *c)
		}
	}
	s.mu.Unlock()

	// map не упорядочен - восстанавливаем порядок добавления.
	sort.Slice(matched, func(i, j int) bool {
		a, _ := strconv.Atoi(matched[i].ID)
		b, _ := strconv.Atoi(matched[j].ID)
		return a < b
	})

	enriched := make([]models.EnrichedComment, 0, len(matched))
	for _, c := range matched {
		enriched = append(enriched, models.EnrichedComment{Comment: c, Author: s.users.PublicView(c.AuthorID)})
	}
	return enriched, nil
}

func (s *CommentMemoryStorage) Delete(ctx context.Context, id string) error {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return fmt.Errorf("unauthorized: %w", apperr.ErrUnauthenticated)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.comments[id]
	if !exists {
		return fmt.Errorf("comment %s: %w", id, apperr.ErrNotFound)
	}
	if c.AuthorID != userID && !s.isAdmin(userID) {
		return fmt.Errorf("not author of comment %s: %w", id, apperr.ErrForbidden)
	}
	delete(s.comments, id)
	return nil
}

func (s *CommentMemoryStorage) isAdmin(userID string) bool {
	u, err := s.users.GetByID(userID)
	return err == nil && u.IsAdmin
}

func (s *CommentMemoryStorage) removeForArticle(articleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.comments {
		if c.ArticleID == articleID {
			delete(s.comments, id)
		}
	}
}
