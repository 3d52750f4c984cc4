package jsonfile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/comment"
	"inkwell/internal/user"
	"inkwell/models"
)

type CommentFileStorage struct {
	store *Store
	users user.UserStorage
}

func NewCommentFileStorage(store *Store, users user.UserStorage) *CommentFileStorage {
	return &CommentFileStorage{store: store, users: users}
}

var _ comment.CommentStorage = (*CommentFileStorage)(nil)

func (s *CommentFileStorage) Create(ctx context.Context, articleID, content string) (*models.EnrichedComment, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", apperr.ErrUnauthenticated)
	}

	if content == "" {
		return nil, fmt.Errorf("content is required: %w", apperr.ErrValidation)
	}

	created := models.Comment{
		ID:        uuid.NewString(),
		ArticleID: articleID,
		AuthorID:  userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := Update(s.store, Comments, func(comments []models.Comment) ([]models.Comment, error) {
		return append(comments, created), nil
	}); err != nil {
		return nil, err
	}

	return &models.EnrichedComment{Comment: created, Author: s.users.PublicView(userID)}, nil
}

func (s *CommentFileStorage) ListForArticle(articleID string) ([]models.EnrichedComment, error) {
	comments, err := Read[models.Comment](s.store, Comments)
	if err != nil {
		return nil, err
	}

	enriched := []models.EnrichedComment{}
	for _, c := range comments {
		if c.ArticleID != articleID {
			continue
		}
		enriched = append(enriched, models.EnrichedComment{Comment: c, Author: s.users.PublicView(c.AuthorID)})
	}
	return enriched, nil
}

func (s *CommentFileStorage) Delete(ctx context.Context, id string) error {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return fmt.Errorf("unauthorized: %w", apperr.ErrUnauthenticated)
	}

	_, err = Update(s.store, Comments, func(comments []models.Comment) ([]models.Comment, error) {
		idx := -1
		for i := range comments {
			if comments[i].ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, fmt.Errorf("comment %s: %w", id, apperr.ErrNotFound)
		}
		if comments[idx].AuthorID != userID && !s.isAdmin(userID) {
			return nil, fmt.Errorf("not author of comment %s: %w", id, apperr.ErrForbidden)
		}
		return append(comments[:idx], comments[idx+1:]...), nil
	})
	return err
}

func (s *CommentFileStorage) isAdmin(userID string) bool {
	u, err := s.users.GetByID(userID)
	return err == nil && u.IsAdmin
}
