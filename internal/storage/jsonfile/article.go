package jsonfile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/article"
	"inkwell/internal/auth"
	"inkwell/internal/user"
	"inkwell/models"
)

type ArticleFileStorage struct {
	store *Store
	users user.UserStorage // для проверки флага админа (внедрение зависимости (DI))
}

func NewArticleFileStorage(store *Store, users user.UserStorage) *ArticleFileStorage {
	return &ArticleFileStorage{store: store, users: users}
}

var _ article.ArticleStorage = (*ArticleFileStorage)(nil)

func (s *ArticleFileStorage) Create(ctx context.Context, in article.CreateInput) (*models.Article, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", apperr.ErrUnauthenticated)
	}

	if in.Title == "" || in.Content == "" {
		return nil, fmt.Errorf("title and content are required: %w", apperr.ErrValidation)
	}
	// Статус задается явно: ядро не подставляет draft по умолчанию.
	if in.Status != models.StatusDraft && in.Status != models.StatusPublished {
		return nil, fmt.Errorf("status must be draft or published: %w", apperr.ErrValidation)
	}

	now := time.Now().UTC()
	created := models.Article{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Content:   in.Content,
		Excerpt:   in.Excerpt,
		Category:  in.Category,
		Tags:      in.Tags,
		Status:    in.Status,
		AuthorID:  userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = Update(s.store, Articles, func(articles []models.Article) ([]models.Article, error) {
		return append(articles, created), nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (s *ArticleFileStorage) Update(ctx context.Context, id string, in article.UpdateInput) (*models.Article, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", apperr.ErrUnauthenticated)
	}

	var updated models.Article
	_, err = Update(s.store, Articles, func(articles []models.Article) ([]models.Article, error) {
		idx := -1
		for i := range articles {
			if articles[i].ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, fmt.Errorf("article %s: %w", id, apperr.ErrNotFound)
		}

		if articles[idx].AuthorID != userID && !s.isAdmin(userID) {
			return nil, fmt.Errorf("not author of article %s: %w", id, apperr.ErrForbidden)
		}

		a := &articles[idx]
		if in.Title != nil {
			a.Title = *in.Title
		}
		if in.Content != nil {
			a.Content = *in.Content
		}
		if in.Excerpt != nil {
			a.Excerpt = *in.Excerpt
		}
		if in.Category != nil {
			a.Category = *in.Category
		}
		if in.Tags != nil {
			a.Tags = *in.Tags
		}
		if in.Status != nil {
			if *in.Status != models.StatusDraft && *in.Status != models.StatusPublished {
				return nil, fmt.Errorf("status must be draft or published: %w", apperr.ErrValidation)
			}
			a.Status = *in.Status
		}
		a.UpdatedAt = time.Now().UTC()

		updated = *a
		return articles, nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete удаляет статью и каскадно - ее комментарии и лайки.
func (s *ArticleFileStorage) Delete(ctx context.Context, id string) error {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return fmt.Errorf("unauthorized: %w", apperr.ErrUnauthenticated)
	}

	_, err = Update(s.store, Articles, func(articles []models.Article) ([]models.Article, error) {
		idx := -1
		for i := range articles {
			if articles[i].ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, fmt.Errorf("article %s: %w", id, apperr.ErrNotFound)
		}
		if articles[idx].AuthorID != userID && !s.isAdmin(userID) {
			return nil, fmt.Errorf("not author of article %s: %w", id, apperr.ErrForbidden)
		}
		return append(articles[:idx], articles[idx+1:]...), nil
	})
	if err != nil {
		return err
	}

	if _, err := Update(s.store, Comments, func(comments []models.Comment) ([]models.Comment, error) {
		kept := comments[:0]
		for _, c := range comments {
			if c.ArticleID != id {
				kept = append(kept, c)
			}
		}
		return kept, nil
	}); err != nil {
		return err
	}

	if _, err := Update(s.store, Likes, func(likes []models.Like) ([]models.Like, error) {
		kept := likes[:0]
		for _, l := range likes {
			if l.ArticleID != id {
				kept = append(kept, l)
			}
		}
		return kept, nil
	}); err != nil {
		return err
	}

	return nil
}

func (s *ArticleFileStorage) GetByID(id string) (*models.Article, error) {
	articles, err := Read[models.Article](s.store, Articles)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		if articles[i].ID == id {
			return &articles[i], nil
		}
	}
	return nil, fmt.Errorf("article %s: %w", id, apperr.ErrNotFound)
}

func (s *ArticleFileStorage) All() ([]models.Article, error) {
	return Read[models.Article](s.store, Articles)
}

func (s *ArticleFileStorage) isAdmin(userID string) bool {
	u, err := s.users.GetByID(userID)
	return err == nil && u.IsAdmin
}
