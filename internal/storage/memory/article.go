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
	"inkwell/internal/user"
	"inkwell/models"
)

type ArticleMemoryStorage struct {
	mu       sync.Mutex
	articles map[string]*models.Article
	nextID   int
	users    user.UserStorage // для проверки флага админа (внедрение зависимости (DI))

	// Каскадное удаление дочерних записей регистрируется сторонами-владельцами.
	onDelete []func(articleID string)
}

func NewArticleMemoryStorage(users user.UserStorage) *ArticleMemoryStorage {
	return &ArticleMemoryStorage{
		articles: make(map[string]*models.Article),
		nextID:   1,
		users:    users,
	}
}

var _ article.ArticleStorage = (*ArticleMemoryStorage)(nil)

// OnDelete регистрирует обработчик каскадного удаления.
func (s *ArticleMemoryStorage) OnDelete(fn func(articleID string)) {
	s.onDelete = append(s.onDelete, fn)
}

func (s *ArticleMemoryStorage) Create(ctx context.Context, in article.CreateInput) (*models.Article, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", apperr.ErrUnauthenticated)
	}

	if in.Title == "" || in.Content == "" {
		return nil, fmt.Errorf("title and content are required: %w", apperr.ErrValidation)
	}
	if in.Status != models.StatusDraft && in.Status != models.StatusPublished {
		return nil, fmt.Errorf("status must be draft or published: %w", apperr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.Itoa(s.nextID)
	s.nextID++

	now := time.Now().UTC()
	a := &models.Article{
		ID:        id,
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
	s.articles[id] = a

	created := *a
	return &created, nil
}

func (s *ArticleMemoryStorage) Update(ctx context.Context, id string, in article.UpdateInput) (*models.Article, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", apperr.ErrUnauthenticated)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.articles[id]
	if !exists {
		return nil, fmt.Errorf("article %s: %w", id, apperr.ErrNotFound)
	}
	if a.AuthorID != userID && !s.isAdmin(userID) {
		return nil, fmt.Errorf("not author of article %s: %w", id, apperr.ErrForbidden)
	}

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

	updated := *a
	return &updated, nil
}

func (s *ArticleMemoryStorage) Delete(ctx context.Context, id string) error {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return fmt.Errorf("unauthorized: %w", apperr.ErrUnauthenticated)
	}

	s.mu.Lock()
	a, exists := s.articles[id]
	if !exists {
		s.mu.Unlock()
		return fmt.Errorf("article %s: %w", id, apperr.ErrNotFound)
	}
	if a.AuthorID != userID && !s.isAdmin(userID) {
		s.mu.Unlock()
		return fmt.Errorf("not author of article %s: %w", id, apperr.ErrForbidden)
	}
	delete(s.articles, id)
	s.mu.Unlock()

	for _, fn := range s.onDelete {
		fn(id)
	}
	return nil
}

func (s *ArticleMemoryStorage) GetByID(id string) (*models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.articles[id]
	if !exists {
		return nil, fmt.Errorf("article %s: %w", id, apperr.ErrNotFound)
	}
	found := *a
	return &found, nil
}

func (s *ArticleMemoryStorage) All() ([]models.Article, error) {
	s.mu.Lock()
	all := make([]models.Article, 0, len(s.articles))
	for _, a := range s.articles {
		all = append(all, *a)
	}
	s.mu.Unlock()

	// map не упорядочен - восстанавливаем порядок добавления, иначе
	// выдача с равными ключами сортировки меняется от запроса к запросу.
	sort.Slice(all, func(i, j int) bool {
		a, _ := strconv.Atoi(all[i].ID)
		b, _ := strconv.Atoi(all[j].ID)
		return a < b
	})
	return all, nil
}

func (s *ArticleMemoryStorage) isAdmin(userID string) bool {
	u, err := s.users.GetByID(userID)
	return err == nil && u.IsAdmin
}
