package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"inkwell/internal/apperr"
	"inkwell/internal/article"
	"inkwell/internal/auth"
	"inkwell/internal/like"
	"inkwell/models"
)

type LikeMemoryStorage struct {
	mu       sync.Mutex
	likes    map[string]*models.Like
	nextID   int
	articles article.ArticleStorage
}

func NewLikeMemoryStorage(articles article.ArticleStorage) *LikeMemoryStorage {
	s := &LikeMemoryStorage{
		likes:    make(map[string]*models.Like),
		nextID:   1,
		articles: articles,
	}
	if a, ok := articles.(*ArticleMemoryStorage); ok {
		a.OnDelete(s.removeForArticle)
	}
	return s
}

var _ like.LikeStorage = (*LikeMemoryStorage)(nil)

func (s *LikeMemoryStorage) StateFor(articleID, userID string) (models.LikeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(articleID, userID), nil
}

func (s *LikeMemoryStorage) Like(ctx context.Context, articleID string) (models.LikeState, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return models.LikeState{}, fmt.Errorf("unauthorized: %w", apperr.ErrUnauthenticated)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Проверка существования - под замком, чтобы параллельный каскад
	// удаления статьи не оставил осиротевшую строку лайка.
	if _, err := s.articles.GetByID(articleID); err != nil {
		return models.LikeState{}, err
	}

	for _, l := range s.likes {
		if l.ArticleID == articleID && l.UserID == userID {
			return models.LikeState{}, fmt.Errorf("like for article %s: %w", articleID, apperr.ErrConflict)
		}
	}

	id := strconv.Itoa(s.nextID)
	s.nextID++
	s.likes[id] = &models.Like{
		ID:        id,
		ArticleID: articleID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	return s.stateLocked(articleID, userID), nil
}

func (s *LikeMemoryStorage) Unlike(ctx context.Context, articleID string) (models.LikeState, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return models.LikeState{}, fmt.Errorf("unauthorized: %w", apperr.ErrUnauthenticated)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.articles.GetByID(articleID); err != nil {
		return models.LikeState{}, err
	}

	found := ""
	for id, l := range s.likes {
		if l.ArticleID == articleID && l.UserID == userID {
			found = id
			break
		}
	}
	if found == "" {
		return models.LikeState{}, fmt.Errorf("like for article %s: %w", articleID, apperr.ErrNotLiked)
	}
	delete(s.likes, found)

	return s.stateLocked(articleID, userID), nil
}

func (s *LikeMemoryStorage) stateLocked(articleID, userID string) models.LikeState {
	state := models.LikeState{}
	for _, l := range s.likes {
		if l.ArticleID != articleID {
			continue
		}
		state.Likes++
		if userID != "" && l.UserID == userID {
			state.IsLiked = true
		}
	}
	return state
}

func (s *LikeMemoryStorage) removeForArticle(articleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, l := range s.likes {
		if l.ArticleID == articleID {
			delete(s.likes, id)
		}
	}
}
