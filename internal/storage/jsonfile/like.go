package jsonfile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/article"
	"inkwell/internal/auth"
	"inkwell/internal/like"
	"inkwell/models"
)

type LikeFileStorage struct {
	store    *Store
	articles article.ArticleStorage // Хранилище статей (внедрение зависимости (DI))
}

func NewLikeFileStorage(store *Store, articles article.ArticleStorage) *LikeFileStorage {
	return &LikeFileStorage{store: store, articles: articles}
}

var _ like.LikeStorage = (*LikeFileStorage)(nil)

func (s *LikeFileStorage) StateFor(articleID, userID string) (models.LikeState, error) {
	likes, err := Read[models.Like](s.store, Likes)
	if err != nil {
		return models.LikeState{}, err
	}
	return stateOf(likes, articleID, userID), nil
}

func (s *LikeFileStorage) Like(ctx context.Context, articleID string) (models.LikeState, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return models.LikeState{}, fmt.Errorf("unauthorized: %w", apperr.ErrUnauthenticated)
	}

	next, err := Update(s.store, Likes, func(likes []models.Like) ([]models.Like, error) {
		// Проверка существования - под замком Likes, чтобы параллельный
		// каскад удаления статьи не оставил осиротевшую строку лайка.
		if _, err := s.articles.GetByID(articleID); err != nil {
			return nil, err
		}
		for _, l := range likes {
			if l.ArticleID == articleID && l.UserID == userID {
				return nil, fmt.Errorf("like for article %s: %w", articleID, apperr.ErrConflict)
			}
		}
		return append(likes, models.Like{
			ID:        uuid.NewString(),
			ArticleID: articleID,
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		}), nil
	})
	if err != nil {
		return models.LikeState{}, err
	}

	return stateOf(next, articleID, userID), nil
}

func (s *LikeFileStorage) Unlike(ctx context.Context, articleID string) (models.LikeState, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return models.LikeState{}, fmt.Errorf("unauthorized: %w", apperr.ErrUnauthenticated)
	}

	next, err := Update(s.store, Likes, func(likes []models.Like) ([]models.Like, error) {
		if _, err := s.articles.GetByID(articleID); err != nil {
			return nil, err
		}
		idx := -1
		for i := range likes {
			if likes[i].ArticleID == articleID && likes[i].UserID == userID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, fmt.Errorf("like for article %s: %w", articleID, apperr.ErrNotLiked)
		}
		return append(likes[:idx], likes[idx+1:]...), nil
	})
	if err != nil {
		return models.LikeState{}, err
	}

	return stateOf(next, articleID, userID), nil
}

func stateOf(likes []models.Like, articleID, userID string) models.LikeState {
	state := models.LikeState{}
	for _, l := range likes {
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
