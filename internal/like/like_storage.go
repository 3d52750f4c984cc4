package like

import (
	"context"

	"inkwell/models"
)

type LikeStorage interface {
	// StateFor - чистая функция над снимком таблицы лайков.
	// Пустой userID означает анонимного читателя (IsLiked всегда false).
	StateFor(articleID, userID string) (models.LikeState, error)
	// Like добавляет лайк текущего пользователя (из ctx) и возвращает свежий агрегат.
	Like(ctx context.Context, articleID string) (models.LikeState, error)
	// Unlike снимает лайк текущего пользователя.
	Unlike(ctx context.Context, articleID string) (models.LikeState, error)
}
