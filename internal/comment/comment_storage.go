package comment

import (
	"context"

	"inkwell/models"
)

type CommentStorage interface {
	Create(ctx context.Context, articleID, content string) (*models.EnrichedComment, error)
	ListForArticle(articleID string) ([]models.EnrichedComment, error)
	Delete(ctx context.Context, id string) error
}
