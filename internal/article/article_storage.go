package article

import (
	"context"

	"inkwell/models"
)

type CreateInput struct {
	Title    string
	Content  string
	Excerpt  string
	Category string
	Tags     []string
	Status   string
}

// UpdateInput - частичный патч: nil-поле остается нетронутым.
// id, authorId и createdAt патчем не изменяются.
type UpdateInput struct {
	Title    *string
	Content  *string
	Excerpt  *string
	Category *string
	Tags     *[]string
	Status   *string
}

type ArticleStorage interface {
	Create(ctx context.Context, in CreateInput) (*models.Article, error)
	Update(ctx context.Context, id string, in UpdateInput) (*models.Article, error)
	Delete(ctx context.Context, id string) error
	GetByID(id string) (*models.Article, error)
	All() ([]models.Article, error)
}
