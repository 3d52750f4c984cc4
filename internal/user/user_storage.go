package user

import (
	"context"

	"inkwell/models"
)

type RegisterInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

type UserStorage interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	// Authenticate проверяет пару email/пароль и возвращает пользователя.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	List() ([]models.SafeUser, error)
	// PublicView - тотальная функция: неразрешимый id дает заглушку, не ошибку.
	PublicView(id string) models.SafeUser
	// FindByRef ищет по точному id или username без учета регистра.
	FindByRef(ref string) (*models.User, error)
	// Search - подстрочный поиск по username/firstName/lastName/"first last".
	Search(term string) []models.SafeUser
}
