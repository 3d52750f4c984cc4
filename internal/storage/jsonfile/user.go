package jsonfile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/apperr"
	"inkwell/internal/user"
	"inkwell/models"
)

type UserFileStorage struct {
	store *Store
}

func NewUserFileStorage(store *Store) *UserFileStorage {
	return &UserFileStorage{store: store}
}

var _ user.UserStorage = (*UserFileStorage)(nil)

func (s *UserFileStorage) Register(ctx context.Context, in user.RegisterInput) (*models.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", apperr.ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created := models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hashedPassword),
		IsAdmin:      false,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = Update(s.store, Users, func(users []models.User) ([]models.User, error) {
		for _, u := range users {
			if u.Email == in.Email || u.Username == in.Username {
				return nil, fmt.Errorf("user %s: %w", in.Username, apperr.ErrConflict)
			}
		}
		return append(users, created), nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (s *UserFileStorage) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	users, err := Read[models.User](s.store, Users)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(users[i].PasswordHash), []byte(password)) != nil {
			break
		}
		return &users[i], nil
	}
	// Одинаковый ответ для неизвестного email и неверного пароля.
	return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrInvalidCredential)
}

func (s *UserFileStorage) GetByID(id string) (*models.User, error) {
	users, err := Read[models.User](s.store, Users)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
}

func (s *UserFileStorage) List() ([]models.SafeUser, error) {
	users, err := Read[models.User](s.store, Users)
	if err != nil {
		return nil, err
	}
	safe := make([]models.SafeUser, 0, len(users))
	for i := range users {
		safe = append(safe, users[i].Public())
	}
	return safe, nil
}

func (s *UserFileStorage) PublicView(id string) models.SafeUser {
	u, err := s.GetByID(id)
	if err != nil {
		return models.UnknownUser()
	}
	return u.Public()
}

func (s *UserFileStorage) FindByRef(ref string) (*models.User, error) {
	users, err := Read[models.User](s.store, Users)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == ref || strings.EqualFold(users[i].Username, ref) {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", ref, apperr.ErrNotFound)
}

func (s *UserFileStorage) Search(term string) []models.SafeUser {
	users, _ := Read[models.User](s.store, Users)
	term = strings.ToLower(term)

	matched := []models.SafeUser{}
	for i := range users {
		u := &users[i]
		full := strings.ToLower(u.FirstName + " " + u.LastName)
		if strings.Contains(strings.ToLower(u.Username), term) ||
			strings.Contains(strings.ToLower(u.FirstName), term) ||
			strings.Contains(strings.ToLower(u.LastName), term) ||
			strings.Contains(full, term) {
			matched = append(matched, u.Public())
		}
	}
	return matched
}
