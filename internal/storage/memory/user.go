package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/apperr"
	"inkwell/internal/user"
	"inkwell/models"
)

type UserMemoryStorage struct {
	mu     sync.Mutex
	users  map[string]*models.User
	nextID int // Для хранения актуального ID (можно было использовать UUID)
}

func NewUserMemoryStorage() *UserMemoryStorage {
	return &UserMemoryStorage{
		users:  make(map[string]*models.User),
		nextID: 1,
	}
}

var _ user.UserStorage = (*UserMemoryStorage)(nil)

func (s *UserMemoryStorage) Register(ctx context.Context, in user.RegisterInput) (*models.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", apperr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == in.Email || u.Username == in.Username {
			return nil, fmt.Errorf("user %s: %w", in.Username, apperr.ErrConflict)
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := strconv.Itoa(s.nextID)
	s.nextID++

	u := &models.User{
		ID:           id,
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now().UTC(),
	}
	s.users[id] = u

	created := *u
	return &created, nil
}

func (s *UserMemoryStorage) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			break
		}
		found := *u
		return &found, nil
	}
	return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrInvalidCredential)
}

func (s *UserMemoryStorage) GetByID(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	found := *u
	return &found, nil
}

func (s *UserMemoryStorage) List() ([]models.SafeUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	safe := make([]models.SafeUser, 0, len(s.users))
	for _, u := range s.users {
		safe = append(safe, u.Public())
	}
	return safe, nil
}

func (s *UserMemoryStorage) PublicView(id string) models.SafeUser {
	u, err := s.GetByID(id)
	if err != nil {
		return models.UnknownUser()
	}
	return u.Public()
}

func (s *UserMemoryStorage) FindByRef(ref string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == ref || strings.EqualFold(u.Username, ref) {
			found := *u
			return &found, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", ref, apperr.ErrNotFound)
}

func (s *UserMemoryStorage) Search(term string) []models.SafeUser {
	s.mu.Lock()
	defer s.mu.Unlock()

	term = strings.ToLower(term)
	matched := []models.SafeUser{}
	for _, u := range s.users {
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

// MakeAdmin выставляет флаг админа (для тестов и первичной настройки).
func (s *UserMemoryStorage) MakeAdmin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.IsAdmin = true
	}
}
