// Package jsonfile хранит каждую коллекцию целиком в одном json-файле.
// Никакой адресации ниже уровня коллекции: всякая мутация - это
// "прочитать все, изменить в памяти, записать все" под мьютексом коллекции.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"inkwell/internal/apperr"
)

type Collection string

const (
	Users    Collection = "users"
	Articles Collection = "articles"
	Comments Collection = "comments"
	Likes    Collection = "likes"
)

var collections = []Collection{Users, Articles, Comments, Likes}

type Store struct {
	dir   string
	locks map[Collection]*sync.Mutex
}

// Open создает каталог данных и пустые файлы коллекций, если их нет.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{
		dir:   dir,
		locks: make(map[Collection]*sync.Mutex, len(collections)),
	}
	for _, c := range collections {
		s.locks[c] = &sync.Mutex{}
		path := s.path(c)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
				return nil, fmt.Errorf("init collection %s: %w", c, err)
			}
		}
	}
	return s, nil
}

func (s *Store) path(c Collection) string {
	return filepath.Join(s.dir, string(c)+".json")
}

// Read возвращает снимок коллекции. Отсутствующий или битый файл
// дает пустую коллекцию, не ошибку - чтение тотально.
func Read[T any](s *Store, c Collection) ([]T, error) {
	mu := s.locks[c]
	mu.Lock()
	defer mu.Unlock()
	return readLocked[T](s, c), nil
}

// Update держит мьютекс коллекции на всем пути "прочитать-изменить-записать",
// поэтому последовательности fn эффективно атомарны между собой.
// Ошибка fn отменяет запись; возвращается записанное состояние.
func Update[T any](s *Store, c Collection, fn func(items []T) ([]T, error)) ([]T, error) {
	mu := s.locks[c]
	mu.Lock()
	defer mu.Unlock()

	items := readLocked[T](s, c)
	next, err := fn(items)
	if err != nil {
		return nil, err
	}

	if err := s.writeLocked(c, next); err != nil {
		return nil, err
	}
	return next, nil
}

func readLocked[T any](s *Store, c Collection) []T {
	items := []T{}
	data, err := os.ReadFile(s.path(c))
	if err != nil {
		return items
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return []T{}
	}
	return items
}

// Запись через временный файл и rename, чтобы читатель
// никогда не увидел наполовину записанную коллекцию.
func (s *Store) writeLocked(c Collection, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", c, apperr.ErrStorage)
	}

	tmp, err := os.CreateTemp(s.dir, string(c)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", c, apperr.ErrStorage)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", c, apperr.ErrStorage)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", c, apperr.ErrStorage)
	}

	if err := os.Rename(tmpName, s.path(c)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", c, apperr.ErrStorage)
	}
	return nil
}
