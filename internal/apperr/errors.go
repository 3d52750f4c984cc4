// Package apperr содержит сигнальные ошибки, общие для всех слоев.
// Проверяются через errors.Is, оборачиваются через fmt.Errorf("...: %w", err).
package apperr

import "errors"

var (
	// ErrUnauthenticated - защищенная операция без учетных данных.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidCredential - учетные данные есть, но не проверяются.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrForbidden - аутентифицирован, но не владелец и не админ.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound - сущность с таким id не существует.
	ErrNotFound = errors.New("not found")
	// ErrConflict - повторный лайк или занятый email/username.
	ErrConflict = errors.New("already exists")
	// ErrNotLiked - unlike без существующего лайка.
	ErrNotLiked = errors.New("article not liked")
	// ErrValidation - некорректный или отсутствующий обязательный ввод.
	ErrValidation = errors.New("validation failed")
	// ErrStorage - отказ чтения/записи нижележащего файла.
	ErrStorage = errors.New("storage failure")
)
