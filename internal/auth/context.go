package auth

import (
	"context"
	"errors"
)

type contextKey string

const userIDKey = contextKey("userID")

// Сохраняет userID в контексте
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Достает userID из контекста. Ошибка означает анонимный запрос.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(userIDKey)
	id, ok := val.(string)
	if !ok || id == "" {
		return "", errors.New("user ID not found in context")
	}
	return id, nil
}

// CallerID - вариант для публичных read-путей: пустая строка вместо ошибки.
func CallerID(ctx context.Context) string {
	id, err := GetUserIDFromContext(ctx)
	if err != nil {
		return ""
	}
	return id
}
