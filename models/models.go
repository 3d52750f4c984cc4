package models

import "time"

// Статусы статьи. Любое другое значение считается невидимым для всех.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"password"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SafeUser - публичная проекция пользователя без учетных данных.
type SafeUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Public() SafeUser {
	return SafeUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// UnknownUser - фиксированная заглушка для статей и комментариев,
// чей автор больше не существует.
func UnknownUser() SafeUser {
	return SafeUser{
		ID:        "unknown",
		Username:  "Unknown User",
		Email:     "unknown@example.com",
		FirstName: "Unknown",
		LastName:  "User",
	}
}

type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Category  string    `json:"category,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Status    string    `json:"status"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Comment struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"articleId"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Like - факт "пользователь лайкнул статью". Не более одной записи
// на пару (articleId, userId); счетчики всегда выводятся из этой таблицы.
type Like struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"articleId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikeState - агрегат лайков одной статьи для одного (опционального) читателя.
type LikeState struct {
	Likes   int  `json:"likes"`
	IsLiked bool `json:"isLiked"`
}

// EnrichedArticle - статья вместе с проекцией автора и агрегатом лайков.
// Likes и IsLiked никогда не сохраняются на диск.
type EnrichedArticle struct {
	Article
	Author  SafeUser `json:"author"`
	Likes   int      `json:"likes"`
	IsLiked bool     `json:"isLiked"`
}

type EnrichedComment struct {
	Comment
	Author SafeUser `json:"author"`
}
