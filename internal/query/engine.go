// Package query собирает ленты статей: видимость, обогащение,
// поиск, фильтры, сортировка и пагинация в одном конвейере.
package query

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"inkwell/internal/apperr"
	"inkwell/internal/article"
	"inkwell/internal/like"
	"inkwell/internal/user"
	"inkwell/models"
)

type Engine struct {
	articles article.ArticleStorage
	users    user.UserStorage
	likes    like.LikeStorage
	logger   *slog.Logger
}

func NewEngine(articles article.ArticleStorage, users user.UserStorage, likes like.LikeStorage, logger *slog.Logger) *Engine {
	return &Engine{
		articles: articles,
		users:    users,
		likes:    likes,
		logger:   logger,
	}
}

type ListOptions struct {
	Search   string
	Category string
	Author   string
	SortBy   string // createdAt (default) | likes | title | author
	Order    string // asc | desc (default)
	Offset   int
	Limit    *int // nil - вернуть все после offset
}

type ListResult struct {
	Articles []models.EnrichedArticle `json:"articles"`
	Total    int                      `json:"total"`
	Offset   int                      `json:"offset"`
	Limit    int                      `json:"limit"`
}

type SearchResult struct {
	Articles []models.EnrichedArticle `json:"articles"`
	Users    []models.SafeUser        `json:"users"`
	Total    int                      `json:"total"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// List - конвейер выдачи: видимость -> поиск -> категория -> автор ->
// обогащение -> сортировка -> пагинация. Total считается до пагинации.
func (e *Engine) List(callerID string, opts ListOptions) (*ListResult, error) {
	articles, err := e.articles.All()
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if !visibleTo(a, callerID) {
			continue
		}
		if opts.Search != "" && !matchesSearch(a, opts.Search) {
			continue
		}
		if opts.Category != "" && !strings.EqualFold(a.Category, opts.Category) {
			continue
		}
		filtered = append(filtered, a)
	}

	if opts.Author != "" {
		// Неразрешимый автор дает пустую выдачу, а не ошибку и не игнор фильтра.
		authorUser, err := e.users.FindByRef(opts.Author)
		if err != nil {
			limit := 0
			if opts.Limit != nil {
				limit = *opts.Limit
			}
			return &ListResult{Articles: []models.EnrichedArticle{}, Offset: opts.Offset, Limit: limit}, nil
		}
		kept := filtered[:0]
		for _, a := range filtered {
			if a.AuthorID == authorUser.ID {
				kept = append(kept, a)
			}
		}
		filtered = kept
	}

	enriched := e.enrichAll(filtered, callerID)
	sortEnriched(enriched, opts.SortBy, opts.Order)

	total := len(enriched)
	page := paginate(enriched, opts.Offset, opts.Limit)

	limit := total
	if opts.Limit != nil {
		limit = *opts.Limit
	}

	e.logger.Debug("listed articles",
		"caller", callerID,
		"total", total,
		"returned", len(page),
	)

	return &ListResult{Articles: page, Total: total, Offset: opts.Offset, Limit: limit}, nil
}

// Get возвращает одну обогащенную статью. Чужой черновик - Forbidden,
// а не NotFound: существование статьи раскрывается только как булево.
func (e *Engine) Get(id, callerID string) (*models.EnrichedArticle, error) {
	a, err := e.articles.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(*a, callerID) {
		return nil, fmt.Errorf("draft article %s: %w", id, apperr.ErrForbidden)
	}

	enriched := e.enrich(*a, callerID)
	return &enriched, nil
}

// Mine - все статьи автора, включая черновики.
func (e *Engine) Mine(callerID string) ([]models.EnrichedArticle, error) {
	articles, err := e.articles.All()
	if err != nil {
		return nil, err
	}

	own := []models.Article{}
	for _, a := range articles {
		if a.AuthorID == callerID {
			own = append(own, a)
		}
	}
	return e.enrichAll(own, callerID), nil
}

// Search - глобальный поиск. Статьи - только опубликованные, независимо
// от читателя; пользователи - по username/имени/фамилии/"имя фамилия".
func (e *Engine) Search(term, searchType, callerID string) (*SearchResult, error) {
	if term == "" {
		return nil, fmt.Errorf("search query is required: %w", apperr.ErrValidation)
	}

	result := &SearchResult{
		Articles: []models.EnrichedArticle{},
		Users:    []models.SafeUser{},
	}

	if searchType == "all" || searchType == "articles" {
		articles, err := e.articles.All()
		if err != nil {
			return nil, err
		}
		for _, a := range articles {
			if a.Status != models.StatusPublished || !matchesSearch(a, term) {
				continue
			}
			result.Articles = append(result.Articles, e.enrich(a, callerID))
		}
	}

	if searchType == "all" || searchType == "users" {
		result.Users = e.users.Search(term)
	}

	result.Total = len(result.Articles) + len(result.Users)
	return result, nil
}

// Categories - различные категории опубликованных статей с количеством,
// в порядке первого появления.
func (e *Engine) Categories() ([]CategoryCount, error) {
	articles, err := e.articles.All()
	if err != nil {
		return nil, err
	}

	counts := []CategoryCount{}
	index := map[string]int{}
	for _, a := range articles {
		if a.Status != models.StatusPublished || a.Category == "" {
			continue
		}
		if i, seen := index[a.Category]; seen {
			counts[i].Count++
			continue
		}
		index[a.Category] = len(counts)
		counts = append(counts, CategoryCount{Name: a.Category, Count: 1})
	}
	return counts, nil
}

// Правило видимости применяется к каждой статье независимо:
// published видна всем, draft - только автору, прочее закрыто для всех.
func visibleTo(a models.Article, callerID string) bool {
	switch a.Status {
	case models.StatusPublished:
		return true
	case models.StatusDraft:
		return callerID != "" && a.AuthorID == callerID
	default:
		return false
	}
}

func matchesSearch(a models.Article, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(a.Title), term) ||
		strings.Contains(strings.ToLower(a.Content), term) ||
		(a.Excerpt != "" && strings.Contains(strings.ToLower(a.Excerpt), term)) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Обогащение тотально: пропавший автор дает заглушку,
// отказ агрегатора лайков - нулевой агрегат, но не ошибку выдачи.
func (e *Engine) enrich(a models.Article, callerID string) models.EnrichedArticle {
	state, err := e.likes.StateFor(a.ID, callerID)
	if err != nil {
		state = models.LikeState{}
	}
	return models.EnrichedArticle{
		Article: a,
		Author:  e.users.PublicView(a.AuthorID),
		Likes:   state.Likes,
		IsLiked: state.IsLiked,
	}
}

func (e *Engine) enrichAll(articles []models.Article, callerID string) []models.EnrichedArticle {
	enriched := make([]models.EnrichedArticle, 0, len(articles))
	for _, a := range articles {
		enriched = append(enriched, e.enrich(a, callerID))
	}
	return enriched
}

// Стабильная сортировка, чтобы пагинация была детерминированной
// между запросами с одинаковыми фильтрами. Строки сравниваются без регистра.
func sortEnriched(items []models.EnrichedArticle, sortBy, order string) {
	less := func(i, j int) bool {
		switch sortBy {
		case "likes":
			return items[i].Likes < items[j].Likes
		case "title":
			return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
		case "author":
			return strings.ToLower(items[i].Author.Username) < strings.ToLower(items[j].Author.Username)
		default: // createdAt
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
	}

	if order == "asc" {
		sort.SliceStable(items, less)
	} else {
		sort.SliceStable(items, func(i, j int) bool { return less(j, i) })
	}
}

func paginate(items []models.EnrichedArticle, offset int, limit *int) []models.EnrichedArticle {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []models.EnrichedArticle{}
	}
	end := len(items)
	// Отрицательный limit трактуем как отсутствие limit.
	if limit != nil && *limit >= 0 && offset+*limit < end {
		end = offset + *limit
	}
	return items[offset:end]
}
