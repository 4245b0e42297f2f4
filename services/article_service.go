package services

import (
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PBA-Dev/allstars-minimal/models"
	"github.com/PBA-Dev/allstars-minimal/repository"
)

// ArticleService owns the article lifecycle: validation, id assignment,
// timestamps and the edit history. Handlers never touch the repository
// directly.
type ArticleService interface {
	CreateArticle(input models.ArticleInput) (*models.Article, error)
	GetArticle(id string) (*models.Article, error)
	UpdateArticle(id string, input models.ArticleInput) (*models.Article, error)
	DeleteArticle(id string) error
	// ListArticles returns all articles newest-first, optionally filtered
	// to a category (case-insensitive exact match).
	ListArticles(category string) ([]*models.Article, error)
	// SearchArticles matches query case-insensitively against title,
	// content, author and category. Title matches rank first.
	SearchArticles(query string) ([]*models.Article, error)
	RandomArticle() (*models.Article, error)
	// RecentArticles returns the most recently updated articles, newest
	// first, capped at the configured limit.
	RecentArticles() ([]*models.Article, error)
	// ArticleHistory returns the edit log, empty for an unknown id.
	ArticleHistory(id string) ([]models.HistoryEntry, error)
}

type articleService struct {
	repo        repository.ArticleRepository
	recentLimit int
	now         func() time.Time
}

// NewArticleService creates an ArticleService backed by the given
// repository. recentLimit caps RecentArticles; values below 1 fall back
// to 5.
func NewArticleService(repo repository.ArticleRepository, recentLimit int) ArticleService {
	if recentLimit < 1 {
		recentLimit = 5
	}
	return &articleService{
		repo:        repo,
		recentLimit: recentLimit,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func validateInput(input models.ArticleInput) error {
	if strings.TrimSpace(input.Title) == "" ||
		strings.TrimSpace(input.Content) == "" ||
		strings.TrimSpace(input.Author) == "" ||
		strings.TrimSpace(input.Category) == "" {
		return models.NewValidationError("title, content, author and category are required")
	}
	return nil
}

func (s *articleService) CreateArticle(input models.ArticleInput) (*models.Article, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := s.now()
	article := &models.Article{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Content:   input.Content,
		Author:    input.Author,
		Category:  input.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Save(article); err != nil {
		return nil, err
	}
	if err := s.repo.AppendHistory(article.ID, models.HistoryEntry{
		Editor: input.Author,
		Date:   now,
		Action: models.HistoryActionCreated,
		Title:  input.Title,
	}); err != nil {
		// A failed create must not leave an article behind without its
		// created entry.
		if rollbackErr := s.repo.Delete(article.ID); rollbackErr != nil {
			log.Printf("ERROR: [ArticleService] Failed to roll back article %s after history failure: %v", article.ID, rollbackErr)
		}
		return nil, err
	}

	log.Printf("INFO: [ArticleService] Created article %s (%q) by %s.", article.ID, article.Title, article.Author)
	return article, nil
}

func (s *articleService) GetArticle(id string) (*models.Article, error) {
	article, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, &models.NotFoundError{Resource: "article", ID: id}
	}
	return article, nil
}

func (s *articleService) UpdateArticle(id string, input models.ArticleInput) (*models.Article, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &models.NotFoundError{Resource: "article", ID: id}
	}

	now := s.now()
	entry := models.HistoryEntry{
		Editor: input.Author,
		Date:   now,
		Action: models.HistoryActionEdited,
		Title:  input.Title,
	}
	if existing.Title != input.Title {
		entry.PreviousTitle = existing.Title
	}

	updated := &models.Article{
		ID:         existing.ID,
		Title:      input.Title,
		Content:    input.Content,
		Author:     existing.Author,
		Category:   input.Category,
		LastEditor: input.Author,
		CreatedAt:  existing.CreatedAt,
		UpdatedAt:  now,
	}

	if err := s.repo.Save(updated); err != nil {
		return nil, err
	}
	if err := s.repo.AppendHistory(id, entry); err != nil {
		// Restore the previous snapshot so a failed update never
		// half-applies.
		if rollbackErr := s.repo.Save(existing); rollbackErr != nil {
			log.Printf("ERROR: [ArticleService] Failed to roll back article %s after history failure: %v", id, rollbackErr)
		}
		return nil, err
	}

	log.Printf("INFO: [ArticleService] Updated article %s (%q) by %s.", id, updated.Title, input.Author)
	return updated, nil
}

func (s *articleService) DeleteArticle(id string) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return &models.NotFoundError{Resource: "article", ID: id}
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	log.Printf("INFO: [ArticleService] Deleted article %s (%q).", id, existing.Title)
	return nil
}

func (s *articleService) ListArticles(category string) ([]*models.Article, error) {
	articles, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	if category != "" {
		filtered := make([]*models.Article, 0, len(articles))
		for _, article := range articles {
			if strings.EqualFold(article.Category, category) {
				filtered = append(filtered, article)
			}
		}
		articles = filtered
	}

	sortByCreatedAtDesc(articles)
	return articles, nil
}

func (s *articleService) SearchArticles(query string) ([]*models.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("search query must not be empty")
	}

	articles, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	type rankedArticle struct {
		article    *models.Article
		titleMatch bool
	}
	var matches []rankedArticle
	for _, article := range articles {
		titleMatch := strings.Contains(strings.ToLower(article.Title), needle)
		otherMatch := strings.Contains(strings.ToLower(article.Content), needle) ||
			strings.Contains(strings.ToLower(article.Author), needle) ||
			strings.Contains(strings.ToLower(article.Category), needle)
		if titleMatch || otherMatch {
			matches = append(matches, rankedArticle{article: article, titleMatch: titleMatch})
		}
	}

	// Title matches rank before content/author/category matches; newest
	// first within each rank.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].titleMatch != matches[j].titleMatch {
			return matches[i].titleMatch
		}
		return matches[i].article.CreatedAt.After(matches[j].article.CreatedAt)
	})

	results := make([]*models.Article, 0, len(matches))
	for _, match := range matches {
		results = append(results, match.article)
	}
	log.Printf("INFO: [ArticleService] Search for %q matched %d of %d articles.", query, len(results), len(articles))
	return results, nil
}

func (s *articleService) RandomArticle() (*models.Article, error) {
	articles, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, &models.NotFoundError{Resource: "article"}
	}
	return articles[rand.Intn(len(articles))], nil
}

func (s *articleService) RecentArticles() ([]*models.Article, error) {
	articles, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].UpdatedAt.After(articles[j].UpdatedAt)
	})
	if len(articles) > s.recentLimit {
		articles = articles[:s.recentLimit]
	}
	return articles, nil
}

func (s *articleService) ArticleHistory(id string) ([]models.HistoryEntry, error) {
	entries, err := s.repo.GetHistory(id)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return entries, nil
}

func sortByCreatedAtDesc(articles []*models.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].CreatedAt.After(articles[j].CreatedAt)
	})
}
